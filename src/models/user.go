package models

import (
	"clubdesk/src/types"
	"time"
)

type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Name         string     `gorm:"not null" json:"name,omitempty"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         types.Role `gorm:"type:varchar(16);not null;index" json:"role,omitempty"`
	LastActive   *time.Time `json:"last_active,omitempty"`

	types.Timestamps
}

func (u *User) ToResponse() types.APIResponseUser {
	return types.APIResponseUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		LastActive:   u.LastActive,
		Capabilities: types.CapabilitiesOf(u.Role),
	}
}
