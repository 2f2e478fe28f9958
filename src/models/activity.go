package models

import (
	"clubdesk/src/config"
	"clubdesk/src/types"
	"time"

	"gorm.io/datatypes"
)

// ActivityEntry is unique per (user, date) and is hard-deleted.
type ActivityEntry struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	UserID      uint           `gorm:"uniqueIndex:idx_activity_user_date;not null" json:"user_id"`
	Date        datatypes.Date `gorm:"uniqueIndex:idx_activity_user_date;not null" json:"date"`
	HasActivity bool           `gorm:"not null" json:"has_activity"`
	Description *string        `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at,omitempty"`

	User *User `gorm:"foreignKey:user_id;constraint:OnDelete:CASCADE" json:"-"`
}

func (a *ActivityEntry) ToResponse() types.APIResponseActivityEntry {
	return types.APIResponseActivityEntry{
		ID:          a.ID,
		UserID:      a.UserID,
		Date:        time.Time(a.Date).Format(config.DATE_FORMAT),
		HasActivity: a.HasActivity,
		Description: a.Description,
	}
}
