package models

import (
	"clubdesk/src/types"
	"time"
)

type GuestRequest struct {
	ID              uint                     `gorm:"primarykey" json:"id"`
	EventID         uint                     `gorm:"index;not null" json:"event_id"`
	TableID         *uint                    `json:"table_id,omitempty"`
	PackageID       *uint                    `json:"package_id,omitempty"`
	RequestedBy     uint                     `gorm:"index;not null" json:"requested_by"`
	Status          types.GuestRequestStatus `gorm:"default:'pending';index" json:"status"`
	Notes           *string                  `json:"notes,omitempty"`
	DecidedBy       *uint                    `json:"decided_by,omitempty"`
	DecidedAt       *time.Time               `json:"decided_at,omitempty"`
	RejectionReason *string                  `json:"rejection_reason,omitempty"`

	Event     *Event       `gorm:"foreignKey:event_id" json:"event,omitempty"`
	Table     *VenueTable  `gorm:"foreignKey:table_id" json:"table,omitempty"`
	Package   *Package     `gorm:"foreignKey:package_id" json:"package,omitempty"`
	Requester *User        `gorm:"foreignKey:requested_by" json:"-"`
	Guests    []GuestEntry `gorm:"foreignKey:request_id" json:"guests,omitempty"`

	types.Timestamps
}

// GuestEntry is one admitted person of a request. Code stays nil until the
// request is approved and is never rewritten afterwards; UsedAt and UsedBy
// record the single successful validation.
type GuestEntry struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	RequestID uint       `gorm:"index;not null" json:"request_id"`
	Name      string     `gorm:"not null" json:"name"`
	Document  string     `gorm:"not null" json:"document"`
	Email     *string    `json:"email,omitempty"`
	Code      *string    `gorm:"uniqueIndex;type:varchar(64)" json:"code,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	UsedAt    *time.Time `gorm:"index" json:"used_at,omitempty"`
	UsedBy    *uint      `json:"used_by,omitempty"`
	QRKey     *string    `json:"-"`

	Validator *User `gorm:"foreignKey:used_by" json:"-"`

	types.Timestamps
}
