package models

import (
	"clubdesk/src/types"
	"time"
)

type Event struct {
	ID          uint              `gorm:"primarykey" json:"id"`
	Name        string            `gorm:"not null" json:"name"`
	Slug        string            `gorm:"uniqueIndex;not null" json:"slug"`
	Description *string           `json:"description,omitempty"`
	DateTime    time.Time         `gorm:"index;not null" json:"date_time"`
	Status      types.EventStatus `gorm:"default:'draft';index" json:"status"`
	Capacity    uint              `json:"capacity,omitempty"`
	ImageKey    *string           `json:"-"`
	CreatedBy   uint              `json:"created_by,omitempty"`

	Creator  *User          `gorm:"foreignKey:created_by" json:"-"`
	Requests []GuestRequest `gorm:"foreignKey:event_id" json:"requests,omitempty"`

	types.Timestamps
}

// Open reports whether guest requests can still be filed for the event.
func (e *Event) Open(now time.Time) bool {
	if e.Status == types.EVENT_CANCELED || e.Status == types.EVENT_COMPLETED {
		return false
	}
	return e.DateTime.After(now)
}
