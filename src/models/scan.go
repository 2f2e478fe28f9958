package models

import (
	"clubdesk/src/types"
	"time"
)

// ScanLog keeps one row per validation attempt, accepted or not.
type ScanLog struct {
	ID           uint                    `gorm:"primarykey" json:"id"`
	Code         string                  `gorm:"type:varchar(128);index" json:"code"`
	Outcome      types.ScanOutcomeStatus `gorm:"type:varchar(16);not null" json:"outcome"`
	ErrorCode    *types.ScanErrorCode    `gorm:"type:varchar(32)" json:"error_code,omitempty"`
	Source       types.ScanSource        `gorm:"type:varchar(16)" json:"source"`
	GuestEntryID *uint                   `gorm:"index" json:"guest_entry_id,omitempty"`
	EventID      *uint                   `gorm:"index" json:"event_id,omitempty"`
	ValidatorID  uint                    `gorm:"index;not null" json:"validator_id"`
	ScannedAt    time.Time               `gorm:"index;not null" json:"scanned_at"`
}
