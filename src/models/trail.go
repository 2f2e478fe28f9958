package models

import (
	"clubdesk/src/types"
	"time"

	"github.com/google/uuid"
)

// TrailLog records administrative decisions.
type TrailLog struct {
	ID        uuid.UUID   `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Type      string      `gorm:"index" json:"type"`
	Initiator uint        `gorm:"index" json:"initiator"`
	Group     string      `json:"group"`
	Reference string      `json:"reference"`
	Metadata  types.JSONB `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
