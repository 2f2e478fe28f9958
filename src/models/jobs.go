package models

import (
	"time"

	"github.com/google/uuid"
)

// JobRun records one execution of a background housekeeping job.
type JobRun struct {
	ID         uuid.UUID  `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name       string     `gorm:"index;not null" json:"name"`
	Status     string     `gorm:"type:varchar(16);not null" json:"status"`
	Affected   int64      `json:"affected"`
	Error      *string    `json:"error,omitempty"`
	StartedAt  time.Time  `gorm:"index;not null" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

const (
	JOB_RUN_SUCCEEDED = "succeeded"
	JOB_RUN_FAILED    = "failed"
)
