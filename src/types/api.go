package types

import "time"

type APIResponseUser struct {
	ID           uint         `json:"id"`
	Name         string       `json:"name,omitempty"`
	Email        string       `json:"email,omitempty"`
	Role         Role         `json:"role,omitempty"`
	LastActive   *time.Time   `json:"last_active,omitempty"`
	Capabilities []Capability `json:"capabilities,omitempty"`
}

type APIResponseActivityEntry struct {
	ID          uint    `json:"id"`
	UserID      uint    `json:"user_id"`
	Date        string  `json:"date"`
	HasActivity bool    `json:"has_activity"`
	Description *string `json:"description,omitempty"`
}

type ActivityRankingRow struct {
	UserID   uint   `json:"user_id"`
	UserName string `json:"user_name"`
	Total    int64  `json:"total"`
}

type ActivityMonthRow struct {
	Month int   `json:"month"`
	Total int64 `json:"total"`
}

type ActivityWeekdayRow struct {
	Weekday int   `json:"weekday"`
	Total   int64 `json:"total"`
}

type ActivityStats struct {
	Year      int                  `json:"year"`
	Ranking   []ActivityRankingRow `json:"ranking"`
	ByMonth   []ActivityMonthRow   `json:"by_month"`
	ByWeekday []ActivityWeekdayRow `json:"by_weekday"`
}

type APIResponseScanLog struct {
	ID            uint              `json:"id"`
	Code          string            `json:"code"`
	Outcome       ScanOutcomeStatus `json:"outcome"`
	ErrorCode     *ScanErrorCode    `json:"error_code,omitempty"`
	Source        ScanSource        `json:"source"`
	GuestName     *string           `json:"guest_name,omitempty"`
	EventID       *uint             `json:"event_id,omitempty"`
	ValidatorID   uint              `json:"validator_id"`
	ValidatorName string            `json:"validator_name"`
	ScannedAt     time.Time         `json:"scanned_at"`
}

type DashboardSummary struct {
	UpcomingEvents  int64      `json:"upcoming_events"`
	PendingRequests int64      `json:"pending_requests"`
	NextEventID     *uint      `json:"next_event_id,omitempty"`
	NextEventName   *string    `json:"next_event_name,omitempty"`
	NextEventDate   *time.Time `json:"next_event_date,omitempty"`
	NextEventGuests int64      `json:"next_event_guests"`
	ScansAccepted   int64      `json:"scans_accepted_today"`
	ScansRejected   int64      `json:"scans_rejected_today"`
}
