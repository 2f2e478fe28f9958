package types

import "time"

type ScanSource string

const (
	SCAN_SOURCE_CAMERA ScanSource = "camera"
	SCAN_SOURCE_MANUAL ScanSource = "manual"
)

type ScanErrorCode string

const (
	SCAN_INVALID_CODE  ScanErrorCode = "INVALID_CODE"
	SCAN_ALREADY_USED  ScanErrorCode = "ALREADY_USED"
	SCAN_UNKNOWN_ERROR ScanErrorCode = "UNKNOWN_ERROR"
)

var ScanErrorMessages = map[ScanErrorCode]string{
	SCAN_INVALID_CODE:  "The code is not valid",
	SCAN_ALREADY_USED:  "The code has already been used",
	SCAN_UNKNOWN_ERROR: "The code could not be validated. Try again",
}

type ScanOutcomeStatus string

const (
	SCAN_ACCEPTED ScanOutcomeStatus = "accepted"
	SCAN_REJECTED ScanOutcomeStatus = "rejected"
)

type ScanGuest struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
}

type ScanEvent struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	DateTime time.Time `json:"date_time"`
}

type ScanTable struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Sector string `json:"sector,omitempty"`
}

type ScanPackage struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ScanValidator struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ScanOutcome is the tagged result of a code validation. Success is the tag:
// ErrorCode and ErrorMessage are only set when it is false.
type ScanOutcome struct {
	Success      bool           `json:"success"`
	ErrorCode    ScanErrorCode  `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Guest        *ScanGuest     `json:"guest,omitempty"`
	Event        *ScanEvent     `json:"event,omitempty"`
	Table        *ScanTable     `json:"table,omitempty"`
	Package      *ScanPackage   `json:"package,omitempty"`
	ScannedBy    *ScanValidator `json:"scanned_by,omitempty"`
	UsedAt       *time.Time     `json:"used_at,omitempty"`
}

func RejectedScan(code ScanErrorCode) *ScanOutcome {
	return &ScanOutcome{
		Success:      false,
		ErrorCode:    code,
		ErrorMessage: ScanErrorMessages[code],
	}
}
