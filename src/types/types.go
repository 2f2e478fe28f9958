package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBAny struct {
	Inner any
}

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBAny) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a.Inner)
	return string(valueString), err
}
func (a *JSONBAny) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	var inner any
	if err := json.Unmarshal(b, &inner); err != nil {
		return err
	}
	a.Inner = inner
	return nil
}

func (a JSONBAny) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Inner)
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type GuestQRParams struct {
	ID      uint `uri:"id" binding:"required"`
	GuestID uint `uri:"guestId" binding:"required"`
}

type SignUpRequestBody struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type SignInRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateRoleRequestBody struct {
	Role Role `json:"role" binding:"required,oneof=ADMIN MANAGER SECURITY PROMOTER USER"`
}

type SectorRequestBody struct {
	Name        string  `json:"name" binding:"required,max=120"`
	Description *string `json:"description,omitempty"`
	Capacity    uint    `json:"capacity,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

type TableRequestBody struct {
	SectorID uint    `json:"sector_id" binding:"required"`
	Name     string  `json:"name" binding:"required,max=60"`
	Capacity uint    `json:"capacity" binding:"required,min=1"`
	MinSpend float64 `json:"min_spend,omitempty" binding:"omitempty,min=0"`
	Active   *bool   `json:"active,omitempty"`
}

type TableQueryFilters struct {
	SectorID uint `form:"sector_id,omitempty"`
}

type PackageRequestBody struct {
	Name        string   `json:"name" binding:"required,max=120"`
	Description *string  `json:"description,omitempty"`
	Price       float64  `json:"price" binding:"min=0"`
	Currency    string   `json:"currency" binding:"required,len=3"`
	Includes    []string `json:"includes,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

type CreateEventRequestBody struct {
	Name        string  `json:"name" binding:"required,max=160"`
	Description *string `json:"description,omitempty"`
	DateTime    string  `json:"date_time" binding:"required,futuredate" time_format:"2006-01-02 15:04:05 -07:00"`
	Capacity    uint    `json:"capacity,omitempty"`
	Publish     bool    `json:"publish,omitempty"`
}

type UpdateEventRequestBody struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=160"`
	Description *string `json:"description,omitempty"`
	DateTime    *string `json:"date_time,omitempty" binding:"omitempty,futuredate" time_format:"2006-01-02 15:04:05 -07:00"`
	Capacity    *uint   `json:"capacity,omitempty"`
}

type UpdateEventStatusRequestBody struct {
	Status EventStatus `json:"status" binding:"required,oneof=draft published canceled"`
}

type EventQueryFilters struct {
	Status   string `form:"status,omitempty"`
	Upcoming bool   `form:"upcoming,omitempty"`
}

type GuestRequestGuest struct {
	Name     string  `json:"name" binding:"required,max=160"`
	Document string  `json:"document" binding:"required,max=40"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
}

type CreateGuestRequestBody struct {
	EventID   uint                `json:"event_id" binding:"required"`
	TableID   *uint               `json:"table_id,omitempty"`
	PackageID *uint               `json:"package_id,omitempty"`
	Notes     *string             `json:"notes,omitempty" binding:"omitempty,max=500"`
	Guests    []GuestRequestGuest `json:"guests" binding:"required,min=1,max=50,dive"`
}

type RejectGuestRequestBody struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type GuestRequestQueryFilters struct {
	Status  string `form:"status,omitempty"`
	EventID uint   `form:"event_id,omitempty"`
}

type GuestQRQuery struct {
	ShareLink bool `form:"share,omitempty"`
}

type ValidateScanRequestBody struct {
	Code   string     `json:"code"`
	Source ScanSource `json:"source,omitempty" binding:"omitempty,oneof=camera manual"`
}

type ScanHistoryQuery struct {
	Limit   int  `form:"limit,omitempty" binding:"omitempty,min=1,max=200"`
	EventID uint `form:"event_id,omitempty"`
}

type UpsertActivityRequestBody struct {
	UserID      uint    `json:"user_id" binding:"required"`
	Date        string  `json:"date" binding:"required,isodate"`
	HasActivity bool    `json:"has_activity"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=500"`
}

type ActivityEntryParams struct {
	UserID uint   `uri:"userId" binding:"required"`
	Date   string `uri:"date" binding:"required,isodate"`
}

type ActivityUserParams struct {
	UserID uint `uri:"userId" binding:"required"`
}

type ActivityMonthQuery struct {
	Year  int `form:"year" binding:"required,min=2000,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

type StatsQuery struct {
	Year int `form:"year" binding:"required,min=2000,max=2100"`
}

type CreateSettingRequestBody struct {
	Key   string `json:"key" binding:"required"`
	Value any    `json:"value" binding:"required"`
	Group string `json:"group" binding:"required"`
}

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_PUBLISHED EventStatus = "published"
	EVENT_COMPLETED EventStatus = "completed"
	EVENT_CANCELED  EventStatus = "canceled"
)

type GuestRequestStatus string

const (
	REQUEST_PENDING  GuestRequestStatus = "pending"
	REQUEST_APPROVED GuestRequestStatus = "approved"
	REQUEST_REJECTED GuestRequestStatus = "rejected"
	REQUEST_EXPIRED  GuestRequestStatus = "expired"
)

type Environment string

const (
	Local      Environment = "local"
	Test       Environment = "test"
	Production Environment = "production"
)
