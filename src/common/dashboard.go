package common

import (
	"clubdesk/src/db"
	"clubdesk/src/models"
	"clubdesk/src/models/scopes"
	"clubdesk/src/types"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

func DashboardSummary(ctx context.Context, now time.Time) (*types.DashboardSummary, error) {
	var summary types.DashboardSummary
	tx := db.GetDb().WithContext(ctx)

	if err := tx.
		Model(&models.Event{}).
		Scopes(scopes.WithStatus(string(types.EVENT_PUBLISHED)), scopes.Upcoming(now)).
		Count(&summary.UpcomingEvents).
		Error; err != nil {
		return nil, err
	}
	if err := tx.
		Model(&models.GuestRequest{}).
		Scopes(scopes.WithPendingStatus).
		Count(&summary.PendingRequests).
		Error; err != nil {
		return nil, err
	}

	var next models.Event
	err := tx.
		Scopes(scopes.WithStatus(string(types.EVENT_PUBLISHED)), scopes.Upcoming(now)).
		Order("date_time asc").
		First(&next).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		summary.NextEventID = &next.ID
		summary.NextEventName = &next.Name
		summary.NextEventDate = &next.DateTime
		if err := tx.
			Model(&models.GuestEntry{}).
			Joins("JOIN guest_requests ON guest_requests.id = guest_entries.request_id").
			Where("guest_requests.event_id = ? AND guest_requests.status = ?", next.ID, types.REQUEST_APPROVED).
			Count(&summary.NextEventGuests).
			Error; err != nil {
			return nil, err
		}
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today := scopes.Between("scanned_at", dayStart, dayStart.AddDate(0, 0, 1))
	if err := tx.
		Model(&models.ScanLog{}).
		Scopes(today).
		Where("outcome = ?", types.SCAN_ACCEPTED).
		Count(&summary.ScansAccepted).
		Error; err != nil {
		return nil, err
	}
	if err := tx.
		Model(&models.ScanLog{}).
		Scopes(today).
		Where("outcome = ?", types.SCAN_REJECTED).
		Count(&summary.ScansRejected).
		Error; err != nil {
		return nil, err
	}
	return &summary, nil
}
