package common

import (
	"clubdesk/src/db"
	"clubdesk/src/models"
	"clubdesk/src/types"
	"clubdesk/src/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRequestNotFound   = errors.New("guest request not found")
	ErrRequestNotPending = errors.New("guest request has already been decided")
	ErrEventNotOpen      = errors.New("event is not accepting guest requests")
	ErrEventNotFound     = errors.New("event not found")
	ErrTableNotFound     = errors.New("table not found")
	ErrPackageNotFound   = errors.New("package not found")
)

func exists(tx *gorm.DB, model any, id uint) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateGuestRequest files a pending request. Referenced event, table and
// package must already exist.
func CreateGuestRequest(ctx context.Context, body *types.CreateGuestRequestBody, requesterID uint) (*models.GuestRequest, error) {
	request := models.GuestRequest{
		EventID:     body.EventID,
		TableID:     body.TableID,
		PackageID:   body.PackageID,
		RequestedBy: requesterID,
		Status:      types.REQUEST_PENDING,
		Notes:       body.Notes,
	}
	for _, g := range body.Guests {
		request.Guests = append(request.Guests, models.GuestEntry{
			Name:     g.Name,
			Document: g.Document,
			Email:    g.Email,
		})
	}
	err := db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("id = ?", body.EventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if event.Status != types.EVENT_PUBLISHED || !event.Open(time.Now()) {
			return ErrEventNotOpen
		}
		if body.TableID != nil {
			ok, err := exists(tx, &models.VenueTable{}, *body.TableID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrTableNotFound
			}
		}
		if body.PackageID != nil {
			ok, err := exists(tx, &models.Package{}, *body.PackageID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrPackageNotFound
			}
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func decide(tx *gorm.DB, requestID uint, updates map[string]any) error {
	res := tx.
		Model(&models.GuestRequest{}).
		Where("id = ? AND status = ?", requestID, types.REQUEST_PENDING).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		found, err := exists(tx, &models.GuestRequest{}, requestID)
		if err != nil {
			return err
		}
		if !found {
			return ErrRequestNotFound
		}
		return ErrRequestNotPending
	}
	return nil
}

// ApproveGuestRequest moves a pending request to approved and issues a code
// to every guest that does not have one yet. Returns the guests that received
// a code.
func ApproveGuestRequest(ctx context.Context, requestID uint, deciderID uint) ([]models.GuestEntry, error) {
	now := time.Now()
	var issued []models.GuestEntry
	err := db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := decide(tx, requestID, map[string]any{
			"status":     types.REQUEST_APPROVED,
			"decided_by": deciderID,
			"decided_at": now,
		}); err != nil {
			return err
		}
		var entries []models.GuestEntry
		if err := tx.
			Where("request_id = ? AND code IS NULL", requestID).
			Order("id asc").
			Find(&entries).
			Error; err != nil {
			return err
		}
		for _, entry := range entries {
			code, err := utils.GenerateGuestCode()
			if err != nil {
				return err
			}
			res := tx.
				Model(&models.GuestEntry{}).
				Where("id = ? AND code IS NULL", entry.ID).
				Updates(map[string]any{"code": code, "issued_at": now})
			if res.Error != nil {
				return fmt.Errorf("error issuing code for guest [%d]: %w", entry.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			entry.Code = &code
			entry.IssuedAt = &now
			issued = append(issued, entry)
		}
		return RecordTrail(tx, "request.approved", deciderID, "requests", fmt.Sprintf("%d", requestID), types.JSONB{
			"issued": len(issued),
		})
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

func RejectGuestRequest(ctx context.Context, requestID uint, deciderID uint, reason string) error {
	return db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := decide(tx, requestID, map[string]any{
			"status":           types.REQUEST_REJECTED,
			"decided_by":       deciderID,
			"decided_at":       time.Now(),
			"rejection_reason": reason,
		}); err != nil {
			return err
		}
		return RecordTrail(tx, "request.rejected", deciderID, "requests", fmt.Sprintf("%d", requestID), types.JSONB{
			"reason": reason,
		})
	})
}

// ExpireStaleRequests expires pending requests whose event already started.
func ExpireStaleRequests() (int64, error) {
	now := time.Now()
	res := db.GetDb().
		Model(&models.GuestRequest{}).
		Where("status = ?", types.REQUEST_PENDING).
		Where("event_id IN (?)", db.GetDb().Model(&models.Event{}).Select("id").Where("date_time < ?", now)).
		Update("status", types.REQUEST_EXPIRED)
	if res.Error != nil {
		log.Printf("Error expiring stale requests: %s\n", res.Error.Error())
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func RecordTrail(tx *gorm.DB, kind string, initiator uint, group string, reference string, metadata types.JSONB) error {
	trail := models.TrailLog{
		Type:      kind,
		Initiator: initiator,
		Group:     group,
		Reference: reference,
		Metadata:  metadata,
	}
	if err := tx.Create(&trail).Error; err != nil {
		return fmt.Errorf("error recording trail %s: %w", kind, err)
	}
	return nil
}
