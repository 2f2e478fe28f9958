package common

import (
	"clubdesk/src/config"
	"clubdesk/src/db"
	"clubdesk/src/models"
	"clubdesk/src/types"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

var ErrInvalidTransition = errors.New("invalid event status transition")

// uniqueSlug appends a numeric suffix until the slug is free in table.
func uniqueSlug(tx *gorm.DB, model any, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "item"
	}
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(model).Unscoped().Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func CreateEvent(ctx context.Context, body *types.CreateEventRequestBody, creatorID uint) (*models.Event, error) {
	dateTime, err := time.Parse(config.TIME_PARSE_FORMAT, body.DateTime)
	if err != nil {
		return nil, err
	}
	event := models.Event{
		Name:        body.Name,
		Description: body.Description,
		DateTime:    dateTime,
		Status:      types.EVENT_DRAFT,
		Capacity:    body.Capacity,
		CreatedBy:   creatorID,
	}
	if body.Publish {
		event.Status = types.EVENT_PUBLISHED
	}
	err = db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := uniqueSlug(tx, &models.Event{}, fmt.Sprintf("%s %s", body.Name, dateTime.Format(config.DATE_FORMAT)))
		if err != nil {
			return err
		}
		event.Slug = s
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func CreateSector(ctx context.Context, body *types.SectorRequestBody) (*models.Sector, error) {
	sector := models.Sector{
		Name:        body.Name,
		Description: body.Description,
		Capacity:    body.Capacity,
		Active:      body.Active == nil || *body.Active,
	}
	err := db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := uniqueSlug(tx, &models.Sector{}, body.Name)
		if err != nil {
			return err
		}
		sector.Slug = s
		return tx.Create(&sector).Error
	})
	if err != nil {
		return nil, err
	}
	return &sector, nil
}

var eventTransitions = map[types.EventStatus][]types.EventStatus{
	types.EVENT_DRAFT:     {types.EVENT_PUBLISHED, types.EVENT_CANCELED},
	types.EVENT_PUBLISHED: {types.EVENT_DRAFT, types.EVENT_CANCELED},
}

// UpdateEventStatus applies a manual status change. Completed and canceled
// events are final.
func UpdateEventStatus(ctx context.Context, id uint, newStatus types.EventStatus) error {
	return db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("id = ?", id).First(&event).Error; err != nil {
			return err
		}
		allowed := false
		for _, s := range eventTransitions[event.Status] {
			if s == newStatus {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, event.Status, newStatus)
		}
		res := tx.
			Model(&models.Event{}).
			Where("id = ? AND status = ?", id, event.Status).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		return nil
	})
}

// DeleteEvent soft-deletes a draft or canceled event.
func DeleteEvent(ctx context.Context, id uint) error {
	return db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("id = ?", id).First(&event).Error; err != nil {
			return err
		}
		if event.Status != types.EVENT_DRAFT && event.Status != types.EVENT_CANCELED {
			return fmt.Errorf("%w: %s events cannot be deleted", ErrInvalidTransition, event.Status)
		}
		return tx.Delete(&event).Error
	})
}

// CompletePastEvents closes published events that ended more than the
// configured grace period ago.
func CompletePastEvents() (int64, error) {
	cutoff := time.Now().Add(-config.EventCompleteAfter())
	res := db.GetDb().
		Model(&models.Event{}).
		Where("status = ? AND date_time < ?", types.EVENT_PUBLISHED, cutoff).
		Update("status", types.EVENT_COMPLETED)
	if res.Error != nil {
		log.Printf("Error completing past events: %s\n", res.Error.Error())
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
