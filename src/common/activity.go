package common

import (
	"clubdesk/src/config"
	"clubdesk/src/db"
	"clubdesk/src/lib"
	"clubdesk/src/models"
	"clubdesk/src/models/scopes"
	"clubdesk/src/types"
	"clubdesk/src/utils"
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrActivityNotFound = errors.New("activity entry not found")
	ErrUserNotFound     = errors.New("user not found")
)

// Stats are cached per year under a generation that every ledger write
// advances. A computation that raced a write lands under the old generation
// and is never read back.
func statsGenerationKey(year int) string {
	return fmt.Sprintf("activity:stats:%d:gen", year)
}

func statsCacheKey(year int, gen int64) string {
	return fmt.Sprintf("activity:stats:%d:v%d", year, gen)
}

// UpsertActivity writes the entry for (userID, date). An existing entry is
// overwritten completely, description included; the last write wins.
func UpsertActivity(ctx context.Context, userID uint, date string, hasActivity bool, description *string) (*models.ActivityEntry, error) {
	day, err := utils.ParseISODate(date)
	if err != nil {
		return nil, err
	}
	entry := models.ActivityEntry{
		UserID:      userID,
		Date:        datatypes.Date(day),
		HasActivity: hasActivity,
		Description: description,
	}
	err = db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.User{}, userID)
		if err != nil {
			return err
		}
		if !found {
			return ErrUserNotFound
		}
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
				DoUpdates: clause.AssignmentColumns([]string{"has_activity", "description", "updated_at"}),
			}).
			Create(&entry).
			Error
	})
	if err != nil {
		return nil, err
	}
	lib.CacheBump(ctx, statsGenerationKey(day.Year()))
	return &entry, nil
}

func DeleteActivity(ctx context.Context, userID uint, date string) error {
	day, err := utils.ParseISODate(date)
	if err != nil {
		return err
	}
	res := db.GetDb().
		WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, datatypes.Date(day)).
		Delete(&models.ActivityEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrActivityNotFound
	}
	lib.CacheBump(ctx, statsGenerationKey(day.Year()))
	return nil
}

// ListActivityMonth returns every entry of the user dated inside the month,
// ordered by date.
func ListActivityMonth(ctx context.Context, userID uint, year int, month int) ([]models.ActivityEntry, error) {
	first, next := utils.MonthRange(year, month)
	entries := []models.ActivityEntry{}
	err := db.GetDb().
		WithContext(ctx).
		Where("user_id = ?", userID).
		Scopes(scopes.Between("date", datatypes.Date(first), datatypes.Date(next))).
		Order("date asc").
		Find(&entries).
		Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ActivityStats aggregates the entries flagged with activity during year.
// Results are cached until the next ledger write for that year.
func ActivityStats(ctx context.Context, year int) (*types.ActivityStats, error) {
	var stats types.ActivityStats
	cacheKey := statsCacheKey(year, lib.CacheGeneration(ctx, statsGenerationKey(year)))
	if lib.CacheGetJSON(ctx, cacheKey, &stats) {
		return &stats, nil
	}
	first, next := utils.YearRange(year)
	tx := db.GetDb().WithContext(ctx)
	inYear := func(db *gorm.DB) *gorm.DB {
		return db.
			Where("activity_entries.has_activity = ?", true).
			Where("activity_entries.date >= ? AND activity_entries.date < ?", datatypes.Date(first), datatypes.Date(next))
	}

	stats = types.ActivityStats{Year: year, Ranking: []types.ActivityRankingRow{}}
	if err := tx.
		Model(&models.ActivityEntry{}).
		Select("activity_entries.user_id, users.name AS user_name, COUNT(*) AS total").
		Joins("JOIN users ON users.id = activity_entries.user_id").
		Scopes(inYear).
		Group("activity_entries.user_id, users.name").
		Order("total DESC, users.name ASC").
		Scan(&stats.Ranking).
		Error; err != nil {
		return nil, fmt.Errorf("error computing activity ranking: %w", err)
	}

	var months []types.ActivityMonthRow
	if err := tx.
		Model(&models.ActivityEntry{}).
		Select("CAST(EXTRACT(MONTH FROM activity_entries.date) AS INTEGER) AS month, COUNT(*) AS total").
		Scopes(inYear).
		Group("month").
		Scan(&months).
		Error; err != nil {
		return nil, fmt.Errorf("error computing activity by month: %w", err)
	}
	stats.ByMonth = make([]types.ActivityMonthRow, 12)
	for i := range stats.ByMonth {
		stats.ByMonth[i].Month = i + 1
	}
	for _, m := range months {
		if m.Month >= 1 && m.Month <= 12 {
			stats.ByMonth[m.Month-1].Total = m.Total
		}
	}

	var weekdays []types.ActivityWeekdayRow
	if err := tx.
		Model(&models.ActivityEntry{}).
		Select("CAST(EXTRACT(ISODOW FROM activity_entries.date) AS INTEGER) AS weekday, COUNT(*) AS total").
		Scopes(inYear).
		Group("weekday").
		Scan(&weekdays).
		Error; err != nil {
		return nil, fmt.Errorf("error computing activity by weekday: %w", err)
	}
	stats.ByWeekday = make([]types.ActivityWeekdayRow, 7)
	for i := range stats.ByWeekday {
		stats.ByWeekday[i].Weekday = i + 1
	}
	for _, w := range weekdays {
		if w.Weekday >= 1 && w.Weekday <= 7 {
			stats.ByWeekday[w.Weekday-1].Total = w.Total
		}
	}

	lib.CacheSetJSON(ctx, cacheKey, &stats, config.StatsCacheTTL())
	return &stats, nil
}
