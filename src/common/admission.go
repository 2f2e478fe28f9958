package common

import (
	"clubdesk/src/db"
	"clubdesk/src/models"
	"clubdesk/src/types"
	"clubdesk/src/utils"
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

const scanLogCodeLength = 128

// Validator identifies the staff member presenting a code.
type Validator struct {
	ID        uint
	Name      string
	RequestID string
}

type guestCodeRow struct {
	EntryID       uint
	GuestName     string
	GuestDocument string
	UsedAt        *time.Time
	UsedBy        *uint
	ScannedByName *string
	EventID       uint
	EventName     string
	EventDateTime time.Time
	TableID       *uint
	TableName     *string
	SectorName    *string
	PackageID     *uint
	PackageName   *string
}

func (r *guestCodeRow) outcome() *types.ScanOutcome {
	out := &types.ScanOutcome{
		Guest: &types.ScanGuest{ID: r.EntryID, Name: r.GuestName, Document: r.GuestDocument},
		Event: &types.ScanEvent{ID: r.EventID, Name: r.EventName, DateTime: r.EventDateTime},
	}
	if r.TableID != nil {
		out.Table = &types.ScanTable{ID: *r.TableID}
		if r.TableName != nil {
			out.Table.Name = *r.TableName
		}
		if r.SectorName != nil {
			out.Table.Sector = *r.SectorName
		}
	}
	if r.PackageID != nil {
		out.Package = &types.ScanPackage{ID: *r.PackageID}
		if r.PackageName != nil {
			out.Package.Name = *r.PackageName
		}
	}
	return out
}

func (r *guestCodeRow) alreadyUsed() *types.ScanOutcome {
	out := r.outcome()
	out.Success = false
	out.ErrorCode = types.SCAN_ALREADY_USED
	out.ErrorMessage = types.ScanErrorMessages[types.SCAN_ALREADY_USED]
	out.UsedAt = r.UsedAt
	if r.UsedBy != nil {
		out.ScannedBy = &types.ScanValidator{ID: *r.UsedBy}
		if r.ScannedByName != nil {
			out.ScannedBy.Name = *r.ScannedByName
		}
	}
	return out
}

func lookupGuestCode(tx *gorm.DB, code string) (*guestCodeRow, error) {
	var row guestCodeRow
	res := tx.
		Table("guest_entries AS ge").
		Select(`ge.id AS entry_id, ge.name AS guest_name, ge.document AS guest_document,
			ge.used_at, ge.used_by, u.name AS scanned_by_name,
			e.id AS event_id, e.name AS event_name, e.date_time AS event_date_time,
			t.id AS table_id, t.name AS table_name, s.name AS sector_name,
			p.id AS package_id, p.name AS package_name`).
		Joins("JOIN guest_requests AS gr ON gr.id = ge.request_id").
		Joins("JOIN events AS e ON e.id = gr.event_id").
		Joins("LEFT JOIN venue_tables AS t ON t.id = gr.table_id").
		Joins("LEFT JOIN sectors AS s ON s.id = t.sector_id").
		Joins("LEFT JOIN packages AS p ON p.id = gr.package_id").
		Joins("LEFT JOIN users AS u ON u.id = ge.used_by").
		Where("ge.code = ? AND ge.deleted_at IS NULL", code).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || row.EntryID == 0 {
		return nil, nil
	}
	return &row, nil
}

// ValidateGuestCode checks a presented code and consumes it when unused.
// Concurrent calls for one code yield exactly one accepted outcome; every
// other caller gets ALREADY_USED. The store calls ignore cancellation of ctx
// so a dropped client cannot leave a consumed code unreported in the log.
func ValidateGuestCode(ctx context.Context, rawCode string, validator Validator, source types.ScanSource) *types.ScanOutcome {
	ctx = context.WithoutCancel(ctx)
	if source == "" {
		source = types.SCAN_SOURCE_CAMERA
	}
	code := utils.NormalizeGuestCode(rawCode)
	if code == "" || len(code) > utils.MaxCodeLength {
		out := types.RejectedScan(types.SCAN_INVALID_CODE)
		recordScan(ctx, code, source, validator, nil, out)
		return out
	}

	tx := db.GetDb().WithContext(ctx)
	row, err := lookupGuestCode(tx, code)
	if err != nil {
		log.Printf("[%s] Error looking up guest code: %s\n", validator.RequestID, err.Error())
		out := types.RejectedScan(types.SCAN_UNKNOWN_ERROR)
		recordScan(ctx, code, source, validator, nil, out)
		return out
	}
	if row == nil {
		out := types.RejectedScan(types.SCAN_INVALID_CODE)
		recordScan(ctx, code, source, validator, nil, out)
		return out
	}
	if row.UsedAt != nil {
		out := row.alreadyUsed()
		recordScan(ctx, code, source, validator, row, out)
		return out
	}

	usedAt := time.Now()
	res := tx.
		Model(&models.GuestEntry{}).
		Where("id = ? AND used_at IS NULL", row.EntryID).
		Updates(map[string]any{"used_at": usedAt, "used_by": validator.ID})
	if res.Error != nil {
		log.Printf("[%s] Error consuming guest code [%d]: %s\n", validator.RequestID, row.EntryID, res.Error.Error())
		out := types.RejectedScan(types.SCAN_UNKNOWN_ERROR)
		recordScan(ctx, code, source, validator, row, out)
		return out
	}
	if res.RowsAffected == 0 {
		// Another validator consumed the code between lookup and update.
		winner, err := lookupGuestCode(tx, code)
		if err != nil || winner == nil || winner.UsedAt == nil {
			if err != nil {
				log.Printf("[%s] Error reloading guest code [%d]: %s\n", validator.RequestID, row.EntryID, err.Error())
			}
			out := row.outcome()
			out.Success = false
			out.ErrorCode = types.SCAN_ALREADY_USED
			out.ErrorMessage = types.ScanErrorMessages[types.SCAN_ALREADY_USED]
			recordScan(ctx, code, source, validator, row, out)
			return out
		}
		out := winner.alreadyUsed()
		recordScan(ctx, code, source, validator, winner, out)
		return out
	}

	out := row.outcome()
	out.Success = true
	out.UsedAt = &usedAt
	out.ScannedBy = &types.ScanValidator{ID: validator.ID, Name: validator.Name}
	recordScan(ctx, code, source, validator, row, out)
	return out
}

func recordScan(ctx context.Context, code string, source types.ScanSource, validator Validator, row *guestCodeRow, out *types.ScanOutcome) {
	code = utils.TruncateUTF8(code, scanLogCodeLength)
	entry := models.ScanLog{
		Code:        code,
		Outcome:     types.SCAN_ACCEPTED,
		Source:      source,
		ValidatorID: validator.ID,
		ScannedAt:   time.Now(),
	}
	if !out.Success {
		entry.Outcome = types.SCAN_REJECTED
		errCode := out.ErrorCode
		entry.ErrorCode = &errCode
	}
	if row != nil {
		entryID, eventID := row.EntryID, row.EventID
		entry.GuestEntryID = &entryID
		entry.EventID = &eventID
	}
	if err := db.GetDb().WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("[%s] Error recording scan for validator [%d]: %s\n", validator.RequestID, validator.ID, err.Error())
	}
}

// ScanHistory returns the most recent validation attempts, newest first.
func ScanHistory(limit int, eventID uint) ([]types.APIResponseScanLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	var rows []types.APIResponseScanLog
	q := db.GetDb().
		Table("scan_logs AS sl").
		Select(`sl.id, sl.code, sl.outcome, sl.error_code, sl.source, sl.event_id,
			sl.validator_id, sl.scanned_at, ge.name AS guest_name, u.name AS validator_name`).
		Joins("LEFT JOIN guest_entries AS ge ON ge.id = sl.guest_entry_id").
		Joins("LEFT JOIN users AS u ON u.id = sl.validator_id")
	if eventID > 0 {
		q = q.Where("sl.event_id = ?", eventID)
	}
	if err := q.Order("sl.scanned_at DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error retrieving scan history: %w", err)
	}
	return rows, nil
}
