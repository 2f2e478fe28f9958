package common

import (
	"clubdesk/src/db"
	"clubdesk/src/types"
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var guestCodeColumns = []string{
	"entry_id", "guest_name", "guest_document", "used_at", "used_by", "scanned_by_name",
	"event_id", "event_name", "event_date_time",
	"table_id", "table_name", "sector_name", "package_id", "package_name",
}

const lookupSQL = "SELECT ge.id AS entry_id"

type AdmissionSuite struct {
	suite.Suite
	mock      sqlmock.Sqlmock
	eventDate time.Time
	staff     Validator
}

func (s *AdmissionSuite) SetupTest() {
	_, mock := db.GetMockDB()
	s.mock = mock
	s.eventDate = time.Date(2024, 3, 8, 23, 0, 0, 0, time.UTC)
	s.staff = Validator{ID: 1, Name: "staff-1"}
}

func (s *AdmissionSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *AdmissionSuite) unusedRow() *sqlmock.Rows {
	return sqlmock.NewRows(guestCodeColumns).
		AddRow(10, "Jane Doe", "12345678", nil, nil, nil, 3, "Friday Night", s.eventDate, 4, "VIP 1", "Terrace", 5, "Bottle service")
}

func (s *AdmissionSuite) usedRow(usedAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(guestCodeColumns).
		AddRow(10, "Jane Doe", "12345678", usedAt, 1, "staff-1", 3, "Friday Night", s.eventDate, nil, nil, nil, nil, nil)
}

func (s *AdmissionSuite) expectScanLog() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "scan_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.mock.ExpectCommit()
}

func (s *AdmissionSuite) TestUnknownCodeIsRejected() {
	s.mock.ExpectQuery(regexp.QuoteMeta(lookupSQL)).
		WillReturnRows(sqlmock.NewRows(guestCodeColumns))
	s.expectScanLog()

	out := ValidateGuestCode(context.Background(), "NOPE", s.staff, types.SCAN_SOURCE_MANUAL)

	assert.False(s.T(), out.Success)
	assert.Equal(s.T(), types.SCAN_INVALID_CODE, out.ErrorCode)
	assert.NotEmpty(s.T(), out.ErrorMessage)
	assert.Nil(s.T(), out.Guest)
}

func (s *AdmissionSuite) TestBlankCodeSkipsLookup() {
	s.expectScanLog()

	out := ValidateGuestCode(context.Background(), "  \n", s.staff, types.SCAN_SOURCE_CAMERA)

	assert.False(s.T(), out.Success)
	assert.Equal(s.T(), types.SCAN_INVALID_CODE, out.ErrorCode)
}

func (s *AdmissionSuite) TestUnusedCodeIsAccepted() {
	s.mock.ExpectQuery(regexp.QuoteMeta(lookupSQL)).WillReturnRows(s.unusedRow())
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "guest_entries" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()
	s.expectScanLog()

	before := time.Now()
	out := ValidateGuestCode(context.Background(), "abc123", s.staff, types.SCAN_SOURCE_CAMERA)

	require.True(s.T(), out.Success)
	assert.Empty(s.T(), out.ErrorCode)
	assert.Equal(s.T(), "Jane Doe", out.Guest.Name)
	assert.Equal(s.T(), "Friday Night", out.Event.Name)
	assert.Equal(s.T(), "VIP 1", out.Table.Name)
	assert.Equal(s.T(), "Terrace", out.Table.Sector)
	assert.Equal(s.T(), "Bottle service", out.Package.Name)
	assert.Equal(s.T(), "staff-1", out.ScannedBy.Name)
	require.NotNil(s.T(), out.UsedAt)
	assert.False(s.T(), out.UsedAt.Before(before))
}

func (s *AdmissionSuite) TestUsedCodeIsRejectedWithOriginalUsage() {
	usedAt := time.Date(2024, 3, 8, 23, 15, 0, 0, time.UTC)
	s.mock.ExpectQuery(regexp.QuoteMeta(lookupSQL)).WillReturnRows(s.usedRow(usedAt))
	s.expectScanLog()

	out := ValidateGuestCode(context.Background(), "ABC123", Validator{ID: 2, Name: "staff-2"}, types.SCAN_SOURCE_CAMERA)

	assert.False(s.T(), out.Success)
	assert.Equal(s.T(), types.SCAN_ALREADY_USED, out.ErrorCode)
	assert.Equal(s.T(), "Jane Doe", out.Guest.Name)
	require.NotNil(s.T(), out.ScannedBy)
	assert.Equal(s.T(), "staff-1", out.ScannedBy.Name)
	assert.Equal(s.T(), uint(1), out.ScannedBy.ID)
	assert.True(s.T(), out.UsedAt.Equal(usedAt))
}

func (s *AdmissionSuite) TestLostRaceReportsWinner() {
	usedAt := time.Now()
	s.mock.ExpectQuery(regexp.QuoteMeta(lookupSQL)).WillReturnRows(s.unusedRow())
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "guest_entries" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()
	s.mock.ExpectQuery(regexp.QuoteMeta(lookupSQL)).WillReturnRows(s.usedRow(usedAt))
	s.expectScanLog()

	out := ValidateGuestCode(context.Background(), "ABC123", Validator{ID: 2, Name: "staff-2"}, types.SCAN_SOURCE_CAMERA)

	assert.False(s.T(), out.Success)
	assert.Equal(s.T(), types.SCAN_ALREADY_USED, out.ErrorCode)
	assert.Equal(s.T(), "staff-1", out.ScannedBy.Name)
}

func (s *AdmissionSuite) TestStoreFailureIsUnknownError() {
	s.mock.ExpectQuery(regexp.QuoteMeta(lookupSQL)).WillReturnError(errors.New("connection reset"))
	s.expectScanLog()

	out := ValidateGuestCode(context.Background(), "ABC123", s.staff, types.SCAN_SOURCE_CAMERA)

	assert.False(s.T(), out.Success)
	assert.Equal(s.T(), types.SCAN_UNKNOWN_ERROR, out.ErrorCode)
	assert.NotContains(s.T(), out.ErrorMessage, "connection reset")
}

// loggedCode captures the code column of a scan_logs insert.
type loggedCode struct {
	value string
}

func (c *loggedCode) Match(v driver.Value) bool {
	str, ok := v.(string)
	c.value = str
	return ok
}

func (s *AdmissionSuite) TestOversizedMultibyteCodeIsLogged() {
	code := &loggedCode{}
	arg := sqlmock.AnyArg()
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "scan_logs"`)).
		WithArgs(code, arg, arg, arg, arg, arg, arg, arg).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.mock.ExpectCommit()

	out := ValidateGuestCode(context.Background(), "A"+strings.Repeat("é", 100), s.staff, types.SCAN_SOURCE_MANUAL)

	assert.Equal(s.T(), types.SCAN_INVALID_CODE, out.ErrorCode)
	assert.True(s.T(), utf8.ValidString(code.value))
	assert.LessOrEqual(s.T(), len(code.value), scanLogCodeLength)
	assert.True(s.T(), strings.HasPrefix(code.value, "AÉÉ"))
}

func (s *AdmissionSuite) TestScanLogFailureKeepsOutcome() {
	s.mock.ExpectQuery(regexp.QuoteMeta(lookupSQL)).WillReturnRows(s.unusedRow())
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "guest_entries" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "scan_logs"`)).WillReturnError(errors.New("disk full"))
	s.mock.ExpectRollback()

	out := ValidateGuestCode(context.Background(), "ABC123", s.staff, types.SCAN_SOURCE_CAMERA)

	assert.True(s.T(), out.Success)
}

func (s *AdmissionSuite) TestCanceledContextStillCompletes() {
	s.mock.ExpectQuery(regexp.QuoteMeta(lookupSQL)).WillReturnRows(s.unusedRow())
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "guest_entries" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()
	s.expectScanLog()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := ValidateGuestCode(ctx, "ABC123", s.staff, types.SCAN_SOURCE_CAMERA)

	assert.True(s.T(), out.Success)
}

func (s *AdmissionSuite) TestScanHistory() {
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT sl.id, sl.code, sl.outcome")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "code", "outcome", "error_code", "source", "event_id",
			"validator_id", "scanned_at", "guest_name", "validator_name",
		}).
			AddRow(2, "ABC123", "rejected", "ALREADY_USED", "camera", 3, 2, time.Now(), "Jane Doe", "staff-2").
			AddRow(1, "ABC123", "accepted", nil, "camera", 3, 1, time.Now(), "Jane Doe", "staff-1"))

	rows, err := ScanHistory(500, 3)

	require.NoError(s.T(), err)
	require.Len(s.T(), rows, 2)
	assert.Equal(s.T(), types.SCAN_REJECTED, rows[0].Outcome)
	require.NotNil(s.T(), rows[0].ErrorCode)
	assert.Equal(s.T(), types.SCAN_ALREADY_USED, *rows[0].ErrorCode)
	assert.Nil(s.T(), rows[1].ErrorCode)
	assert.Equal(s.T(), "staff-1", rows[1].ValidatorName)
}

func TestAdmissionSuite(t *testing.T) {
	suite.Run(t, new(AdmissionSuite))
}
