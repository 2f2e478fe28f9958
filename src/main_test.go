package main

import (
	"clubdesk/src/db"
	"clubdesk/src/lib"
	"clubdesk/src/types"
	"clubdesk/src/utils"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
)

type TestSuite struct {
	suite.Suite
	Mock sqlmock.Sqlmock
}

var userColumns = []string{"id", "name", "email", "role"}

const authSQL = `SELECT "id","name","email","role" FROM "users"`

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("MAINTENANCE_MODE", "false")
	lib.NewRedisClient(nil)
	registerValidators()
}

func (s *TestSuite) SetupTest() {
	_, mock := db.GetMockDB()
	s.Mock = mock
}

func (s *TestSuite) TearDownTest() {
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func newTestRouter() *gin.Engine {
	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	guestAuthRoutes(router)
	authorizedRoutes(router)
	return router
}

// signedIn returns a bearer header for the user and queues the lookup done
// by the auth middleware.
func (s *TestSuite) signedIn(id uint, name string, role types.Role) string {
	token, err := utils.GenerateJWT(id, name, role)
	require.NoError(s.T(), err)
	s.Mock.ExpectQuery(regexp.QuoteMeta(authSQL)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id, name, "user@example.com", string(role)))
	return "Bearer " + token
}

func (s *TestSuite) do(router *gin.Engine, method, target, body, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	router.ServeHTTP(w, req)
	return w
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	assert.NotEmpty(s.T(), w.Header().Get("X-Request-ID"))
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Setenv("MAINTENANCE_MODE", "false")

	w := s.do(newTestRouter(), "POST", "/api/v1/auth/sign-in", `{}`, "")

	assert.Equal(s.T(), 503, w.Code)
	assert.Equal(s.T(), "server is under maintenance", gjson.Get(w.Body.String(), "error").String())
}

func (s *TestSuite) TestSignUpValidation() {
	w := s.do(newTestRouter(), "POST", "/api/v1/auth/sign-up", `{"name":"Ana","email":"not-an-email","password":"short"}`, "")

	assert.Equal(s.T(), 400, w.Code)
	assert.True(s.T(), gjson.Get(w.Body.String(), "error").Exists())
}

func (s *TestSuite) TestSignInWrongPassword() {
	hash, err := utils.HashPassword("the-right-password")
	require.NoError(s.T(), err)
	s.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role"}).
			AddRow(3, "Ana", "ana@example.com", hash, "MANAGER"))

	w := s.do(newTestRouter(), "POST", "/api/v1/auth/sign-in", `{"email":"Ana@Example.com","password":"a-wrong-password"}`, "")

	assert.Equal(s.T(), 401, w.Code)
	assert.Equal(s.T(), "invalid email or password", gjson.Get(w.Body.String(), "error").String())
}

func (s *TestSuite) TestMissingToken() {
	w := s.do(newTestRouter(), "POST", "/api/v1/scans/validate", `{"code":"ABC"}`, "")

	assert.Equal(s.T(), 401, w.Code)
}

func (s *TestSuite) TestScannerRequiresCapability() {
	auth := s.signedIn(4, "promoter", types.ROLE_PROMOTER)

	w := s.do(newTestRouter(), "POST", "/api/v1/scans/validate", `{"code":"ABC"}`, auth)

	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestValidateUnknownCode() {
	auth := s.signedIn(2, "door-1", types.ROLE_SECURITY)
	s.Mock.ExpectQuery(regexp.QuoteMeta("SELECT ge.id AS entry_id")).
		WillReturnRows(sqlmock.NewRows([]string{"entry_id"}))
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "scan_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectCommit()

	w := s.do(newTestRouter(), "POST", "/api/v1/scans/validate", `{"code":"nope","source":"manual"}`, auth)

	assert.Equal(s.T(), 200, w.Code)
	body := w.Body.String()
	assert.False(s.T(), gjson.Get(body, "success").Bool())
	assert.Equal(s.T(), "INVALID_CODE", gjson.Get(body, "error_code").String())
	assert.False(s.T(), gjson.Get(body, "guest").Exists())
}

func (s *TestSuite) TestValidateAcceptedCode() {
	auth := s.signedIn(2, "door-1", types.ROLE_SECURITY)
	eventDate := time.Date(2024, 3, 8, 23, 0, 0, 0, time.UTC)
	s.Mock.ExpectQuery(regexp.QuoteMeta("SELECT ge.id AS entry_id")).
		WillReturnRows(sqlmock.NewRows([]string{
			"entry_id", "guest_name", "guest_document", "used_at", "used_by", "scanned_by_name",
			"event_id", "event_name", "event_date_time",
		}).AddRow(10, "Jane Doe", "123", nil, nil, nil, 3, "Friday Night", eventDate))
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(regexp.QuoteMeta(`UPDATE "guest_entries" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "scan_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectCommit()

	w := s.do(newTestRouter(), "POST", "/api/v1/scans/validate", `{"code":"abcd"}`, auth)

	assert.Equal(s.T(), 200, w.Code)
	body := w.Body.String()
	assert.True(s.T(), gjson.Get(body, "success").Bool())
	assert.False(s.T(), gjson.Get(body, "error_code").Exists())
	assert.Equal(s.T(), "Jane Doe", gjson.Get(body, "guest.name").String())
	assert.Equal(s.T(), "Friday Night", gjson.Get(body, "event.name").String())
	assert.Equal(s.T(), "door-1", gjson.Get(body, "scanned_by.name").String())
	assert.True(s.T(), gjson.Get(body, "used_at").Exists())
}

func (s *TestSuite) TestValidateMalformedBody() {
	auth := s.signedIn(2, "door-1", types.ROLE_SECURITY)

	w := s.do(newTestRouter(), "POST", "/api/v1/scans/validate", `{"code":`, auth)

	assert.Equal(s.T(), 400, w.Code)
	assert.Equal(s.T(), "UNKNOWN_ERROR", gjson.Get(w.Body.String(), "error_code").String())
}

func (s *TestSuite) TestValidateStoreFailureIsServerError() {
	auth := s.signedIn(2, "door-1", types.ROLE_SECURITY)
	s.Mock.ExpectQuery(regexp.QuoteMeta("SELECT ge.id AS entry_id")).
		WillReturnError(errors.New("connection reset"))
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "scan_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectCommit()

	w := s.do(newTestRouter(), "POST", "/api/v1/scans/validate", `{"code":"abcd"}`, auth)

	assert.Equal(s.T(), 500, w.Code)
	body := w.Body.String()
	assert.False(s.T(), gjson.Get(body, "success").Bool())
	assert.Equal(s.T(), "UNKNOWN_ERROR", gjson.Get(body, "error_code").String())
	assert.NotContains(s.T(), body, "connection reset")
}

func (s *TestSuite) TestDeleteMissingActivity() {
	auth := s.signedIn(1, "manager", types.ROLE_MANAGER)
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "activity_entries"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.Mock.ExpectCommit()

	w := s.do(newTestRouter(), "DELETE", "/api/v1/activity/7/2024-03-05", "", auth)

	assert.Equal(s.T(), 404, w.Code)
	assert.False(s.T(), gjson.Get(w.Body.String(), "success").Bool())
}

func (s *TestSuite) TestUpsertActivityRejectsBadDate() {
	auth := s.signedIn(1, "manager", types.ROLE_MANAGER)

	w := s.do(newTestRouter(), "PUT", "/api/v1/activity", `{"user_id":7,"date":"2024-02-30","has_activity":true}`, auth)

	assert.Equal(s.T(), 400, w.Code)
	assert.False(s.T(), gjson.Get(w.Body.String(), "success").Bool())
}

func (s *TestSuite) TestActivityOfOthersNeedsCapability() {
	auth := s.signedIn(5, "someone", types.ROLE_USER)

	w := s.do(newTestRouter(), "GET", "/api/v1/activity/7?year=2024&month=3", "", auth)

	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestOwnActivityMonth() {
	auth := s.signedIn(5, "someone", types.ROLE_USER)
	s.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "activity_entries" WHERE user_id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "has_activity"}).
			AddRow(1, 5, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true))

	w := s.do(newTestRouter(), "GET", "/api/v1/activity/5?year=2024&month=3", "", auth)

	assert.Equal(s.T(), 200, w.Code)
	body := w.Body.String()
	assert.True(s.T(), gjson.Get(body, "success").Bool())
	assert.Equal(s.T(), "2024-03-05", gjson.Get(body, "data.0.date").String())
}

func (s *TestSuite) TestLastAdminCannotBeDemoted() {
	auth := s.signedIn(1, "admin", types.ROLE_ADMIN)
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "admin", "admin@example.com", "ADMIN"))
	s.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE role = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.Mock.ExpectRollback()

	w := s.do(newTestRouter(), "PATCH", "/api/v1/users/1/role", `{"role":"MANAGER"}`, auth)

	assert.Equal(s.T(), 409, w.Code)
}

func (s *TestSuite) TestUsersNeedAdmin() {
	auth := s.signedIn(1, "manager", types.ROLE_MANAGER)

	w := s.do(newTestRouter(), "GET", "/api/v1/users", "", auth)

	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestJobRunsNeedAdmin() {
	auth := s.signedIn(1, "manager", types.ROLE_MANAGER)

	w := s.do(newTestRouter(), "GET", "/api/v1/jobs/runs", "", auth)

	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestDeleteMissingSector() {
	auth := s.signedIn(1, "manager", types.ROLE_MANAGER)
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sectors" SET "deleted_at"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.Mock.ExpectCommit()

	w := s.do(newTestRouter(), "DELETE", "/api/v1/sectors/9", "", auth)

	assert.Equal(s.T(), 404, w.Code)
	assert.Equal(s.T(), "not found", gjson.Get(w.Body.String(), "error").String())
}

func (s *TestSuite) TestDeletePublishedEventConflicts() {
	auth := s.signedIn(1, "manager", types.ROLE_MANAGER)
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "events" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}).AddRow(3, "Friday Night", "published"))
	s.Mock.ExpectRollback()

	w := s.do(newTestRouter(), "DELETE", "/api/v1/events/3", "", auth)

	assert.Equal(s.T(), 409, w.Code)
}

func TestSuiteRun(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
