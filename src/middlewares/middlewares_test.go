package middlewares

import (
	"clubdesk/src/db"
	"clubdesk/src/types"
	"clubdesk/src/utils"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(pre ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(pre...)
	r.GET("/scan", RequireCapability(types.CAP_SCANNER_OPERATE), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"role": RoleOf(ctx), "name": ctx.GetString("name")})
	})
	return r
}

func withRole(role types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("id", uint(1))
		ctx.Set("role", role)
		ctx.Next()
	}
}

func TestRequireCapability(t *testing.T) {
	cases := []struct {
		role types.Role
		want int
	}{
		{types.ROLE_SECURITY, http.StatusOK},
		{types.ROLE_MANAGER, http.StatusOK},
		{types.ROLE_PROMOTER, http.StatusForbidden},
		{types.ROLE_USER, http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/scan", nil)
		newRouter(withRole(c.role)).ServeHTTP(w, req)
		assert.Equal(t, c.want, w.Code, "role %q", c.role)
	}
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	_, mock := db.GetMockDB()
	router := newRouter(AuthMiddleware)

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/scan", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, gjson.Get(w.Body.String(), "error").String())
	})

	t.Run("garbage token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/scan", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("role comes from the stored user", func(t *testing.T) {
		token, err := utils.GenerateJWT(7, "Door", types.ROLE_PROMOTER)
		require.NoError(t, err)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","name","email","role" FROM "users"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}).
				AddRow(7, "Door", "door@club.test", "SECURITY"))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/scan", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "SECURITY", gjson.Get(w.Body.String(), "role").String())
		assert.Equal(t, "Door", gjson.Get(w.Body.String(), "name").String())
	})

	t.Run("deleted user", func(t *testing.T) {
		token, err := utils.GenerateJWT(8, "Gone", types.ROLE_ADMIN)
		require.NoError(t, err)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","name","email","role" FROM "users"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/scan", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID, SecureHeaders)
	r.GET("/", func(ctx *gin.Context) { ctx.String(http.StatusOK, ctx.GetString("request_id")) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "6f1c1d0e-8a43-4c4e-9a57-0c0b4b0e6f11")
	r.ServeHTTP(w, req)
	assert.Equal(t, "6f1c1d0e-8a43-4c4e-9a57-0c0b4b0e6f11", w.Body.String())
}
