package scanner

import (
	"clubdesk/src/types"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestAPIClientSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/scans/validate", r.URL.Path)
		assert.Equal(t, "Bearer station-token", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "ABC123", gjson.GetBytes(body, "code").String())
		assert.Equal(t, "camera", gjson.GetBytes(body, "source").String())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"error_code":"ALREADY_USED","error_message":"The code has already been used","guest":{"id":1,"name":"Jane Doe"},"scanned_by":{"id":2,"name":"staff-1"}}`))
	}))
	defer srv.Close()

	outcome, err := NewAPIClient(srv.URL+"/", "station-token").Submit(context.Background(), "ABC123", types.SCAN_SOURCE_CAMERA)

	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, types.SCAN_ALREADY_USED, outcome.ErrorCode)
	assert.Equal(t, "Jane Doe", outcome.Guest.Name)
	assert.Equal(t, "staff-1", outcome.ScannedBy.Name)
}

func TestAPIClientSubmitFailures(t *testing.T) {
	tests := []struct {
		status int
		body   string
	}{
		{http.StatusInternalServerError, `{"error":"boom"}`},
		{http.StatusOK, `not json`},
		{http.StatusForbidden, `{"error":"insufficient permissions"}`},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		}))
		outcome, err := NewAPIClient(srv.URL, "t").Submit(context.Background(), "ABC123", types.SCAN_SOURCE_MANUAL)
		assert.Error(t, err)
		require.NotNil(t, outcome)
		assert.Equal(t, types.SCAN_UNKNOWN_ERROR, outcome.ErrorCode)
		srv.Close()
	}
}

func TestAPIClientSubmitServerErrorKeepsOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error_code":"UNKNOWN_ERROR","error_message":"An unexpected error occurred"}`))
	}))
	defer srv.Close()

	outcome, err := NewAPIClient(srv.URL, "t").Submit(context.Background(), "ABC123", types.SCAN_SOURCE_CAMERA)

	assert.Error(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, types.SCAN_UNKNOWN_ERROR, outcome.ErrorCode)
	assert.Equal(t, "An unexpected error occurred", outcome.ErrorMessage)
}

func TestAPIClientSubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	outcome, err := NewAPIClient(srv.URL, "t").Submit(context.Background(), "ABC123", types.SCAN_SOURCE_MANUAL)

	assert.Error(t, err)
	assert.Equal(t, types.SCAN_UNKNOWN_ERROR, outcome.ErrorCode)
}

func TestAPIClientLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if gjson.GetBytes(body, "password").String() != "door-pass" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid email or password"}`))
			return
		}
		w.Write([]byte(`{"token":"jwt-token","user":{"id":2}}`))
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL, "")
	_, err := client.Login(context.Background(), "door@club.test", "wrong")
	assert.ErrorContains(t, err, "invalid email or password")

	token, err := client.Login(context.Background(), "door@club.test", "door-pass")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, "jwt-token", client.Token)
}
