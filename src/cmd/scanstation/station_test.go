package main

import (
	"bytes"
	"clubdesk/src/scanner"
	"clubdesk/src/types"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAcceptedResult(t *testing.T) {
	usedAt := time.Date(2024, 3, 8, 23, 5, 0, 0, time.UTC)
	out := renderResult(scanner.Result{
		Code:   "ABC123",
		Source: types.SCAN_SOURCE_CAMERA,
		Outcome: &types.ScanOutcome{
			Success:   true,
			Guest:     &types.ScanGuest{ID: 1, Name: "Jane Doe", Document: "123"},
			Event:     &types.ScanEvent{ID: 3, Name: "Friday Night", DateTime: usedAt},
			Table:     &types.ScanTable{ID: 4, Name: "T12", Sector: "VIP"},
			Package:   &types.ScanPackage{ID: 5, Name: "Gold"},
			ScannedBy: &types.ScanValidator{ID: 2, Name: "staff-1"},
			UsedAt:    &usedAt,
		},
	})

	for _, want := range []string{"ADMITTED", "Jane Doe (123)", "Friday Night", "T12 / VIP", "Gold", "staff-1", "ABC123 (camera)"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderRejectedResult(t *testing.T) {
	outcome := types.RejectedScan(types.SCAN_ALREADY_USED)
	outcome.Guest = &types.ScanGuest{ID: 1, Name: "Jane Doe"}
	outcome.ScannedBy = &types.ScanValidator{ID: 2, Name: "staff-1"}

	out := renderResult(scanner.Result{Code: "ABC123", Source: types.SCAN_SOURCE_MANUAL, Outcome: outcome})

	assert.Contains(t, out, "ALREADY_USED")
	assert.Contains(t, out, outcome.ErrorMessage)
	assert.Contains(t, out, "Scanned by: staff-1")
	assert.NotContains(t, out, "ADMITTED")
}

func TestRenderResultWithoutOutcome(t *testing.T) {
	out := renderResult(scanner.Result{Err: errors.New("boom")})

	assert.Contains(t, out, "boom")
}

func TestRenderFallbackStates(t *testing.T) {
	assert.Contains(t, renderState(scanner.StateNotSecure, scanner.Reason(scanner.ErrNotSecure)), "secure connection")
	assert.Contains(t, renderState(scanner.StatePermissionDenied, scanner.Reason(scanner.ErrPermissionDenied)), ":retry")
	assert.Contains(t, renderState(scanner.StateActive, ""), "Camera active")
}

func TestStationManualEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer station-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"guest":{"id":1,"name":"Jane Doe"},"scanned_by":{"id":2,"name":"door-1"}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	s := &station{out: &out}
	s.channel = scanner.NewChannel(nil, scanner.NewQRDecoder(), scanner.NewAPIClient(srv.URL, "station-token"))

	err := s.run(context.Background(), strings.NewReader("abc123\n\n:quit\nnever-sent\n"))

	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, scanner.Reason(scanner.ErrNoCamera))
	assert.Contains(t, text, "ADMITTED")
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "ABC123 (manual)")
	assert.NotContains(t, text, "NEVER-SENT")
}

func TestStationInputReaderStopsAfterQuit(t *testing.T) {
	s := &station{out: io.Discard}
	s.channel = scanner.NewChannel(nil, scanner.NewQRDecoder(), nil)

	require.NoError(t, s.run(context.Background(), strings.NewReader(":quit\nfirst\nsecond\n")))

	stopped := make(chan struct{})
	go func() {
		s.input.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stdin reader still blocked after quit")
	}
}
