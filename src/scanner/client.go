package scanner

import (
	"bytes"
	"clubdesk/src/types"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var ErrUnauthorized = errors.New("station is not signed in or lacks scanner access")

type Submitter interface {
	Submit(ctx context.Context, code string, source types.ScanSource) (*types.ScanOutcome, error)
}

// APIClient talks to the admission API on behalf of a door station.
type APIClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Submit never returns a nil outcome. Transport and decoding failures come
// back as UNKNOWN_ERROR together with the cause.
func (c *APIClient) Submit(ctx context.Context, code string, source types.ScanSource) (*types.ScanOutcome, error) {
	payload, _ := json.Marshal(types.ValidateScanRequestBody{Code: code, Source: source})
	res, err := c.post(ctx, "/api/v1/scans/validate", payload, true)
	if err != nil {
		return types.RejectedScan(types.SCAN_UNKNOWN_ERROR), err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK, http.StatusBadRequest:
	case http.StatusInternalServerError:
		var outcome types.ScanOutcome
		if err := json.NewDecoder(res.Body).Decode(&outcome); err != nil || outcome.ErrorCode == "" {
			return types.RejectedScan(types.SCAN_UNKNOWN_ERROR), fmt.Errorf("validate responded with status %d", res.StatusCode)
		}
		return &outcome, fmt.Errorf("validate responded with status %d", res.StatusCode)
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.RejectedScan(types.SCAN_UNKNOWN_ERROR), ErrUnauthorized
	default:
		return types.RejectedScan(types.SCAN_UNKNOWN_ERROR), fmt.Errorf("validate responded with status %d", res.StatusCode)
	}

	var outcome types.ScanOutcome
	if err := json.NewDecoder(res.Body).Decode(&outcome); err != nil {
		return types.RejectedScan(types.SCAN_UNKNOWN_ERROR), fmt.Errorf("decoding validation outcome: %w", err)
	}
	if !outcome.Success && outcome.ErrorCode == "" {
		outcome.ErrorCode = types.SCAN_UNKNOWN_ERROR
		outcome.ErrorMessage = types.ScanErrorMessages[types.SCAN_UNKNOWN_ERROR]
	}
	return &outcome, nil
}

// Login exchanges staff credentials for a bearer token.
func (c *APIClient) Login(ctx context.Context, email, password string) (string, error) {
	payload, _ := json.Marshal(types.SignInRequestBody{Email: email, Password: password})
	res, err := c.post(ctx, "/api/v1/auth/sign-in", payload, false)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return "", fmt.Errorf("sign-in failed: %s", msg)
	}
	token := gjson.GetBytes(body, "token").String()
	if token == "" {
		return "", errors.New("sign-in response carried no token")
	}
	c.Token = token
	return token, nil
}

func (c *APIClient) post(ctx context.Context, path string, payload []byte, auth bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth && c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}
