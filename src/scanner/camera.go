package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	_ "image/jpeg"
	_ "image/png"
)

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionPrompt  Permission = "prompt"
	PermissionDenied  Permission = "denied"
)

var (
	ErrNotSecure        = errors.New("camera requires a secure transport")
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrNoCamera         = errors.New("no camera found")
	ErrCameraBusy       = errors.New("camera is busy")
)

// Camera is a frame source owned by a single Channel.
type Camera interface {
	Secure() bool
	Permission(ctx context.Context) (Permission, error)
	RequestPermission(ctx context.Context) (Permission, error)
	Snapshot(ctx context.Context) (image.Image, error)
}

// Reason maps a camera acquisition error to the message shown to the operator.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNotSecure):
		return "Camera access needs a secure connection. Type codes manually."
	case errors.Is(err, ErrPermissionDenied):
		return "Camera permission was denied. Type codes manually or grant access and retry."
	case errors.Is(err, ErrNoCamera):
		return "No camera was found. Type codes manually."
	case errors.Is(err, ErrCameraBusy):
		return "The camera is being used by another application. Type codes manually."
	}
	return "The camera stopped responding. Type codes manually."
}

// FileCamera reads frames from an image file that a local capture process
// keeps overwriting. A sibling "<path>.lock" file marks the device as taken.
type FileCamera struct {
	Path string
}

func (c *FileCamera) Secure() bool {
	return true
}

func (c *FileCamera) Permission(ctx context.Context) (Permission, error) {
	f, err := c.open()
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			return PermissionDenied, nil
		}
		return "", err
	}
	f.Close()
	return PermissionGranted, nil
}

// RequestPermission cannot change file modes, so it only re-checks.
func (c *FileCamera) RequestPermission(ctx context.Context) (Permission, error) {
	return c.Permission(ctx)
}

func (c *FileCamera) Snapshot(ctx context.Context) (image.Image, error) {
	f, err := c.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding frame %s: %w", c.Path, err)
	}
	return img, nil
}

func (c *FileCamera) open() (*os.File, error) {
	if _, err := os.Stat(c.Path + ".lock"); err == nil {
		return nil, ErrCameraBusy
	}
	f, err := os.Open(c.Path)
	switch {
	case err == nil:
		return f, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, ErrNoCamera
	case errors.Is(err, os.ErrPermission):
		return nil, ErrPermissionDenied
	}
	return nil, err
}

// HTTPCamera polls the snapshot endpoint of a network camera.
type HTTPCamera struct {
	URL      string
	Username string
	Password string
	Client   *http.Client

	granted bool
}

func NewHTTPCamera(rawURL, username, password string) *HTTPCamera {
	return &HTTPCamera{
		URL:      rawURL,
		Username: username,
		Password: password,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Secure accepts https and plain http to a loopback host.
func (c *HTTPCamera) Secure() bool {
	u, err := url.Parse(c.URL)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "https":
		return true
	case "http":
		host := u.Hostname()
		if host == "localhost" {
			return true
		}
		ip := net.ParseIP(host)
		return ip != nil && ip.IsLoopback()
	}
	return false
}

func (c *HTTPCamera) Permission(ctx context.Context) (Permission, error) {
	if c.granted {
		return PermissionGranted, nil
	}
	res, err := c.do(ctx, http.MethodHead, false)
	if err != nil {
		return "", err
	}
	res.Body.Close()
	switch err := statusError(res.StatusCode); {
	case err == nil:
		c.granted = true
		return PermissionGranted, nil
	case res.StatusCode == http.StatusUnauthorized && c.Username != "":
		return PermissionPrompt, nil
	case errors.Is(err, ErrPermissionDenied):
		return PermissionDenied, nil
	default:
		return "", err
	}
}

// RequestPermission retries the endpoint with the configured credentials.
func (c *HTTPCamera) RequestPermission(ctx context.Context) (Permission, error) {
	res, err := c.do(ctx, http.MethodHead, true)
	if err != nil {
		return "", err
	}
	res.Body.Close()
	switch err := statusError(res.StatusCode); {
	case err == nil:
		c.granted = true
		return PermissionGranted, nil
	case errors.Is(err, ErrPermissionDenied):
		return PermissionDenied, nil
	default:
		return "", err
	}
}

func (c *HTTPCamera) Snapshot(ctx context.Context) (image.Image, error) {
	res, err := c.do(ctx, http.MethodGet, c.granted && c.Username != "")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if err := statusError(res.StatusCode); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			c.granted = false
		}
		return nil, err
	}
	img, _, err := image.Decode(res.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding frame from %s: %w", c.URL, err)
	}
	return img, nil
}

func (c *HTTPCamera) do(ctx context.Context, method string, withAuth bool) (*http.Response, error) {
	if !c.Secure() {
		return nil, ErrNotSecure
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL, nil)
	if err != nil {
		return nil, err
	}
	if withAuth {
		req.SetBasicAuth(c.Username, c.Password)
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", ErrNoCamera, err.Error())
	}
	return res, nil
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrPermissionDenied
	case code == http.StatusNotFound:
		return ErrNoCamera
	case code == http.StatusLocked, code == http.StatusServiceUnavailable:
		return ErrCameraBusy
	}
	return fmt.Errorf("camera responded with status %d", code)
}
