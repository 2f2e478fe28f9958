package scanner

import (
	"clubdesk/src/types"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"
)

type State string

const (
	StateChecking          State = "checking-environment"
	StateNotSecure         State = "not-secure"
	StatePermissionPrompt  State = "permission-prompt"
	StatePermissionDenied  State = "permission-denied"
	StateCameraUnavailable State = "camera-unavailable"
	StateActive            State = "active"
)

var (
	ErrNotActive   = errors.New("camera is not active")
	ErrLoopRunning = errors.New("a decode loop is already running")
	ErrEmptyCode   = errors.New("code is empty")
	ErrInFlight    = errors.New("code is already being validated")
)

const DefaultFrameInterval = 200 * time.Millisecond

// Result is one finished submission.
type Result struct {
	Code    string
	Source  types.ScanSource
	Outcome *types.ScanOutcome
	Err     error
}

type Option func(*Channel)

func WithFrameInterval(d time.Duration) Option {
	return func(c *Channel) { c.interval = d }
}

func WithDebouncer(d *Debouncer) Option {
	return func(c *Channel) { c.debounce = d }
}

// WithResultHandler receives every finished submission. It is called from
// the submitting goroutine and must be safe for concurrent use.
func WithResultHandler(fn func(Result)) Option {
	return func(c *Channel) { c.onResult = fn }
}

// Channel owns a camera, turns its frames into code submissions and keeps
// manual entry available in every state.
type Channel struct {
	camera    Camera
	decoder   Decoder
	submitter Submitter
	debounce  *Debouncer
	interval  time.Duration
	onResult  func(Result)

	mu      sync.Mutex
	state   State
	reason  string
	running bool
	pending sync.WaitGroup
}

func NewChannel(camera Camera, decoder Decoder, submitter Submitter, opts ...Option) *Channel {
	c := &Channel{
		camera:    camera,
		decoder:   decoder,
		submitter: submitter,
		debounce:  NewDebouncer(DefaultCooldown),
		interval:  DefaultFrameInterval,
		onResult:  func(Result) {},
		state:     StateChecking,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state and, outside of active, why the camera is
// not in use.
func (c *Channel) State() (State, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.reason
}

func (c *Channel) setState(state State, reason string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != state {
		log.Printf("[scanner] %s -> %s\n", c.state, state)
	}
	c.state = state
	c.reason = reason
	return state
}

// fallback moves the channel to the manual-only state matching err.
func (c *Channel) fallback(err error) State {
	log.Printf("[scanner] camera unavailable: %s\n", err.Error())
	switch {
	case errors.Is(err, ErrNotSecure):
		return c.setState(StateNotSecure, Reason(err))
	case errors.Is(err, ErrPermissionDenied):
		return c.setState(StatePermissionDenied, Reason(err))
	}
	return c.setState(StateCameraUnavailable, Reason(err))
}

// Init checks the environment and the camera permission.
func (c *Channel) Init(ctx context.Context) State {
	c.setState(StateChecking, "")
	if c.camera == nil {
		return c.fallback(ErrNoCamera)
	}
	if !c.camera.Secure() {
		return c.fallback(ErrNotSecure)
	}
	perm, err := c.camera.Permission(ctx)
	if err != nil {
		return c.fallback(err)
	}
	return c.applyPermission(perm)
}

// Grant asks for camera access. It is valid from permission-prompt and, as a
// retry, from permission-denied and camera-unavailable.
func (c *Channel) Grant(ctx context.Context) State {
	state, _ := c.State()
	switch state {
	case StatePermissionPrompt, StatePermissionDenied, StateCameraUnavailable:
	default:
		return state
	}
	if c.camera == nil {
		return c.fallback(ErrNoCamera)
	}
	perm, err := c.camera.RequestPermission(ctx)
	if err != nil {
		return c.fallback(err)
	}
	return c.applyPermission(perm)
}

func (c *Channel) applyPermission(perm Permission) State {
	switch perm {
	case PermissionGranted:
		return c.setState(StateActive, "")
	case PermissionPrompt:
		return c.setState(StatePermissionPrompt, "Camera access has not been granted yet.")
	}
	return c.fallback(ErrPermissionDenied)
}

// Run polls the camera until ctx is done or the camera fails. A camera
// failure moves the channel to a fallback state and Run returns nil. Run waits
// for its own submissions before returning.
func (c *Channel) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return ErrNotActive
	}
	if c.running {
		c.mu.Unlock()
		return ErrLoopRunning
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.pending.Wait()
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		img, err := c.camera.Snapshot(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.fallback(err)
			return nil
		}
		code, err := c.decoder.Decode(img)
		switch {
		case errors.Is(err, ErrNoCode):
		case err != nil:
			log.Printf("[scanner] could not decode frame: %s\n", err.Error())
		default:
			code = normalizeCode(code)
			if code != "" && c.debounce.Begin(code) {
				c.pending.Add(1)
				go func() {
					defer c.pending.Done()
					c.submit(ctx, code, types.SCAN_SOURCE_CAMERA)
				}()
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// SubmitManual validates an operator-typed code. It works in every state.
func (c *Channel) SubmitManual(ctx context.Context, code string) Result {
	code = normalizeCode(code)
	if code == "" {
		return Result{Source: types.SCAN_SOURCE_MANUAL, Err: ErrEmptyCode}
	}
	if !c.debounce.Acquire(code) {
		return Result{Code: code, Source: types.SCAN_SOURCE_MANUAL, Err: ErrInFlight}
	}
	return c.submit(ctx, code, types.SCAN_SOURCE_MANUAL)
}

// submit is detached from ctx: a validation that reached the server stands.
func (c *Channel) submit(ctx context.Context, code string, source types.ScanSource) Result {
	defer c.debounce.Done(code)
	outcome, err := c.submitter.Submit(context.WithoutCancel(ctx), code, source)
	if err != nil {
		log.Printf("[scanner] submission of %s failed: %s\n", source, err.Error())
	}
	res := Result{Code: code, Source: source, Outcome: outcome, Err: err}
	c.onResult(res)
	return res
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
