package scanner

import (
	"sync"
	"time"
)

const DefaultCooldown = 2 * time.Second

// Debouncer drops repeat decodes of the same value. A value is held back while
// a submission for it is in flight and for the cool-down after it was last let
// through or last finished.
type Debouncer struct {
	mu       sync.Mutex
	cooldown time.Duration
	now      func() time.Time
	last     map[string]time.Time
	inFlight map[string]bool
}

func NewDebouncer(cooldown time.Duration) *Debouncer {
	return &Debouncer{
		cooldown: cooldown,
		now:      time.Now,
		last:     map[string]time.Time{},
		inFlight: map[string]bool{},
	}
}

// Begin reports whether a camera decode of code should be submitted. When it
// returns true the caller owns the submission and must call Done.
func (d *Debouncer) Begin(code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if d.inFlight[code] {
		return false
	}
	if at, ok := d.last[code]; ok && now.Sub(at) < d.cooldown {
		return false
	}
	d.prune(now)
	d.last[code] = now
	d.inFlight[code] = true
	return true
}

// Acquire is Begin for operator input: only the in-flight guard applies.
func (d *Debouncer) Acquire(code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight[code] {
		return false
	}
	d.last[code] = d.now()
	d.inFlight[code] = true
	return true
}

// Done releases code and restarts its cool-down.
func (d *Debouncer) Done(code string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, code)
	d.last[code] = d.now()
}

func (d *Debouncer) prune(now time.Time) {
	for code, at := range d.last {
		if !d.inFlight[code] && now.Sub(at) >= d.cooldown {
			delete(d.last, code)
		}
	}
}
