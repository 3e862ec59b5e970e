package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type State string

const (
	StateUp       State = "UP"
	StateDown     State = "DOWN"
	StateDegraded State = "DEGRADED"
	StateUnknown  State = "UNKNOWN"
)

const DefaultTTL = 5 * time.Minute

type Status struct {
	Healthy     bool      `json:"healthy"`
	State       State     `json:"state"`
	Message     string    `json:"message"`
	LastChecked time.Time `json:"last_checked"`
}

func Up(msg string, at time.Time) Status {
	return Status{Healthy: true, State: StateUp, Message: msg, LastChecked: at}
}

func Down(msg string, at time.Time) Status {
	return Status{Healthy: false, State: StateDown, Message: msg, LastChecked: at}
}

func Degraded(msg string, at time.Time) Status {
	return Status{Healthy: false, State: StateDegraded, Message: msg, LastChecked: at}
}

// Check performs a cheap upstream reachability test.
type Check func(ctx context.Context) Status

// Tracker caches one adapter's health. Discovery outcomes update it directly;
// a stale or empty cache is refreshed through the check.
type Tracker struct {
	mu     sync.Mutex
	ttl    time.Duration
	check  Check
	cached *Status
	now    func() time.Time
}

func NewTracker(ttl time.Duration, check Check) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{ttl: ttl, check: check, now: time.Now}
}

// Get returns the cached status when younger than the TTL, probing otherwise.
func (t *Tracker) Get(ctx context.Context) Status {
	t.mu.Lock()
	if t.cached != nil && t.now().Sub(t.cached.LastChecked) < t.ttl {
		s := *t.cached
		t.mu.Unlock()
		return s
	}
	check := t.check
	t.mu.Unlock()

	if check == nil {
		s := Status{State: StateUnknown, Message: "no check configured", LastChecked: t.now()}
		t.set(s)
		return s
	}
	s := t.runCheck(ctx, check)
	t.set(s)
	return s
}

// Peek returns the cached status without probing.
func (t *Tracker) Peek() (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cached == nil {
		return Status{State: StateUnknown}, false
	}
	return *t.cached, true
}

func (t *Tracker) MarkUp(msg string)       { t.set(Up(msg, t.now())) }
func (t *Tracker) MarkDown(msg string)     { t.set(Down(msg, t.now())) }
func (t *Tracker) MarkDegraded(msg string) { t.set(Degraded(msg, t.now())) }

func (t *Tracker) set(s Status) {
	if s.LastChecked.IsZero() {
		s.LastChecked = t.now()
	}
	t.mu.Lock()
	t.cached = &s
	t.mu.Unlock()
}

func (t *Tracker) runCheck(ctx context.Context, check Check) (s Status) {
	defer func() {
		if r := recover(); r != nil {
			s = Down(fmt.Sprintf("health check panicked: %v", r), t.now())
		}
	}()
	return check(ctx)
}
