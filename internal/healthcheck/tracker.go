package healthcheck

import (
	"sync"
	"time"
)

// Snapshot describes readiness and the latest dispatch.
type Snapshot struct {
	Ready              bool       `json:"ready"`
	Environment        string     `json:"environment,omitempty"`
	LastDispatchTime   *time.Time `json:"last_dispatch_time"`
	DispatchDurationMS int64      `json:"dispatch_duration_ms"`
	Dispatches         int        `json:"dispatches"`
	LastError          string     `json:"last_error,omitempty"`
}

// Tracker records readiness and dispatch results for health endpoints.
type Tracker struct {
	mu               sync.RWMutex
	ready            bool
	environment      string
	lastDispatch     time.Time
	dispatchDuration time.Duration
	dispatches       int
	lastError        string
}

// NewTracker constructs a new Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// MarkReady records that startup checks passed for environment.
func (t *Tracker) MarkReady(environment string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.ready = true
	t.environment = environment
	t.mu.Unlock()
}

// RecordDispatch stores the result of a dispatch attempt.
func (t *Tracker) RecordDispatch(duration time.Duration, err error) {
	if t == nil {
		return
	}
	now := time.Now().UTC()
	t.mu.Lock()
	t.lastDispatch = now
	t.dispatchDuration = duration
	t.dispatches++
	t.lastError = ""
	if err != nil {
		t.lastError = err.Error()
	}
	t.mu.Unlock()
}

// Snapshot returns the current tracker snapshot.
func (t *Tracker) Snapshot() Snapshot {
	if t == nil {
		return Snapshot{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	var last *time.Time
	if !t.lastDispatch.IsZero() {
		value := t.lastDispatch
		last = &value
	}
	return Snapshot{
		Ready:              t.ready,
		Environment:        t.environment,
		LastDispatchTime:   last,
		DispatchDurationMS: int64(t.dispatchDuration / time.Millisecond),
		Dispatches:         t.dispatches,
		LastError:          t.lastError,
	}
}

// Ready reports whether startup checks have passed.
func (t *Tracker) Ready() bool {
	if t == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ready
}
