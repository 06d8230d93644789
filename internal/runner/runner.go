package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nholik/deploy-hook/internal/healthcheck"
	"github.com/nholik/deploy-hook/internal/metrics"
	"github.com/nholik/deploy-hook/internal/notify"
	"github.com/nholik/deploy-hook/internal/transition"
	"github.com/rs/zerolog"
)

// Outcome reports what happened to one event.
type Outcome struct {
	Qualified  bool   `json:"qualified"`
	Reason     string `json:"reason,omitempty"`
	Dispatched bool   `json:"dispatched"`
	DryRun     bool   `json:"dry_run,omitempty"`
	Error      string `json:"error,omitempty"`
	Err        error  `json:"-"`
}

// Runner processes lifecycle events one at a time: filter, then notify.
type Runner struct {
	logger   zerolog.Logger
	filter   *transition.Filter
	notifier notify.Notifier
	target   string
	dryRun   bool
	metrics  *metrics.Metrics
	tracker  *healthcheck.Tracker
	now      func() time.Time
	mu       sync.Mutex
}

// Option customizes runner behavior.
type Option func(*Runner)

// WithTarget records the resolved webhook URL. An empty target marks
// events as not dispatched.
func WithTarget(target string) Option {
	return func(r *Runner) {
		r.target = target
	}
}

// WithDryRun marks qualifying events as not dispatched and keeps them out of
// dispatch metrics and health tracking. The notifier is still called so it can
// log what would have been sent.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithTracker records dispatch results for health endpoints.
func WithTracker(tracker *healthcheck.Tracker) Option {
	return func(r *Runner) {
		r.tracker = tracker
	}
}

// New constructs a Runner.
func New(logger zerolog.Logger, filter *transition.Filter, notifier notify.Notifier, opts ...Option) *Runner {
	r := &Runner{
		logger:   logger,
		filter:   filter,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle processes a single event to completion. Events are serialized so at
// most one dispatch is in flight. Dispatch failures are returned in the Outcome
// and never propagated as panics.
func (r *Runner) Handle(ctx context.Context, event transition.Event) (outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := r.logger.With().
		Str("content_type", event.ContentType).
		Str("transition", string(event.Kind())).
		Logger()
	if event.ID != "" {
		logger = logger.With().Str("id", event.ID).Logger()
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			err := wrapRuntime("handle event", event, fmt.Errorf("panic: %v", recovered))
			logger.Error().Err(err).Msg("event handling failed")
			outcome.Err = err
			outcome.Error = err.Error()
		}
	}()

	decision := r.filter.Decide(event)
	if !decision.Qualified {
		r.metrics.IncEvents(decision.Reason)
		logger.Debug().Str("reason", decision.Reason).Msg("event skipped")
		return Outcome{Reason: decision.Reason}
	}
	r.metrics.IncEvents("qualified")

	outcome = Outcome{Qualified: true}
	if r.target == "" {
		logger.Debug().Msg("no webhook configured; dispatch skipped")
		return outcome
	}

	if r.dryRun {
		outcome.DryRun = true
		if err := r.notifier.Notify(ctx, event); err != nil {
			logger.Warn().Err(err).Msg("dry-run notifier failed")
		}
		return outcome
	}

	start := r.now()
	err := r.notifier.Notify(ctx, event)
	duration := r.now().Sub(start)

	r.metrics.ObserveDispatch(duration, err)
	r.tracker.RecordDispatch(duration, err)

	outcome.Dispatched = true
	if err != nil {
		err = wrapRuntime("dispatch", event, err)
		logger.Error().Err(err).Dur("duration", duration).Msg("dispatch failed")
		outcome.Err = err
		outcome.Error = err.Error()
		return outcome
	}

	logger.Info().Dur("duration", duration).Msg("build hook dispatched")
	return outcome
}
