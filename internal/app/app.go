package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"runtime"

	"github.com/nholik/deploy-hook/internal/config"
	"github.com/nholik/deploy-hook/internal/environment"
	"github.com/nholik/deploy-hook/internal/healthcheck"
	"github.com/nholik/deploy-hook/internal/metrics"
	"github.com/nholik/deploy-hook/internal/notify"
	"github.com/nholik/deploy-hook/internal/preflight"
	"github.com/nholik/deploy-hook/internal/runner"
	"github.com/nholik/deploy-hook/internal/server"
	"github.com/nholik/deploy-hook/internal/transition"
	"github.com/rs/zerolog"
)

// ErrDeactivated is returned when startup checks fail and no events will be processed.
var ErrDeactivated = errors.New("integration deactivated")

// App is the configured event pipeline. It is only constructed once startup
// checks pass, and its configuration is read-only afterwards.
type App struct {
	logger      zerolog.Logger
	cfg         config.Config
	environment environment.Environment
	target      string
	filter      *transition.Filter
	runner      *runner.Runner
	tracker     *healthcheck.Tracker
	metrics     *metrics.Metrics
}

type options struct {
	overrides config.Overrides
	reporters []preflight.Reporter
	actual    *preflight.Versions
	metrics   *metrics.Metrics
}

// Option customizes App construction.
type Option func(*options)

// WithOverrides registers extension points. They take precedence over the
// overrides file.
func WithOverrides(overrides config.Overrides) Option {
	return func(o *options) {
		o.overrides = o.overrides.Merge(overrides)
	}
}

// WithReporter adds a collaborator that receives startup failure reports.
func WithReporter(reporter preflight.Reporter) Option {
	return func(o *options) {
		o.reporters = append(o.reporters, reporter)
	}
}

// WithActualVersions replaces the versions reported by the execution environment.
func WithActualVersions(actual preflight.Versions) Option {
	return func(o *options) {
		o.actual = &actual
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New runs the startup checks and, when they pass, builds the pipeline.
// On failure the report has already been delivered and the returned error wraps
// both ErrDeactivated and the *preflight.ValidationError.
func New(ctx context.Context, logger zerolog.Logger, cfg config.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = metrics.New()
	}

	fileOverrides, fileErr := config.LoadOverridesFile(cfg.OverridesFile)
	overrides := fileOverrides.Merge(o.overrides)

	webhooks := cfg.Webhooks.Clone()
	if overrides.Webhooks != nil {
		webhooks = overrides.Webhooks(webhooks.Clone())
		if webhooks == nil {
			webhooks = environment.WebhookMap{}
		}
	}

	overrideURL := ""
	if overrides.TargetURL != nil {
		overrideURL = overrides.TargetURL()
	}
	_, environmentURL := webhooks.Lookup(cfg.Environment)
	target := notify.ResolveTarget(overrideURL, environmentURL)

	actual := preflight.Versions{Runtime: runtime.Version(), Platform: cfg.PlatformVersion}
	if o.actual != nil {
		actual = *o.actual
	}

	key, configuredURL := cfg.Webhooks.Lookup(cfg.Environment)
	validatorOpts := []preflight.Option{
		preflight.WithRequired(preflight.Versions{
			Runtime:  cfg.RequiredRuntimeVersion,
			Platform: cfg.RequiredPlatformVersion,
		}),
		preflight.WithActual(actual),
		preflight.WithWebhook(preflight.WebhookCheck{
			Environment:        cfg.Environment,
			Key:                key,
			URL:                configuredURL,
			WebhooksOverridden: overrides.HasWebhookOverride(),
			TargetOverridden:   overrides.HasTargetOverride(),
			Strict:             cfg.StrictWebhookCheck,
		}),
		preflight.WithAdminURL(cfg.AdminURL),
		preflight.WithDependency("overrides file", func() error { return fileErr }),
		preflight.WithDependency("build hook target", func() error { return checkTarget(target) }),
		preflight.WithReporter(preflight.NewLogReporter(logger)),
		preflight.WithReporter(preflight.NewSlackReporter(cfg.SlackWebhookURL)),
	}
	for _, reporter := range o.reporters {
		validatorOpts = append(validatorOpts, preflight.WithReporter(reporter))
	}

	validator := preflight.New(logger, validatorOpts...)
	if _, err := validator.Run(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeactivated, err)
	}

	filter := transition.NewFilter(contentTypes(overrides), kinds(overrides))
	notifier := buildNotifier(logger, cfg, target)

	tracker := healthcheck.NewTracker()
	tracker.MarkReady(cfg.Environment.String())

	a := &App{
		logger:      logger,
		cfg:         cfg,
		environment: cfg.Environment,
		target:      target,
		filter:      filter,
		tracker:     tracker,
		metrics:     o.metrics,
	}
	a.runner = runner.New(logger, filter, notifier,
		runner.WithTarget(target),
		runner.WithDryRun(cfg.DryRun),
		runner.WithMetrics(o.metrics),
		runner.WithTracker(tracker),
	)

	logger.Info().
		Str("environment", cfg.Environment.String()).
		Bool("target_configured", target != "").
		Bool("target_overridden", overrideURL != "").
		Bool("dry_run", cfg.DryRun).
		Strs("content_types", filter.ContentTypes()).
		Msg("event pipeline ready")

	return a, nil
}

// Handle processes one lifecycle event.
func (a *App) Handle(ctx context.Context, event transition.Event) runner.Outcome {
	return a.runner.Handle(ctx, event)
}

// Target returns the webhook every qualifying event is dispatched to.
func (a *App) Target() string {
	return a.target
}

// Environment returns the resolved deployment environment.
func (a *App) Environment() environment.Environment {
	return a.environment
}

// Tracker returns the health tracker.
func (a *App) Tracker() *healthcheck.Tracker {
	return a.tracker
}

// Serve exposes the event and health endpoints until ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	if a.cfg.HTTPPort == 0 {
		return errors.New("http port must be set to receive events")
	}
	server.Start(ctx, a.logger, a, a.tracker, a.metrics, a.cfg.HTTPPort, a.cfg.MetricsPort)
	<-ctx.Done()
	a.logger.Info().Msg("event pipeline stopped")
	return nil
}

func buildNotifier(logger zerolog.Logger, cfg config.Config, target string) notify.Notifier {
	if cfg.DryRun {
		return notify.NewDryRunNotifier(logger, target)
	}
	buildHook := notify.NewBuildHookNotifier(logger, target,
		notify.WithTimeout(cfg.DispatchTimeout),
		notify.WithMinInterval(cfg.DispatchMinInterval),
	)
	if target == "" || cfg.SlackWebhookURL == "" {
		return buildHook
	}
	return notify.NewNoticeNotifier(logger, buildHook, notify.NewSlackNotifier(logger, cfg.SlackWebhookURL,
		notify.WithSlackTimeout(cfg.DispatchTimeout),
		notify.WithSlackEnvironment(cfg.Environment.String()),
	))
}

func contentTypes(overrides config.Overrides) []string {
	if overrides.ContentTypes == nil {
		return nil
	}
	replaced := overrides.ContentTypes(append([]string{}, transition.DefaultContentTypes...))
	if replaced == nil {
		return []string{}
	}
	return replaced
}

func kinds(overrides config.Overrides) []transition.Kind {
	if overrides.Transitions == nil {
		return nil
	}
	replaced := overrides.Transitions(append([]transition.Kind{}, transition.DefaultKinds...))
	if replaced == nil {
		return []transition.Kind{}
	}
	return replaced
}

func checkTarget(target string) error {
	if target == "" {
		return nil
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid webhook url %q: must include scheme and host", target)
	}
	return nil
}
