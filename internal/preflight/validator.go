package preflight

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/nholik/deploy-hook/internal/environment"
	"github.com/rs/zerolog"
)

// Versions pairs a runtime version with a host platform version.
type Versions struct {
	Runtime  string
	Platform string
}

// Dependency is a named collaborator that must be usable before startup completes.
type Dependency struct {
	Name  string
	Check func() error
}

// WebhookCheck describes what is known about webhook configuration at startup.
type WebhookCheck struct {
	Environment        environment.Environment
	Key                string
	URL                string
	WebhooksOverridden bool
	TargetOverridden   bool
	// Strict ignores registered overrides and requires URL to be set.
	Strict bool
}

// Validator runs the startup checks in order and stops at the first failure.
type Validator struct {
	logger    zerolog.Logger
	required  Versions
	actual    Versions
	webhook   WebhookCheck
	deps      []Dependency
	adminURL  string
	reporters []Reporter
	messages  Messages
	trail     []State
}

// Option customizes Validator behavior.
type Option func(*Validator)

// WithRequired sets the minimum runtime and platform versions.
func WithRequired(required Versions) Option {
	return func(v *Validator) {
		v.required = required
	}
}

// WithActual sets the versions reported by the execution environment.
func WithActual(actual Versions) Option {
	return func(v *Validator) {
		v.actual = actual
	}
}

// WithWebhook sets the webhook configuration inspected by the environment check.
func WithWebhook(check WebhookCheck) Option {
	return func(v *Validator) {
		v.webhook = check
	}
}

// WithDependency registers a dependency probe.
func WithDependency(name string, check func() error) Option {
	return func(v *Validator) {
		v.deps = append(v.deps, Dependency{Name: name, Check: check})
	}
}

// WithAdminURL sets the remedial link used in reports.
func WithAdminURL(url string) Option {
	return func(v *Validator) {
		v.adminURL = url
	}
}

// WithReporter registers a collaborator that receives the failure report.
func WithReporter(reporter Reporter) Option {
	return func(v *Validator) {
		if reporter != nil {
			v.reporters = append(v.reporters, reporter)
		}
	}
}

// New constructs a Validator.
func New(logger zerolog.Logger, opts ...Option) *Validator {
	v := &Validator{logger: logger}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type step struct {
	reached State
	run     func() *ValidationError
}

// Run executes the checks. It returns Ready, or Failed with a *ValidationError
// after the report has been handed to every reporter.
func (v *Validator) Run(ctx context.Context) (State, error) {
	v.trail = []State{Start}

	steps := []step{
		{TextDomainLoaded, v.loadMessages},
		{DependenciesChecked, v.checkDependencies},
		{RuntimeVersionChecked, v.checkRuntimeVersion},
		{PlatformVersionChecked, v.checkPlatformVersion},
		{EnvironmentChecked, v.checkEnvironment},
	}

	for _, s := range steps {
		if failure := s.run(); failure != nil {
			return v.fail(ctx, failure)
		}
		v.trail = append(v.trail, s.reached)
		v.logger.Debug().Str("state", s.reached.String()).Msg("preflight step passed")
	}

	v.trail = append(v.trail, Ready)
	v.logger.Info().
		Str("environment", v.webhook.Environment.String()).
		Msg("preflight checks passed")

	return Ready, nil
}

// Trail returns every state reached by the last Run, in order.
func (v *Validator) Trail() []State {
	return append([]State(nil), v.trail...)
}

// Reached reports whether the last Run passed through state.
func (v *Validator) Reached(state State) bool {
	for _, s := range v.trail {
		if s == state {
			return true
		}
	}
	return false
}

func (v *Validator) fail(ctx context.Context, failure *ValidationError) (State, error) {
	report := failure.complete(v.messages)
	v.trail = append(v.trail, Failed)

	for _, reporter := range v.reporters {
		if err := reporter.Report(ctx, report); err != nil {
			v.logger.Error().Err(err).Str("check", report.Check).Msg("failed to deliver preflight report")
		}
	}

	return Failed, report
}

func (v *Validator) loadMessages() *ValidationError {
	v.messages = DefaultMessages(v.adminURL)
	return nil
}

func (v *Validator) checkDependencies() *ValidationError {
	for _, dep := range v.deps {
		if dep.Check == nil {
			continue
		}
		if err := dep.Check(); err != nil {
			return &ValidationError{
				Check:    CheckDependencies,
				Subtitle: fmt.Sprintf("Dependency unavailable (%s)", dep.Name),
				Body:     fmt.Sprintf("Deploy Hook cannot start without %s: %v", dep.Name, err),
			}
		}
	}
	return nil
}

func (v *Validator) checkRuntimeVersion() *ValidationError {
	if satisfies(v.required.Runtime, v.actual.Runtime) {
		return nil
	}
	return &ValidationError{
		Check:    CheckRuntimeVersion,
		Severity: SeverityCritical,
		Subtitle: fmt.Sprintf("Invalid runtime version (%s)", v.actual.Runtime),
		Body:     fmt.Sprintf("You must be using runtime %s or greater.", v.required.Runtime),
	}
}

func (v *Validator) checkPlatformVersion() *ValidationError {
	if satisfies(v.required.Platform, v.actual.Platform) {
		return nil
	}
	return &ValidationError{
		Check:    CheckPlatformVersion,
		Subtitle: fmt.Sprintf("Invalid platform version (%s)", v.actual.Platform),
		Body:     fmt.Sprintf("You must be using platform version %s or greater.", v.required.Platform),
	}
}

func (v *Validator) checkEnvironment() *ValidationError {
	if v.webhook.URL != "" {
		return nil
	}
	if !v.webhook.Strict && (v.webhook.WebhooksOverridden || v.webhook.TargetOverridden) {
		return nil
	}

	if v.webhook.Environment == environment.Unresolved {
		return &ValidationError{
			Check:    CheckEnvironment,
			Subtitle: "Environment not resolved.",
			Body:     "The WP_ENV variable must name a known environment.",
		}
	}

	key := v.webhook.Key
	if key == "" {
		key = v.webhook.Environment.Key()
	}
	return &ValidationError{
		Check:    CheckEnvironment,
		Subtitle: "Webhook not found.",
		Body:     fmt.Sprintf("The %s variable must be present.", key),
	}
}

// satisfies reports whether actual >= required. An empty requirement always
// passes; an unparsable actual version never does.
func satisfies(required, actual string) bool {
	required = strings.TrimSpace(required)
	if required == "" {
		return true
	}
	want, err := version.NewVersion(required)
	if err != nil {
		return false
	}
	got, err := version.NewVersion(normalizeVersion(actual))
	if err != nil {
		return false
	}
	return got.GreaterThanOrEqual(want)
}

// normalizeVersion strips the "go" prefix reported by runtime.Version.
func normalizeVersion(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "go")
}
