package preflight

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nholik/deploy-hook/internal/environment"
	"github.com/rs/zerolog"
)

type recordingReporter struct {
	reports []*ValidationError
	err     error
}

func (r *recordingReporter) Report(_ context.Context, report *ValidationError) error {
	r.reports = append(r.reports, report)
	return r.err
}

func passingOptions() []Option {
	return []Option{
		WithRequired(Versions{Runtime: "1.22", Platform: "5.2"}),
		WithActual(Versions{Runtime: "go1.24.3", Platform: "6.4.2"}),
		WithWebhook(WebhookCheck{
			Environment: environment.Production,
			Key:         environment.Production.Key(),
			URL:         "https://example.netlify.app/hook123",
		}),
	}
}

func TestValidatorReachesReady(t *testing.T) {
	reporter := &recordingReporter{}
	v := New(zerolog.Nop(), append(passingOptions(), WithReporter(reporter))...)

	state, err := v.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != Ready {
		t.Fatalf("expected ready, got %s", state)
	}

	want := []State{Start, TextDomainLoaded, DependenciesChecked, RuntimeVersionChecked, PlatformVersionChecked, EnvironmentChecked, Ready}
	if got := v.Trail(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected trail %v", got)
	}
	if len(reporter.reports) != 0 {
		t.Fatalf("expected no reports, got %d", len(reporter.reports))
	}
}

func TestValidatorRuntimeVersionFailureShortCircuits(t *testing.T) {
	reporter := &recordingReporter{}
	opts := append(passingOptions(),
		WithRequired(Versions{Runtime: "7.2", Platform: "5.2"}),
		WithActual(Versions{Runtime: "7.1", Platform: "6.4.2"}),
		WithReporter(reporter),
	)
	v := New(zerolog.Nop(), opts...)

	state, err := v.Run(context.Background())
	if state != Failed {
		t.Fatalf("expected failed, got %s", state)
	}

	var report *ValidationError
	if !errors.As(err, &report) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if report.Check != CheckRuntimeVersion {
		t.Fatalf("expected runtime check failure, got %s", report.Check)
	}
	if report.Severity != SeverityCritical {
		t.Fatalf("expected critical severity, got %s", report.Severity)
	}
	if v.Reached(RuntimeVersionChecked) || v.Reached(PlatformVersionChecked) {
		t.Fatalf("validator must stop before later checks, trail %v", v.Trail())
	}
	if !v.Reached(DependenciesChecked) {
		t.Fatalf("expected dependencies check to have passed, trail %v", v.Trail())
	}
	if len(reporter.reports) != 1 || reporter.reports[0] != report {
		t.Fatalf("expected the report to be handed to the reporter once")
	}
}

func TestValidatorPlatformVersionFailure(t *testing.T) {
	opts := append(passingOptions(), WithActual(Versions{Runtime: "1.24", Platform: "5.1.9"}))
	v := New(zerolog.Nop(), opts...)

	state, err := v.Run(context.Background())
	if state != Failed || err == nil {
		t.Fatalf("expected failure, got %s %v", state, err)
	}
	if !strings.Contains(err.Error(), "platform_version") {
		t.Fatalf("unexpected error %v", err)
	}
	if !v.Reached(RuntimeVersionChecked) || v.Reached(PlatformVersionChecked) {
		t.Fatalf("unexpected trail %v", v.Trail())
	}
}

func TestValidatorEmptyPlatformRequirementSkips(t *testing.T) {
	opts := append(passingOptions(),
		WithRequired(Versions{Runtime: "1.22"}),
		WithActual(Versions{Runtime: "1.22.0"}),
	)
	v := New(zerolog.Nop(), opts...)

	if state, err := v.Run(context.Background()); state != Ready {
		t.Fatalf("expected ready, got %s %v", state, err)
	}
}

func TestValidatorDependencyFailure(t *testing.T) {
	opts := append(passingOptions(),
		WithDependency("webhook transport", func() error { return nil }),
		WithDependency("overrides file", func() error { return errors.New("no such file") }),
	)
	v := New(zerolog.Nop(), opts...)

	state, err := v.Run(context.Background())
	if state != Failed {
		t.Fatalf("expected failed, got %s", state)
	}
	var report *ValidationError
	if !errors.As(err, &report) || report.Check != CheckDependencies {
		t.Fatalf("expected dependency failure, got %v", err)
	}
	if !strings.Contains(report.Subtitle, "overrides file") {
		t.Fatalf("expected dependency name in subtitle, got %q", report.Subtitle)
	}
	if v.Reached(DependenciesChecked) {
		t.Fatalf("dependencies must not be marked checked")
	}
}

func TestValidatorEnvironmentCheck(t *testing.T) {
	cases := []struct {
		name    string
		check   WebhookCheck
		wantErr bool
	}{
		{
			name:    "no webhook and no override",
			check:   WebhookCheck{Environment: environment.Development},
			wantErr: true,
		},
		{
			name:  "webhook override registered",
			check: WebhookCheck{Environment: environment.Development, WebhooksOverridden: true},
		},
		{
			name:  "target override registered",
			check: WebhookCheck{Environment: environment.Unresolved, TargetOverridden: true},
		},
		{
			name:    "strict ignores overrides",
			check:   WebhookCheck{Environment: environment.Staging, WebhooksOverridden: true, TargetOverridden: true, Strict: true},
			wantErr: true,
		},
		{
			name:  "strict with webhook",
			check: WebhookCheck{Environment: environment.Staging, URL: "https://example.com/hook", Strict: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := append(passingOptions(), WithWebhook(tc.check))
			v := New(zerolog.Nop(), opts...)

			state, err := v.Run(context.Background())
			if tc.wantErr {
				if state != Failed || err == nil {
					t.Fatalf("expected failure, got %s", state)
				}
				if !v.Reached(PlatformVersionChecked) || v.Reached(EnvironmentChecked) {
					t.Fatalf("expected failure at environment check, trail %v", v.Trail())
				}
				if !strings.Contains(err.Error(), tc.check.Environment.Key()) {
					t.Fatalf("expected webhook key in error, got %v", err)
				}
				return
			}
			if state != Ready || err != nil {
				t.Fatalf("expected ready, got %s %v", state, err)
			}
		})
	}
}

func TestValidatorReportHasDefaults(t *testing.T) {
	opts := append(passingOptions(),
		WithWebhook(WebhookCheck{Environment: environment.Production}),
		WithAdminURL("https://cms.example.com/wp-admin/plugins.php"),
	)
	v := New(zerolog.Nop(), opts...)

	_, err := v.Run(context.Background())
	var report *ValidationError
	if !errors.As(err, &report) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	defaults := DefaultMessages("https://cms.example.com/wp-admin/plugins.php")
	if report.Title != defaults.Title || report.Footer != defaults.Footer {
		t.Fatalf("expected default title and footer, got %+v", report)
	}
	if report.Link != defaults.Link {
		t.Fatalf("expected default link, got %+v", report.Link)
	}
	if report.Subtitle != "Webhook not found." {
		t.Fatalf("expected check subtitle to be kept, got %q", report.Subtitle)
	}
	if report.Body != "The WEBHOOK_PRODUCTION variable must be present." {
		t.Fatalf("unexpected body %q", report.Body)
	}
	if report.Severity != SeverityError {
		t.Fatalf("expected error severity, got %s", report.Severity)
	}
	if msg := report.Message(); !strings.Contains(msg, defaults.Footer) || !strings.Contains(msg, defaults.Link.URL) {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestValidatorReporterErrorDoesNotMaskFailure(t *testing.T) {
	reporter := &recordingReporter{err: errors.New("slack down")}
	opts := append(passingOptions(),
		WithWebhook(WebhookCheck{Environment: environment.Production}),
		WithReporter(reporter),
	)
	v := New(zerolog.Nop(), opts...)

	_, err := v.Run(context.Background())
	var report *ValidationError
	if !errors.As(err, &report) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSatisfies(t *testing.T) {
	cases := []struct {
		required string
		actual   string
		want     bool
	}{
		{"7.2", "7.1", false},
		{"7.2", "7.2", true},
		{"7.2", "7.2.24-0ubuntu0.18.04.1", true},
		{"7.2", "8.0", true},
		{"5.2", "5.10", true},
		{"1.22", "go1.24.3", true},
		{"1.22", "go1.21.9", false},
		{"", "anything", true},
		{"1.0", "", false},
		{"1.0", "not-a-version", false},
	}
	for _, tc := range cases {
		if got := satisfies(tc.required, tc.actual); got != tc.want {
			t.Errorf("satisfies(%q, %q) = %v, want %v", tc.required, tc.actual, got, tc.want)
		}
	}
}

func TestStateString(t *testing.T) {
	if Ready.String() != "ready" || Failed.String() != "failed" || State(99).String() != "unknown" {
		t.Fatalf("unexpected state names")
	}
}

func TestValidatorUnresolvedEnvironmentNamesSelector(t *testing.T) {
	opts := append(passingOptions(), WithWebhook(WebhookCheck{Environment: environment.Unresolved}))
	v := New(zerolog.Nop(), opts...)

	_, err := v.Run(context.Background())
	var report *ValidationError
	if !errors.As(err, &report) || report.Check != CheckEnvironment {
		t.Fatalf("expected environment failure, got %v", err)
	}
	if !strings.Contains(report.Body, "WP_ENV") {
		t.Fatalf("expected report to name WP_ENV, got %q", report.Body)
	}
}
