package notify

import (
	"context"
	"time"

	"github.com/nholik/deploy-hook/internal/transition"
	"github.com/rs/zerolog"
)

const buildHookContentType = "application/json"

// BuildHookNotifier triggers an external build by POSTing an empty body to a webhook.
type BuildHookNotifier struct {
	logger     zerolog.Logger
	webhookURL string
	timing     timingConfig
	poster     *httpPoster
}

// BuildHookOption customizes BuildHookNotifier behavior.
type BuildHookOption func(*BuildHookNotifier)

// WithTimeout bounds each outbound request.
func WithTimeout(timeout time.Duration) BuildHookOption {
	return func(n *BuildHookNotifier) {
		if timeout > 0 {
			n.timing.timeout = timeout
		}
	}
}

// WithMinInterval spaces consecutive dispatches at least interval apart.
// Dispatches are delayed, never dropped.
func WithMinInterval(interval time.Duration) BuildHookOption {
	return func(n *BuildHookNotifier) {
		n.timing.minInterval = interval
	}
}

// NewBuildHookNotifier creates a build hook notifier, or a noop notifier when no
// webhook is configured.
func NewBuildHookNotifier(logger zerolog.Logger, webhookURL string, opts ...BuildHookOption) Notifier {
	if webhookURL == "" {
		return NewNoop(logger, "build hook not configured for this environment; dispatch disabled")
	}

	notifier := &BuildHookNotifier{
		logger:     logger,
		webhookURL: webhookURL,
		timing:     defaultTiming,
	}
	for _, opt := range opts {
		opt(notifier)
	}
	notifier.poster = newHTTPPoster(logger, "build hook", webhookURL, buildHookContentType, notifier.timing)

	return notifier
}

// Notify implements Notifier. Exactly one request is attempted per call.
func (n *BuildHookNotifier) Notify(ctx context.Context, event transition.Event) error {
	if err := n.poster.waitForRateLimit(ctx); err != nil {
		return n.poster.dispatchError(0, err)
	}

	if err := n.poster.postOnce(ctx, nil); err != nil {
		return err
	}

	n.logger.Debug().
		Str("content_type", event.ContentType).
		Str("transition", string(event.Kind())).
		Msg("build hook dispatched")

	return nil
}

// URL returns the webhook this notifier posts to.
func (n *BuildHookNotifier) URL() string {
	return n.webhookURL
}
