package notify

import (
	"context"

	"github.com/nholik/deploy-hook/internal/transition"
	"github.com/rs/zerolog"
)

// DryRunNotifier logs events without sending notifications.
type DryRunNotifier struct {
	logger zerolog.Logger
	target string
}

// NewDryRunNotifier returns a notifier that logs the dispatch it would make.
func NewDryRunNotifier(logger zerolog.Logger, target string) *DryRunNotifier {
	return &DryRunNotifier{logger: logger, target: target}
}

// Notify implements Notifier.
func (n *DryRunNotifier) Notify(_ context.Context, event transition.Event) error {
	n.logger.Info().
		Str("url", n.target).
		Str("content_type", event.ContentType).
		Str("transition", string(event.Kind())).
		Msg("[DRY-RUN] Would dispatch")
	return nil
}
