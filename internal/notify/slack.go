package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nholik/deploy-hook/internal/transition"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// SlackNotifier posts a short notice to Slack for each qualifying event.
type SlackNotifier struct {
	logger      zerolog.Logger
	webhookURL  string
	environment string
	timing      timingConfig
	poster      *httpPoster
}

// SlackOption customizes SlackNotifier behavior.
type SlackOption func(*SlackNotifier)

// WithSlackTimeout overrides the request timeout.
func WithSlackTimeout(timeout time.Duration) SlackOption {
	return func(s *SlackNotifier) {
		if timeout > 0 {
			s.timing.timeout = timeout
		}
	}
}

// WithSlackEnvironment labels messages with the deployment environment.
func WithSlackEnvironment(environment string) SlackOption {
	return func(s *SlackNotifier) {
		s.environment = environment
	}
}

// NewSlackNotifier creates a Slack notifier or a noop notifier when the webhook is empty.
func NewSlackNotifier(logger zerolog.Logger, webhookURL string, opts ...SlackOption) Notifier {
	if webhookURL == "" {
		return NewNoop(logger, "")
	}

	notifier := &SlackNotifier{
		logger:     logger,
		webhookURL: webhookURL,
		timing:     defaultTiming,
	}
	for _, opt := range opts {
		opt(notifier)
	}
	notifier.poster = newHTTPPoster(logger, "slack", webhookURL, "application/json", notifier.timing)

	return notifier
}

// Notify implements Notifier.
func (n *SlackNotifier) Notify(ctx context.Context, event transition.Event) error {
	payload, err := json.Marshal(buildSlackMessage(n.environment, event))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	if err := n.poster.postOnce(ctx, payload); err != nil {
		return err
	}

	n.logger.Debug().
		Str("content_type", event.ContentType).
		Str("transition", string(event.Kind())).
		Msg("slack notification sent")

	return nil
}

func buildSlackMessage(environment string, event transition.Event) slack.WebhookMessage {
	summary := fmt.Sprintf("Build triggered: %s %s", contentLabel(event), transitionLabel(event))
	header := slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", summary, false, false))

	contextElements := []slack.MixedElement{
		slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("Type: *%s*", event.ContentType), false, false),
	}
	if environment != "" {
		contextElements = append(contextElements, slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("Environment: *%s*", environment), false, false))
	}
	contextBlock := slack.NewContextBlock("", contextElements...)

	blockSet := slack.Blocks{BlockSet: []slack.Block{header, contextBlock}}
	return slack.WebhookMessage{
		Text:   summary,
		Blocks: &blockSet,
	}
}

func contentLabel(event transition.Event) string {
	if event.ID == "" {
		return event.ContentType
	}
	return fmt.Sprintf("%s #%s", event.ContentType, event.ID)
}

func transitionLabel(event transition.Event) string {
	return fmt.Sprintf("%s → %s", statusLabel(event.OldStatus), statusLabel(event.NewStatus))
}

func statusLabel(status string) string {
	if status == "" {
		return "unknown"
	}
	return status
}
