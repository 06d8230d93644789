package preflight

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// Reporter receives the structured report of a failed startup.
type Reporter interface {
	Report(ctx context.Context, report *ValidationError) error
}

// LogReporter writes reports to the log.
type LogReporter struct {
	logger zerolog.Logger
}

// NewLogReporter returns a reporter backed by logger.
func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report implements Reporter.
func (r *LogReporter) Report(_ context.Context, report *ValidationError) error {
	r.logger.Error().
		Str("check", report.Check).
		Str("severity", string(report.Severity)).
		Str("title", report.Title).
		Str("subtitle", report.Subtitle).
		Str("body", report.Body).
		Str("footer", report.Footer).
		Str("link", report.Link.URL).
		Msg("preflight failed; integration deactivated")
	return nil
}

// SlackReporter posts reports to a Slack incoming webhook.
type SlackReporter struct {
	webhookURL string
}

// NewSlackReporter returns a Slack reporter, or nil when no webhook is configured.
func NewSlackReporter(webhookURL string) Reporter {
	if webhookURL == "" {
		return nil
	}
	return &SlackReporter{webhookURL: webhookURL}
}

// Report implements Reporter.
func (r *SlackReporter) Report(ctx context.Context, report *ValidationError) error {
	msg := buildReportMessage(report)
	if err := slack.PostWebhookContext(ctx, r.webhookURL, &msg); err != nil {
		return fmt.Errorf("post slack report: %w", err)
	}
	return nil
}

func buildReportMessage(report *ValidationError) slack.WebhookMessage {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", report.Title, false, false))
	body := slack.NewSectionBlock(
		slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*%s*\n%s", report.Subtitle, report.Body), false, false),
		nil, nil,
	)

	contextElements := []slack.MixedElement{
		slack.NewTextBlockObject("mrkdwn", report.Footer, false, false),
		slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("Severity: *%s*", report.Severity), false, false),
	}
	blocks := []slack.Block{header, body, slack.NewContextBlock("", contextElements...)}

	if report.Link.URL != "" {
		link := slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("<%s|%s>", report.Link.URL, report.Link.Text), false, false)
		blocks = append(blocks, slack.NewSectionBlock(link, nil, nil))
	}

	blockSet := slack.Blocks{BlockSet: blocks}
	return slack.WebhookMessage{
		Text:   fmt.Sprintf("%s: %s", report.Title, report.Subtitle),
		Blocks: &blockSet,
	}
}
