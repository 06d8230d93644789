package notify

import (
	"context"

	"github.com/nholik/deploy-hook/internal/transition"
	"github.com/rs/zerolog"
)

// NoticeNotifier dispatches a primary notifier and, only after it succeeds,
// announces the dispatch through secondary notices. Notice failures are logged
// and never change the dispatch result.
type NoticeNotifier struct {
	logger  zerolog.Logger
	primary Notifier
	notices []Notifier
}

// NewNoticeNotifier wraps primary with follow-up notices. Nil notices are skipped.
func NewNoticeNotifier(logger zerolog.Logger, primary Notifier, notices ...Notifier) *NoticeNotifier {
	filtered := make([]Notifier, 0, len(notices))
	for _, notice := range notices {
		if notice == nil {
			continue
		}
		filtered = append(filtered, notice)
	}
	return &NoticeNotifier{logger: logger, primary: primary, notices: filtered}
}

// Notify implements Notifier. The returned error is the primary's.
func (n *NoticeNotifier) Notify(ctx context.Context, event transition.Event) error {
	if err := n.primary.Notify(ctx, event); err != nil {
		return err
	}
	for _, notice := range n.notices {
		if err := notice.Notify(ctx, event); err != nil {
			n.logger.Warn().
				Err(err).
				Str("content_type", event.ContentType).
				Str("transition", string(event.Kind())).
				Msg("build notice failed")
		}
	}
	return nil
}
