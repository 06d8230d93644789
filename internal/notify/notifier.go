package notify

import (
	"context"

	"github.com/nholik/deploy-hook/internal/transition"
)

// Notifier delivers a qualifying lifecycle event to an external system.
type Notifier interface {
	Notify(ctx context.Context, event transition.Event) error
}

// ResolveTarget returns the webhook to notify. A non-empty override wins over
// the environment's configured URL.
func ResolveTarget(override, environmentURL string) string {
	if override != "" {
		return override
	}
	return environmentURL
}
