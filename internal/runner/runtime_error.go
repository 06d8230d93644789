package runner

import (
	"fmt"

	"github.com/nholik/deploy-hook/internal/transition"
)

// RuntimeError is a per-event failure. It is reported in the Outcome and never
// stops the runner from accepting further events.
type RuntimeError struct {
	Op          string
	ContentType string
	Kind        transition.Kind
	Err         error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.ContentType, e.Kind, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func wrapRuntime(op string, event transition.Event, err error) error {
	if err == nil {
		return nil
	}
	return &RuntimeError{Op: op, ContentType: event.ContentType, Kind: event.Kind(), Err: err}
}
