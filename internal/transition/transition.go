package transition

import (
	"sort"
	"strings"
)

// Kind identifies a lifecycle change as "<old>_to_<new>".
type Kind string

// DefaultContentTypes are the content types tracked when no override is registered.
var DefaultContentTypes = []string{"post", "page"}

// DefaultKinds are the lifecycle changes that trigger a build when no override is registered.
var DefaultKinds = []Kind{
	"draft_to_publish",
	"publish_to_draft",
	"publish_to_trash",
	"publish_to_private",
	"private_to_publish",
	"new_to_publish",
	"future_to_publish",
}

// KindOf builds the Kind for a status change.
func KindOf(oldStatus, newStatus string) Kind {
	return Kind(normalize(oldStatus) + "_to_" + normalize(newStatus))
}

// Event is a content lifecycle notification delivered by the host platform.
type Event struct {
	ID          string `json:"id,omitempty"`
	ContentType string `json:"post_type"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
}

// Kind returns the transition kind of the event.
func (e Event) Kind() Kind {
	return KindOf(e.OldStatus, e.NewStatus)
}

// Rejection reasons reported by Decide.
const (
	ReasonContentType = "content_type"
	ReasonTransition  = "transition"
)

// Decision is the filter verdict for one event.
type Decision struct {
	Qualified bool
	Reason    string
}

// Filter decides which events qualify for a build notification.
type Filter struct {
	contentTypes map[string]struct{}
	kinds        map[Kind]struct{}
}

// NewFilter builds a filter. A nil slice selects the defaults; any non-nil slice,
// including an empty one, replaces them. Content types match exactly; kinds are
// compared case-insensitively.
func NewFilter(contentTypes []string, kinds []Kind) *Filter {
	if contentTypes == nil {
		contentTypes = DefaultContentTypes
	}
	if kinds == nil {
		kinds = DefaultKinds
	}

	f := &Filter{
		contentTypes: make(map[string]struct{}, len(contentTypes)),
		kinds:        make(map[Kind]struct{}, len(kinds)),
	}
	for _, contentType := range contentTypes {
		f.contentTypes[contentType] = struct{}{}
	}
	for _, kind := range kinds {
		f.kinds[Kind(normalize(string(kind)))] = struct{}{}
	}
	return f
}

// Qualifies reports whether both the content type and the kind are tracked.
func (f *Filter) Qualifies(contentType string, kind Kind) bool {
	return f.decide(contentType, kind).Qualified
}

// Decide evaluates an event and reports why it was rejected, if it was.
func (f *Filter) Decide(event Event) Decision {
	return f.decide(event.ContentType, event.Kind())
}

func (f *Filter) decide(contentType string, kind Kind) Decision {
	if f == nil {
		return Decision{Reason: ReasonContentType}
	}
	if _, ok := f.contentTypes[contentType]; !ok {
		return Decision{Reason: ReasonContentType}
	}
	if _, ok := f.kinds[Kind(normalize(string(kind)))]; !ok {
		return Decision{Reason: ReasonTransition}
	}
	return Decision{Qualified: true}
}

// ContentTypes returns the tracked content types, sorted.
func (f *Filter) ContentTypes() []string {
	out := make([]string, 0, len(f.contentTypes))
	for contentType := range f.contentTypes {
		out = append(out, contentType)
	}
	sort.Strings(out)
	return out
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
