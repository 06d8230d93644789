package preflight

import (
	"fmt"
	"strings"
)

// Severity ranks startup failures.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
)

// Check names used in reports and metrics.
const (
	CheckDependencies    = "dependencies"
	CheckRuntimeVersion  = "runtime_version"
	CheckPlatformVersion = "platform_version"
	CheckEnvironment     = "environment"
)

// Link points the operator at a remedial page.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// ValidationError describes a failed startup precondition.
type ValidationError struct {
	Check    string   `json:"check"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Body     string   `json:"body"`
	Footer   string   `json:"footer"`
	Link     Link     `json:"link"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("preflight %s check failed: %s: %s", e.Check, e.Subtitle, e.Body)
}

// Message renders the report as plain text.
func (e *ValidationError) Message() string {
	var b strings.Builder
	b.WriteString(e.Title)
	if e.Subtitle != "" {
		b.WriteString("\n")
		b.WriteString(e.Subtitle)
	}
	b.WriteString("\n\n")
	b.WriteString(e.Body)
	b.WriteString("\n\n")
	b.WriteString(e.Footer)
	if e.Link.URL != "" {
		fmt.Fprintf(&b, "\n%s: %s", e.Link.Text, e.Link.URL)
	}
	return b.String()
}

// Messages holds the default text for every report field.
type Messages struct {
	Title    string
	Subtitle string
	Body     string
	Footer   string
	Link     Link
}

// DefaultMessages returns the fallback report text. adminURL may be empty.
func DefaultMessages(adminURL string) Messages {
	return Messages{
		Title:    "Deploy Hook Runtime Error",
		Subtitle: "There is a problem with the integration",
		Body:     "There was a problem with the integration.",
		Footer:   "The integration has been deactivated.",
		Link: Link{
			Text: "Integration administration",
			URL:  adminURL,
		},
	}
}

// complete returns a copy with every empty field filled from defaults.
func (e ValidationError) complete(defaults Messages) *ValidationError {
	if e.Severity == "" {
		e.Severity = SeverityError
	}
	if e.Title == "" {
		e.Title = defaults.Title
	}
	if e.Subtitle == "" {
		e.Subtitle = defaults.Subtitle
	}
	if e.Body == "" {
		e.Body = defaults.Body
	}
	if e.Footer == "" {
		e.Footer = defaults.Footer
	}
	if e.Link.Text == "" {
		e.Link.Text = defaults.Link.Text
	}
	if e.Link.URL == "" {
		e.Link.URL = defaults.Link.URL
	}
	return &e
}
