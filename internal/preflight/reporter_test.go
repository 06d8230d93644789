package preflight

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func sampleReport() *ValidationError {
	failure := ValidationError{
		Check:    CheckEnvironment,
		Subtitle: "Webhook not found.",
		Body:     "The WEBHOOK_STAGING variable must be present.",
	}
	return failure.complete(DefaultMessages("https://cms.example.com/wp-admin/plugins.php"))
}

func TestLogReporterWritesFields(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewLogReporter(zerolog.New(&buf))

	if err := reporter.Report(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Report error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"check":"environment"`, `"subtitle":"Webhook not found."`, `"level":"error"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log output, got %s", want, out)
		}
	}
}

func TestNewSlackReporterEmptyURL(t *testing.T) {
	if reporter := NewSlackReporter(""); reporter != nil {
		t.Fatalf("expected nil reporter, got %T", reporter)
	}
}

func TestSlackReporterPostsBlocks(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reporter := NewSlackReporter(server.URL)
	if err := reporter.Report(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Report error: %v", err)
	}

	text, _ := payload["text"].(string)
	if !strings.Contains(text, "Webhook not found.") {
		t.Fatalf("unexpected text %q", text)
	}
	blocks, _ := payload["blocks"].([]any)
	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks including the link, got %d", len(blocks))
	}
}

func TestBuildReportMessageWithoutLink(t *testing.T) {
	report := sampleReport()
	report.Link.URL = ""

	msg := buildReportMessage(report)
	if msg.Blocks == nil || len(msg.Blocks.BlockSet) != 3 {
		t.Fatalf("expected 3 blocks without a link")
	}
}
