package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nholik/deploy-hook/internal/transition"
	"github.com/rs/zerolog"
)

func TestBuildSlackMessage(t *testing.T) {
	msg := buildSlackMessage("production", publishEvent)

	if !strings.Contains(msg.Text, "post #42") {
		t.Fatalf("expected content label in summary, got %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "draft → publish") {
		t.Fatalf("expected transition in summary, got %q", msg.Text)
	}
	if msg.Blocks == nil || len(msg.Blocks.BlockSet) != 2 {
		t.Fatalf("expected header and context blocks")
	}
}

func TestBuildSlackMessageUnknownStatus(t *testing.T) {
	msg := buildSlackMessage("", transition.Event{ContentType: "page", NewStatus: "publish"})
	if !strings.Contains(msg.Text, "unknown → publish") {
		t.Fatalf("expected unknown status label, got %q", msg.Text)
	}
}

func TestNewSlackNotifierEmptyURL(t *testing.T) {
	notifier := NewSlackNotifier(zerolog.Nop(), "")
	if _, ok := notifier.(*NoopNotifier); !ok {
		t.Fatalf("expected NoopNotifier, got %T", notifier)
	}
}

func TestSlackNotifierPostsJSON(t *testing.T) {
	var calls int32
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(zerolog.New(io.Discard), server.URL, WithSlackEnvironment("staging"))
	if err := notifier.Notify(context.Background(), publishEvent); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 call, got %d", got)
	}
	text, _ := payload["text"].(string)
	if !strings.Contains(text, "Build triggered") {
		t.Fatalf("unexpected payload text %q", text)
	}
}
