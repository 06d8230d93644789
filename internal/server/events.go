package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/nholik/deploy-hook/internal/runner"
	"github.com/nholik/deploy-hook/internal/transition"
	"github.com/rs/zerolog"
)

const maxEventBytes = 64 << 10

// EventHandler processes a single lifecycle event.
type EventHandler interface {
	Handle(ctx context.Context, event transition.Event) runner.Outcome
}

type errorResponse struct {
	Error string `json:"error"`
}

// EventsHandler serves POST /events. Dispatch failures are reported in the
// response body with a 200 status; only malformed requests are rejected.
func EventsHandler(logger zerolog.Logger, events EventHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
			return
		}

		var event transition.Event
		if err := json.NewDecoder(io.LimitReader(r.Body, maxEventBytes)).Decode(&event); err != nil {
			logger.Warn().Err(err).Msg("rejected malformed event")
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event payload"})
			return
		}
		if strings.TrimSpace(event.ContentType) == "" || strings.TrimSpace(event.NewStatus) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "post_type and new_status are required"})
			return
		}

		outcome := events.Handle(r.Context(), event)
		writeJSON(w, http.StatusOK, outcome)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
