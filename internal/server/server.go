package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nholik/deploy-hook/internal/healthcheck"
	"github.com/nholik/deploy-hook/internal/metrics"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Start launches the event/health server and, when configured, a separate
// metrics server. Both stop when ctx is canceled.
func Start(ctx context.Context, logger zerolog.Logger, events EventHandler, tracker *healthcheck.Tracker, metricsCollector *metrics.Metrics, httpPort, metricsPort int) {
	if httpPort == 0 {
		return
	}

	mux := NewMux(logger, events, tracker)
	if metricsPort == 0 || metricsPort == httpPort {
		registerMetricsRoute(mux, metricsCollector)
		startServer(ctx, logger, mux, httpPort, "events")
		return
	}

	startServer(ctx, logger, mux, httpPort, "events")

	metricsMux := http.NewServeMux()
	registerMetricsRoute(metricsMux, metricsCollector)
	startServer(ctx, logger, metricsMux, metricsPort, "metrics")
}

// NewMux returns the routes for event intake and health probes.
func NewMux(logger zerolog.Logger, events EventHandler, tracker *healthcheck.Tracker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", EventsHandler(logger, events))
	mux.HandleFunc("/healthz", healthcheck.HealthHandler(tracker))
	mux.HandleFunc("/readyz", healthcheck.ReadyHandler(tracker))
	return mux
}

func registerMetricsRoute(mux *http.ServeMux, metricsCollector *metrics.Metrics) {
	if metricsCollector == nil {
		return
	}
	mux.Handle("/metrics", metricsCollector.Handler())
}

func startServer(ctx context.Context, logger zerolog.Logger, handler http.Handler, port int, label string) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("server", label).Int("port", port).Msg("http server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("server", label).Int("port", port).Msg("http server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Str("server", label).Int("port", port).Msg("http server shutdown failed")
		}
	}()
}
