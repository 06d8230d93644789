package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics wraps Prometheus collectors for deploy-hook.
type Metrics struct {
	registry                 *prometheus.Registry
	eventsTotal              *prometheus.CounterVec
	dispatchesTotal          *prometheus.CounterVec
	dispatchDurationSeconds  prometheus.Histogram
	lastSuccessfulDispatchTS prometheus.Gauge
}

// New initializes a Metrics registry with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deploy_hook_events_total",
			Help: "Lifecycle events received by filter result.",
		}, []string{"result"}),
		dispatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deploy_hook_dispatches_total",
			Help: "Build hook dispatch attempts by outcome.",
		}, []string{"outcome"}),
		dispatchDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "deploy_hook_dispatch_duration_seconds",
			Help:    "Duration of build hook dispatches in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		lastSuccessfulDispatchTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "deploy_hook_last_successful_dispatch_timestamp",
			Help: "Unix timestamp of the last successful dispatch.",
		}),
	}

	registry.MustRegister(
		m.eventsTotal,
		m.dispatchesTotal,
		m.dispatchDurationSeconds,
		m.lastSuccessfulDispatchTS,
	)

	return m
}

// Handler returns a Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncEvents counts a received event; result is "qualified" or a rejection reason.
func (m *Metrics) IncEvents(result string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(result).Inc()
}

// ObserveDispatch records a dispatch attempt.
func (m *Metrics) ObserveDispatch(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.dispatchDurationSeconds.Observe(duration.Seconds())
	if err != nil {
		m.dispatchesTotal.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	m.dispatchesTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.lastSuccessfulDispatchTS.Set(float64(time.Now().Unix()))
}
