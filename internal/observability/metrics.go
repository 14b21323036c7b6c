package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	stageDuration *prometheus.HistogramVec
	fallbackTotal *prometheus.CounterVec
	modelCalls    *prometheus.CounterVec
	searchResults *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors on a private registry.
func NewMetrics(service string) *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jibsearch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jibsearch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "jibsearch",
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jibsearch",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Search pipeline stage duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)
	fallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jibsearch",
			Subsystem: "pipeline",
			Name:      "fallbacks_total",
			Help:      "Degradations to fallback behaviour by stage and reason.",
		},
		[]string{"stage", "reason"},
	)
	modelCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jibsearch",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Language model calls by model and outcome.",
		},
		[]string{"model", "outcome"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jibsearch",
			Subsystem: "search",
			Name:      "retrieved_records",
			Help:      "Records retrieved per search before truncation.",
			Buckets:   []float64{0, 1, 5, 10, 20, 30, 40, 50},
		},
		[]string{"mode"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		stageDuration,
		fallbackTotal,
		modelCalls,
		searchResults,
	)

	return &Metrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		stageDuration:   stageDuration,
		fallbackTotal:   fallbackTotal,
		modelCalls:      modelCalls,
		searchResults:   searchResults,
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RequestStarted marks a request in flight and returns the function that records it.
func (m *Metrics) RequestStarted() func(method, path string, status int) {
	if m == nil {
		return func(string, string, int) {}
	}
	start := time.Now()
	m.requestInFlight.Inc()
	return func(method, path string, status int) {
		m.requestInFlight.Dec()
		m.requestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveStage records the duration of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordFallback counts one degradation.
func (m *Metrics) RecordFallback(stage, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.fallbackTotal.WithLabelValues(stage, reason).Inc()
}

// RecordModelCall counts one model call outcome.
func (m *Metrics) RecordModelCall(model, outcome string) {
	if m == nil {
		return
	}
	if model == "" {
		model = "default"
	}
	m.modelCalls.WithLabelValues(model, outcome).Inc()
}

// RecordSearch records how many records a search retrieved.
func (m *Metrics) RecordSearch(mode string, retrieved int) {
	if m == nil {
		return
	}
	m.searchResults.WithLabelValues(mode).Observe(float64(retrieved))
}
