// Package metrics exposes Prometheus collectors for the HTTP layer and the
// claim workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/najdeno/internal/model"
)

const namespace = "najdeno"

// Metrics holds the collectors of one server instance.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	claimsSubmitted      prometheus.Counter
	claimDecisions       *prometheus.CounterVec
	claimConflicts       *prometheus.CounterVec
	notificationFailures prometheus.Counter
}

// New creates a Metrics with its own registry, including the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),

		claimsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "submitted_total",
			Help:      "Total number of claims filed.",
		}),
		claimDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "decisions_total",
			Help:      "Claim status changes by outcome, including automatic rejections.",
		}, []string{"outcome"}),
		claimConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "conflicts_total",
			Help:      "Claim operations refused because of a competing claim.",
		}, []string{"operation"}),
		notificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "failures_total",
			Help:      "Claim notifications that could not be delivered.",
		}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.claimsSubmitted,
		m.claimDecisions,
		m.claimConflicts,
		m.notificationFailures,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with request counting and timing. Requests
// are labelled with the ServeMux pattern that served them, so path
// parameters don't blow up label cardinality.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := NewStatusRecorder(w)
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status())).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ClaimSubmitted counts a newly filed claim.
func (m *Metrics) ClaimSubmitted() {
	if m == nil {
		return
	}
	m.claimsSubmitted.Inc()
}

// ClaimDecided counts a claim reaching a terminal status.
func (m *Metrics) ClaimDecided(outcome model.ClaimStatus) {
	if m == nil {
		return
	}
	m.claimDecisions.WithLabelValues(string(outcome)).Inc()
}

// ClaimConflict counts an operation lost to a competing claim.
func (m *Metrics) ClaimConflict(operation string) {
	if m == nil {
		return
	}
	m.claimConflicts.WithLabelValues(operation).Inc()
}

// NotificationFailed counts a notification that was dropped.
func (m *Metrics) NotificationFailed() {
	if m == nil {
		return
	}
	m.notificationFailures.Inc()
}

// StatusRecorder remembers the status code written through it. Handlers
// that never call WriteHeader are reported as 200.
type StatusRecorder struct {
	http.ResponseWriter
	status int
}

// NewStatusRecorder wraps w.
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records code and passes it on.
func (r *StatusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Status returns the recorded status code.
func (r *StatusRecorder) Status() int {
	return r.status
}
