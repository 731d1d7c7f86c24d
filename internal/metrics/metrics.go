// Package metrics exposes Prometheus instrumentation for the tutoring
// service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the service's metric instruments.
type Manager struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	evaluationsTotal    *prometheus.CounterVec
	upstreamRetries     prometheus.Counter
}

// NewManager creates a manager with its own registry, so tests never
// collide on the default one.
func NewManager() *Manager {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Manager{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codetutor",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codetutor",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		evaluationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codetutor",
			Subsystem: "evaluation",
			Name:      "total",
			Help:      "Completed evaluations by source (llm or fallback).",
		}, []string{"source"}),
		upstreamRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "codetutor",
			Subsystem: "llm",
			Name:      "retries_total",
			Help:      "Retried upstream LLM calls.",
		}),
	}
}

// Handler serves the /metrics endpoint.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Manager) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// CountEvaluation records one completed evaluation.
func (m *Manager) CountEvaluation(source string) {
	m.evaluationsTotal.WithLabelValues(source).Inc()
}

// CountRetry records one retried upstream call.
func (m *Manager) CountRetry() {
	m.upstreamRetries.Inc()
}

// routeUnmatched labels requests that never hit a registered route, so
// arbitrary probe paths cannot mint new series.
const routeUnmatched = "unmatched"

// Middleware instruments every request with the manager's HTTP metrics.
// Requests are labeled by chi route pattern, not raw path: paths carry
// client-chosen segments like session IDs, and labeling by path would
// grow the registry without bound.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		m.ObserveRequest(routePattern(r), recorder.status, time.Since(start))
	})
}

// routePattern reads the matched pattern after the router has run.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return routeUnmatched
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
