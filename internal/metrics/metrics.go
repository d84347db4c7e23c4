// Package metrics exposes dashboard activity as Prometheus collectors.
//
// Each Metrics value owns a private registry, so tests and multiple servers
// in one process never collide on collector names.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashboard"

// Metrics holds every collector the server updates.
type Metrics struct {
	registry *prometheus.Registry

	SessionsActive   prometheus.Gauge
	SessionsCreated  prometheus.Counter
	SessionsExpired  prometheus.Counter
	Recomputations   *prometheus.CounterVec
	RequestDurations *prometheus.HistogramVec
	DatasetRecords   prometheus.Gauge
}

// New registers all collectors on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of open dashboard sessions",
		}),
		SessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of sessions opened",
		}),
		SessionsExpired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Total number of sessions closed for inactivity",
		}),
		Recomputations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_recomputations_total",
			Help:      "Cached values recomputed after a parameter change, by kind",
		}, []string{"kind"}),
		RequestDurations: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"route"}),
		DatasetRecords: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Number of records in the loaded dataset",
		}),
	}
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecomputeHook returns a callback suitable for filter.WithRecomputeHook.
func (m *Metrics) RecomputeHook() func(kind string) {
	return func(kind string) {
		m.Recomputations.WithLabelValues(kind).Inc()
	}
}

// SessionOpened records a new session.
func (m *Metrics) SessionOpened() {
	m.SessionsCreated.Inc()
	m.SessionsActive.Inc()
}

// SessionClosed records an explicitly deleted session.
func (m *Metrics) SessionClosed() {
	m.SessionsActive.Dec()
}

// SessionExpired records a session closed by the reaper.
func (m *Metrics) SessionExpired(string) {
	m.SessionsExpired.Inc()
	m.SessionsActive.Dec()
}

// ObserveRequest records how long a request on route took.
func (m *Metrics) ObserveRequest(route string, d time.Duration) {
	m.RequestDurations.WithLabelValues(route).Observe(d.Seconds())
}

// Instrument wraps h so every request is timed under route.
func (m *Metrics) Instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		m.ObserveRequest(route, time.Since(start))
	}
}
