// Package metrics defines the Prometheus collectors exported by a check run.
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

const namespace = "sitemapcheck"

// Metrics groups the collectors registered for one process.
type Metrics struct {
	checks          *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retrySweeps     prometheus.Counter
	retriedURLs     prometheus.Counter
	sitemaps        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		checks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Completed URL checks, labeled by status class.",
		}, []string{"status_class"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of individual outbound requests, labeled by method and status class.",
			Buckets:   DefaultBuckets,
		}, []string{"method", "status_class"}),
		retrySweeps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_sweeps_total",
			Help:      "Retry sweeps started.",
		}),
		retriedURLs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retried_urls_total",
			Help:      "URLs re-checked by retry sweeps.",
		}),
		sitemaps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sitemaps_total",
			Help:      "Sitemap documents fetched, labeled by outcome.",
		}, []string{"outcome"}),
	}
}

// Sitemap load outcomes.
const (
	OutcomeLeaf   = "leaf"
	OutcomeIndex  = "index"
	OutcomeFailed = "failed"
)

// ObserveCheck counts one completed check.
func (m *Metrics) ObserveCheck(statusClass string) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(statusClass).Inc()
}

// ObserveRequest records the latency of one outbound request.
func (m *Metrics) ObserveRequest(method, statusClass string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, statusClass).Observe(d.Seconds())
}

// ObserveRetrySweep counts a retry sweep over count URLs.
func (m *Metrics) ObserveRetrySweep(count int) {
	if m == nil {
		return
	}
	m.retrySweeps.Inc()
	m.retriedURLs.Add(float64(count))
}

// ObserveSitemap counts one fetched sitemap document by outcome.
func (m *Metrics) ObserveSitemap(outcome string) {
	if m == nil {
		return
	}
	m.sitemaps.WithLabelValues(outcome).Inc()
}
