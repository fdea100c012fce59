package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "tangview"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the collectors tangview exports. Each instance registers
// with its own registry so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	fetchesTotal  *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	reportsLoaded prometheus.Counter
	testsByStatus *prometheus.GaugeVec
	scriptsServed *prometheus.CounterVec
}

// New creates a Metrics with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fetches_total",
			Help:      "Count of result script fetches",
		}, []string{
			"result",
		}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent dispatching a result script",
			Buckets:   prometheus.DefBuckets,
		}),
		reportsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reports_loaded_total",
			Help:      "Count of reports pushed into the collector",
		}),
		testsByStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "current_tests",
			Help:      "Tests in the current report by status",
		}, []string{
			"status",
		}),
		scriptsServed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "served_total",
			Help:      "Count of report payloads served over HTTP",
		}, []string{
			"format",
		}),
	}
}

// RecordFetch records the outcome of one result script fetch.
func (m *Metrics) RecordFetch(success bool, elapsed time.Duration) {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}
	m.fetchesTotal.WithLabelValues(result).Inc()
	m.fetchDuration.Observe(elapsed.Seconds())
}

// RecordReport records a newly loaded report and its per-status test counts.
func (m *Metrics) RecordReport(passed, failed, pending, todo int) {
	m.reportsLoaded.Inc()
	m.testsByStatus.WithLabelValues("passed").Set(float64(passed))
	m.testsByStatus.WithLabelValues("failed").Set(float64(failed))
	m.testsByStatus.WithLabelValues("pending").Set(float64(pending))
	m.testsByStatus.WithLabelValues("todo").Set(float64(todo))
}

// RecordServed counts one payload served in the given format ("jsonp" or "json").
func (m *Metrics) RecordServed(format string) {
	m.scriptsServed.WithLabelValues(format).Inc()
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
