// Package telemetry exposes analysis run metrics in Prometheus format.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/M4dhxv/Financial-Analysis/internal/core"
)

const namespace = "variance"

// Metrics records run outcomes and data-quality signals. It implements
// core.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	quality     *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

// New creates Metrics on a fresh registry. When withRuntime is set, Go
// runtime and process collectors are registered too.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Analysis runs by outcome.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Analysis run duration by outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"status"}),
		quality: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_quality_events_total",
			Help:      "Non-fatal data-quality events seen by successful runs.",
		}, []string{"kind"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(m.runs, m.runDuration, m.quality, m.httpLatency)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

func (m *Metrics) ObserveRun(status string, elapsed time.Duration) {
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveQuality(q core.Quality) {
	events := map[string]int{
		"dropped_row":               q.DroppedRows,
		"unparseable_period":        q.UnparseablePeriods,
		"unparseable_value":         q.UnparseableValues,
		"missing_value":             q.MissingValues,
		"duplicate_key":             q.DuplicateKeys,
		"missing_period_pair":       q.MissingPeriodPairs,
		"undefined_percent":         q.UndefinedPercents,
		"non_finite_value":          q.SkippedNonFinite,
		"ambiguous_decomposition":   q.AmbiguousDecompositions,
		"unexplained_decomposition": q.UnexplainedDecompositions,
	}
	for kind, n := range events {
		if n > 0 {
			m.quality.WithLabelValues(kind).Add(float64(n))
		}
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route, code string, elapsed time.Duration) {
	m.httpLatency.WithLabelValues(method, route, code).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
