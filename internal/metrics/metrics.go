// Package metrics exports harness run metrics in the Prometheus text format,
// for collection by node_exporter's textfile collector.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/emberjson/runtests/internal/aggregate"
)

const (
	MetricsNamespace = "runtests"
)

// Metrics holds the collectors of one harness invocation on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	artifactsTotal  *prometheus.CounterVec
	testsPassed     prometheus.Counter
	runDuration     prometheus.Histogram
	artifactSeconds *prometheus.HistogramVec
	lastRunSuccess  prometheus.Gauge
	lastRunTime     prometheus.Gauge
}

// New creates and registers the collectors. toolchain is attached as a constant label.
func New(toolchain string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"toolchain": toolchain}

	return &Metrics{
		registry: reg,
		artifactsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Name:        "artifacts_total",
			Help:        "Number of test artifacts executed, by verdict",
			ConstLabels: labels,
		}, []string{
			"verdict",
		}),
		testsPassed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Name:        "tests_passed_total",
			Help:        "Sum of the test counts reported by passing artifacts",
			ConstLabels: labels,
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   MetricsNamespace,
			Name:        "run_duration_seconds",
			Help:        "Wall-clock duration of the whole harness run",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		}),
		artifactSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   MetricsNamespace,
			Name:        "artifact_duration_seconds",
			Help:        "Duration of individual artifact runs",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{
			"verdict",
		}),
		lastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   MetricsNamespace,
			Name:        "last_run_success",
			Help:        "1 if the last run had no failed artifacts, 0 otherwise",
			ConstLabels: labels,
		}),
		lastRunTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   MetricsNamespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the last run finished",
			ConstLabels: labels,
		}),
	}
}

// Observe records a finalized report.
func (m *Metrics) Observe(r *aggregate.Report) {
	for _, e := range r.Results {
		verdict := e.Verdict.String()
		m.artifactsTotal.WithLabelValues(verdict).Inc()
		m.artifactSeconds.WithLabelValues(verdict).Observe(e.Duration.Seconds())
	}
	m.testsPassed.Add(float64(r.Total))
	m.runDuration.Observe(r.Duration.Seconds())
	if r.Success() {
		m.lastRunSuccess.Set(1)
	} else {
		m.lastRunSuccess.Set(0)
	}
	m.lastRunTime.SetToCurrentTime()
}

// WriteTextfile atomically writes all metrics to path in the text exposition format,
// creating the parent directory if needed.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
