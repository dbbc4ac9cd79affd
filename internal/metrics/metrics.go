// Package metrics holds the Prometheus collectors for the console.
//
// Collectors live in a private registry so tests and multiple consoles in
// one process do not collide. There is no HTTP endpoint; the registry is
// written to a node_exporter textfile on exit when configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agency"

// Metrics is nil-safe: every recording method is a no-op on a nil receiver.
type Metrics struct {
	Registry *prometheus.Registry

	// RecordsSkipped counts task records dropped while grouping.
	// Labels: reason (missing_project, missing_service, ...)
	RecordsSkipped *prometheus.CounterVec

	// ReviewAnomalies counts materials holding more than one review by the same reviewer.
	ReviewAnomalies prometheus.Counter

	// FilterRuns counts filter evaluations. Labels: mode
	FilterRuns *prometheus.CounterVec

	// FilterDuration measures one filter evaluation over the whole tree. Labels: mode
	FilterDuration *prometheus.HistogramVec
}

// New registers all collectors in a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RecordsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grouping",
			Name:      "records_skipped_total",
			Help:      "Task records skipped because of missing project or service references",
		}, []string{"reason"}),
		ReviewAnomalies: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reviews",
			Name:      "review_anomalies_total",
			Help:      "Materials observed with more than one review by the same reviewer",
		}),
		FilterRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "filter_runs_total",
			Help:      "Filter chain evaluations by mode",
		}, []string{"mode"}),
		FilterDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "filter_duration_seconds",
			Help:      "Time to filter the whole project tree",
			Buckets:   []float64{.00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"mode"}),
	}
}

// RecordSkipped counts one skipped task record
func (m *Metrics) RecordSkipped(reason string) {
	if m == nil {
		return
	}
	m.RecordsSkipped.WithLabelValues(reason).Inc()
}

// ReviewAnomaly counts one duplicate-review observation
func (m *Metrics) ReviewAnomaly() {
	if m == nil {
		return
	}
	m.ReviewAnomalies.Inc()
}

// FilterRun records one filter evaluation
func (m *Metrics) FilterRun(mode string, seconds float64) {
	if m == nil {
		return
	}
	m.FilterRuns.WithLabelValues(mode).Inc()
	m.FilterDuration.WithLabelValues(mode).Observe(seconds)
}

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
