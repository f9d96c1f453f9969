package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventory_sync"

// Metrics holds the collectors updated by the run controller.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Runs         *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	Items        *prometheus.CounterVec
	KindFailures *prometheus.CounterVec
	TargetOnly   *prometheus.GaugeVec
}

// New creates the collectors and registers them on registry.
func New(registry prometheus.Registerer) *Metrics {
	return &Metrics{
		Runs: NewCounterVec(registry, "runs_total",
			"Sync runs by final state.", []string{"state", "dry_run"}),
		RunDuration: NewHistogramWithBuckets(registry, "run_duration_seconds",
			"Wall clock duration of sync runs.", DurationBuckets()),
		Items: NewCounterVec(registry, "items_total",
			"Per-item outcomes by entity kind.", []string{"kind", "outcome"}),
		KindFailures: NewCounterVec(registry, "kind_failures_total",
			"Entity kinds whose snapshots could not be fetched.", []string{"kind"}),
		TargetOnly: NewGaugeVec(registry, "target_only_records",
			"Records present only in the target after the last run.", []string{"kind"}),
	}
}

// ObserveRun records the final state and duration of a run.
func (m *Metrics) ObserveRun(state string, dryRun bool, d time.Duration) {
	if m == nil {
		return
	}
	label := "false"
	if dryRun {
		label = "true"
	}
	m.Runs.WithLabelValues(state, label).Inc()
	m.RunDuration.Observe(d.Seconds())
}

// ObserveItem records one item outcome.
func (m *Metrics) ObserveItem(kind, outcome string) {
	if m == nil {
		return
	}
	m.Items.WithLabelValues(kind, outcome).Inc()
}

// ObserveKindFailure records a kind that failed to fetch.
func (m *Metrics) ObserveKindFailure(kind string) {
	if m == nil {
		return
	}
	m.KindFailures.WithLabelValues(kind).Inc()
}

// SetTargetOnly records the number of target-only records of a kind.
func (m *Metrics) SetTargetOnly(kind string, n int) {
	if m == nil {
		return
	}
	m.TargetOnly.WithLabelValues(kind).Set(float64(n))
}

// NewCounterVec creates and registers a counter vector in the inventory_sync namespace.
func NewCounterVec(registry prometheus.Registerer, name, help string, labels []string) *prometheus.CounterVec {
	return promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
}

// NewGaugeVec creates and registers a gauge vector in the inventory_sync namespace.
func NewGaugeVec(registry prometheus.Registerer, name, help string, labels []string) *prometheus.GaugeVec {
	return promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
}

// NewHistogramWithBuckets creates and registers a histogram in the inventory_sync namespace.
func NewHistogramWithBuckets(registry prometheus.Registerer, name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
}

// DurationBuckets returns histogram buckets for run durations, from 100ms to 30 minutes.
func DurationBuckets() []float64 {
	return []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900, 1800}
}
