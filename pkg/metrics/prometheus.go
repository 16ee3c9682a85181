// Package metrics provides Prometheus metrics for the trustlens pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Trust score histogram buckets: coarse below the usual alert threshold,
// finer above it.
var trustBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 95, 100} //nolint:gochecknoglobals // shared bucket layout

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace string
	subsystem string
	enabled   bool
	registry  prometheus.Registerer

	// Ingest metrics
	eventsRead       prometheus.Counter
	malformedRecords prometheus.Counter

	// Scoring metrics
	daysScored      prometheus.Counter
	lowTrustDays    prometheus.Counter
	trustScore      prometheus.Histogram
	signalTriggered *prometheus.CounterVec

	// Run metrics
	runDuration prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "trustlens",
		subsystem: "pipeline",
		enabled:   true,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_read_total",
		Help:      "Total number of raw event records read from the store",
	})
	m.malformedRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "malformed_records_total",
		Help:      "Total number of records dropped at ingest as unparseable",
	})
	m.daysScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "days_scored_total",
		Help:      "Total number of day buckets scored",
	})
	m.lowTrustDays = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "low_trust_days_total",
		Help:      "Days scored below the configured alert threshold",
	})
	m.trustScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trust_score",
		Help:      "Distribution of per-day trust scores",
		Buckets:   trustBuckets,
	})
	m.signalTriggered = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signal_triggered_total",
		Help:      "Quality signals triggered, by reason tag",
	}, []string{"reason"})
	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Wall time of full pipeline runs",
		Buckets:   prometheus.DefBuckets,
	})
}

// Package-level helpers recording through the global manager.

// RecordEventsRead adds n to the events-read counter.
func RecordEventsRead(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.eventsRead.Add(float64(n))
	}
}

// RecordMalformed adds n to the malformed-records counter.
func RecordMalformed(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.malformedRecords.Add(float64(n))
	}
}

// RecordDayScored observes one scored day and its trust score.
func RecordDayScored(trust float64) {
	if globalManager.enabled {
		globalManager.daysScored.Inc()
		globalManager.trustScore.Observe(trust)
	}
}

// RecordLowTrustDay counts a day below the alert threshold.
func RecordLowTrustDay() {
	if globalManager.enabled {
		globalManager.lowTrustDays.Inc()
	}
}

// RecordSignalTriggered counts one triggered signal by reason tag.
func RecordSignalTriggered(reason string) {
	if globalManager.enabled {
		globalManager.signalTriggered.WithLabelValues(reason).Inc()
	}
}

// RecordRunDuration observes one full pipeline run.
func RecordRunDuration(seconds float64) {
	if globalManager.enabled {
		globalManager.runDuration.Observe(seconds)
	}
}

// GetRegistry returns the custom registry for the promhttp handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
