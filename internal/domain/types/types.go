// Package types contains the closed vocabularies and row types shared
// across the pipeline.
package types

import "time"

// Signal identifies one independent data-quality check.
type Signal string

// The five quality signals. The declaration order is the fixed priority
// order used to break ties when sorting reasons.
const (
	SignalCompleteness      Signal = "completeness"
	SignalSchemaConsistency Signal = "schema_consistency"
	SignalUniqueness        Signal = "uniqueness"
	SignalVolumeAnomaly     Signal = "volume_anomaly"
	SignalValidity          Signal = "validity"
)

// AllSignals returns every signal in fixed priority order.
func AllSignals() []Signal {
	return []Signal{
		SignalCompleteness,
		SignalSchemaConsistency,
		SignalUniqueness,
		SignalVolumeAnomaly,
		SignalValidity,
	}
}

// Priority returns the tie-break rank of s within AllSignals, or
// len(AllSignals) for an unknown signal.
func (s Signal) Priority() int {
	for i, known := range AllSignals() {
		if s == known {
			return i
		}
	}
	return len(AllSignals())
}

// Reason tags a detected failure mode in a form consumers can match
// exhaustively instead of comparing strings.
type Reason string

// Failure-mode reason tags, one per signal.
const (
	ReasonPurchaseOutage Reason = "possible_purchase_outage"
	ReasonSchemaDrift    Reason = "schema_drift_detected"
	ReasonDuplicates     Reason = "duplicates_detected"
	ReasonTrafficSpike   Reason = "traffic_spike_possible_bots"
	ReasonInvalidAmounts Reason = "invalid_amount_values"
)

// SignalResult is the outcome of one quality check for one day.
type SignalResult struct {
	Score     float64 // in [0,1], 1 = perfect
	Triggered bool
	Reason    Reason
}

// KPI is the fixed per-day KPI tuple. It is derived from the day bucket on
// every run and never persisted as source of truth.
type KPI struct {
	DAU            int
	Purchasers     int
	Revenue        float64
	ConversionRate float64 // percent; 0 when DAU is 0
	RevenuePerDAU  float64 // 0 when DAU is 0

	// RetentionProxy is the fraction of the day's active users also active
	// the next day. It is informational only and undefined until next-day
	// data exists; RetentionKnown reports whether it was computable.
	RetentionProxy float64
	RetentionKnown bool
}

// DayReport is one immutable row of the output table.
type DayReport struct {
	Date    time.Time // UTC midnight
	Trust   float64   // in [0,100]
	Reasons []Reason  // worst offender first
	KPI     KPI
	Signals map[Signal]SignalResult
}
