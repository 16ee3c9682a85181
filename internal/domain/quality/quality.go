// Package quality extracts the per-day data-quality signals that feed the
// trust score.
//
// Each check is a pure function of one day bucket plus a trailing window of
// prior days' aggregates. No check reads another check's result; that
// independence is what lets the trust scorer weight them as separate
// evidence.
package quality

import (
	"strconv"
	"strings"

	"github.com/okian/trustlens/internal/domain/model"
	"github.com/okian/trustlens/internal/domain/types"
)

// Default thresholds. Overridable via options; the defaults are the
// configuration defaults too.
const (
	defaultWindowDays        = 7
	defaultCompletenessFloor = 0.5
	defaultVolumeMultiplier  = 3.0
	defaultOutlierMultiplier = 100.0
	defaultDriftDeviation    = 0.25
)

// DupField names an event field usable in the duplicate key.
type DupField string

// Fields recognized by the duplicate grouping key.
const (
	DupUserID      DupField = "user_id"
	DupEventType   DupField = "event_type"
	DupTimestamp   DupField = "timestamp"
	DupIngestionID DupField = "ingestion_id"
	DupAmount      DupField = "amount"
)

// DefaultDuplicateKey is the grouping key used when none is configured.
func DefaultDuplicateKey() []DupField {
	return []DupField{DupUserID, DupEventType, DupTimestamp, DupIngestionID}
}

// Extractor runs the five quality checks for a day.
type Extractor struct {
	completenessFloor float64
	volumeMultiplier  float64
	outlierMultiplier float64
	driftDeviation    float64
	dupKey            []DupField
}

// NewExtractor creates an extractor with default thresholds.
func NewExtractor(opts ...Option) *Extractor {
	x := &Extractor{
		completenessFloor: defaultCompletenessFloor,
		volumeMultiplier:  defaultVolumeMultiplier,
		outlierMultiplier: defaultOutlierMultiplier,
		driftDeviation:    defaultDriftDeviation,
		dupKey:            DefaultDuplicateKey(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// AmountCap returns the upper bound on acceptable purchase amounts given the
// trailing history, or 0 when no history constrains it yet.
func (x *Extractor) AmountCap(base *Baseline) float64 {
	med, ok := base.MedianAmount()
	if !ok {
		return 0
	}
	return x.outlierMultiplier * med
}

// ValidAmount reports whether the event's amount passes the validity domain
// check under the given cap. Exposed so the KPI aggregator applies the exact
// same policy when counting purchasers and revenue.
func ValidAmount(e model.Event, bound float64) bool {
	return validAmount(e, bound)
}

// Extract runs all five checks against one day bucket. The baseline must
// contain only days strictly before the bucket's date.
func (x *Extractor) Extract(bucket model.DayBucket, base *Baseline) map[types.Signal]types.SignalResult {
	amountCap := x.AmountCap(base)
	return map[types.Signal]types.SignalResult{
		types.SignalCompleteness:      x.completeness(bucket, base),
		types.SignalSchemaConsistency: x.schemaConsistency(bucket, base),
		types.SignalUniqueness:        x.uniqueness(bucket),
		types.SignalVolumeAnomaly:     x.volumeAnomaly(bucket, base),
		types.SignalValidity:          x.validity(bucket, amountCap),
	}
}

// completeness compares observed purchase-like volume against the trailing
// median. Outages show up as a cliff relative to recent history, so the
// check is self-relative rather than an absolute threshold.
func (x *Extractor) completeness(bucket model.DayBucket, base *Baseline) types.SignalResult {
	r := types.SignalResult{Score: 1, Reason: types.ReasonPurchaseOutage}
	if bucket.Empty() {
		// A missing day is itself a severe outage signal, never a skip.
		r.Score = 0
		r.Triggered = true
		return r
	}
	observed := 0
	for _, e := range bucket.Events {
		if e.Type.PurchaseLike() {
			observed++
		}
	}
	expected, ok := base.ExpectedPurchases()
	if !ok || expected <= 0 {
		return r
	}
	if ratio := float64(observed) / expected; ratio < 1 {
		r.Score = ratio
	}
	r.Triggered = r.Score < x.completenessFloor
	return r
}

// schemaConsistency detects the canonical "purchase" name being silently
// replaced by "in_app_purchase" at a rate inconsistent with the trailing
// name mix. Drift relabels events rather than losing them.
func (x *Extractor) schemaConsistency(bucket model.DayBucket, base *Baseline) types.SignalResult {
	r := types.SignalResult{Score: 1, Reason: types.ReasonSchemaDrift}
	var purchaseLike, canonical int
	for _, e := range bucket.Events {
		if e.Type.PurchaseLike() {
			purchaseLike++
			if e.Type == model.Purchase {
				canonical++
			}
		}
	}
	if purchaseLike == 0 {
		// Nothing to drift; absence of purchases is completeness' concern.
		return r
	}
	expected, ok := base.ExpectedCanonicalShare()
	if !ok {
		expected = 1
	}
	share := float64(canonical) / float64(purchaseLike)
	deviation := expected - share
	if deviation <= 0 {
		return r
	}
	r.Score = clamp01(1 - deviation)
	r.Triggered = deviation > x.driftDeviation
	return r
}

// uniqueness groups events on the configured duplicate key and counts every
// member of a group larger than one. Duplicates inflate counts and revenue
// without inflating true volume.
func (x *Extractor) uniqueness(bucket model.DayBucket) types.SignalResult {
	r := types.SignalResult{Score: 1, Reason: types.ReasonDuplicates}
	total := len(bucket.Events)
	if total == 0 {
		return r
	}
	groups := make(map[string]int, total)
	for _, e := range bucket.Events {
		groups[x.duplicateKey(e)]++
	}
	duplicates := 0
	for _, n := range groups {
		if n > 1 {
			duplicates += n
		}
	}
	if duplicates == 0 {
		return r
	}
	r.Score = clamp01(1 - float64(duplicates)/float64(total))
	r.Triggered = true
	return r
}

// volumeAnomaly is the excess-side twin of completeness: session volume far
// above the trailing median is a bot-traffic signature, not organic growth.
func (x *Extractor) volumeAnomaly(bucket model.DayBucket, base *Baseline) types.SignalResult {
	r := types.SignalResult{Score: 1, Reason: types.ReasonTrafficSpike}
	sessions := 0
	for _, e := range bucket.Events {
		if e.Type == model.SessionStart {
			sessions++
		}
	}
	expected, ok := base.ExpectedSessions()
	if !ok || expected <= 0 {
		return r
	}
	ratio := float64(sessions) / expected
	if ratio <= x.volumeMultiplier {
		return r
	}
	r.Score = clamp01(x.volumeMultiplier / ratio)
	r.Triggered = true
	return r
}

// validity scans purchase-like events for amounts outside the acceptable
// domain and folds in records dropped at ingest as equally invalid.
func (x *Extractor) validity(bucket model.DayBucket, amountCap float64) types.SignalResult {
	r := types.SignalResult{Score: 1, Reason: types.ReasonInvalidAmounts}
	purchaseLike := 0
	invalid := bucket.Malformed
	for _, e := range bucket.Events {
		if !e.Type.PurchaseLike() {
			continue
		}
		purchaseLike++
		if !validAmount(e, amountCap) {
			invalid++
		}
	}
	total := purchaseLike + bucket.Malformed
	if total == 0 {
		return r
	}
	r.Score = clamp01(1 - float64(invalid)/float64(total))
	r.Triggered = invalid > 0
	return r
}

// duplicateKey builds the grouping key for one event from the configured
// fields.
func (x *Extractor) duplicateKey(e model.Event) string {
	var b strings.Builder
	for i, f := range x.dupKey {
		if i > 0 {
			b.WriteByte('|')
		}
		switch f {
		case DupUserID:
			b.WriteString(e.UserID)
		case DupEventType:
			b.WriteString(string(e.Type))
		case DupTimestamp:
			b.WriteString(strconv.FormatInt(e.TS.UnixNano(), 10))
		case DupIngestionID:
			b.WriteString(e.IngestionID)
		case DupAmount:
			if e.HasAmount {
				b.WriteString(strconv.FormatFloat(e.Amount, 'f', -1, 64))
			}
		}
	}
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
