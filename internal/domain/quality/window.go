package quality

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/trustlens/internal/domain/model"
)

// DayStats are the per-day aggregates the trailing baseline is built from.
// They are tiny on purpose so a long analysis window stays cheap to hold.
type DayStats struct {
	Date           time.Time
	PurchaseEvents int     // purchase-like event count
	SessionEvents  int     // session_start event count
	CanonicalShare float64 // purchase / purchase-like, meaningful when HasShare
	HasShare       bool    // false when the day had no purchase-like events
	MedianAmount   float64 // median valid purchase amount, meaningful when HasAmounts
	HasAmounts     bool
}

// Baseline is a bounded sliding-window cache of prior days' aggregates.
// It must be populated strictly in chronological order; Observe rejects
// out-of-order dates so the past-to-present dependency direction is an
// enforced invariant, not an accident of iteration order.
type Baseline struct {
	window int
	days   []DayStats // chronological, at most window entries
}

// NewBaseline creates a baseline over the given trailing window size.
func NewBaseline(window int) *Baseline {
	if window <= 0 {
		window = defaultWindowDays
	}
	return &Baseline{window: window}
}

// Observe appends one day's aggregates to the window, evicting the oldest
// entry once the window is full.
func (b *Baseline) Observe(s DayStats) error {
	if n := len(b.days); n > 0 && !s.Date.After(b.days[n-1].Date) {
		return fmt.Errorf("%w: %s observed after %s",
			ErrOutOfOrder, s.Date.Format(time.DateOnly), b.days[n-1].Date.Format(time.DateOnly))
	}
	b.days = append(b.days, s)
	if len(b.days) > b.window {
		b.days = b.days[1:]
	}
	return nil
}

// Len returns the number of days currently in the window.
func (b *Baseline) Len() int {
	return len(b.days)
}

// ExpectedPurchases returns the trailing median purchase-like event count.
// ok is false when no history exists yet.
func (b *Baseline) ExpectedPurchases() (expected float64, ok bool) {
	if len(b.days) == 0 {
		return 0, false
	}
	vals := make([]float64, len(b.days))
	for i, d := range b.days {
		vals[i] = float64(d.PurchaseEvents)
	}
	return median(vals), true
}

// ExpectedSessions returns the trailing median session_start event count.
func (b *Baseline) ExpectedSessions() (expected float64, ok bool) {
	if len(b.days) == 0 {
		return 0, false
	}
	vals := make([]float64, len(b.days))
	for i, d := range b.days {
		vals[i] = float64(d.SessionEvents)
	}
	return median(vals), true
}

// ExpectedCanonicalShare returns the trailing median share of purchase-like
// events carrying the canonical "purchase" name, over days that had
// purchase-like events at all.
func (b *Baseline) ExpectedCanonicalShare() (share float64, ok bool) {
	vals := make([]float64, 0, len(b.days))
	for _, d := range b.days {
		if d.HasShare {
			vals = append(vals, d.CanonicalShare)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	return median(vals), true
}

// MedianAmount returns the trailing median of per-day median purchase
// amounts, the reference point for the validity outlier bound.
func (b *Baseline) MedianAmount() (amount float64, ok bool) {
	vals := make([]float64, 0, len(b.days))
	for _, d := range b.days {
		if d.HasAmounts {
			vals = append(vals, d.MedianAmount)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	return median(vals), true
}

// Stats reduces one day bucket to the aggregates the baseline tracks.
// amountCap bounds which amounts count as valid for the median; pass the
// extractor's AmountCap for consistency with the validity check.
func Stats(bucket model.DayBucket, amountCap float64) DayStats {
	s := DayStats{Date: bucket.Date}
	var canonical int
	var amounts []float64
	for _, e := range bucket.Events {
		switch {
		case e.Type == model.SessionStart:
			s.SessionEvents++
		case e.Type.PurchaseLike():
			s.PurchaseEvents++
			if e.Type == model.Purchase {
				canonical++
			}
			if validAmount(e, amountCap) {
				amounts = append(amounts, e.Amount)
			}
		}
	}
	if s.PurchaseEvents > 0 {
		s.CanonicalShare = float64(canonical) / float64(s.PurchaseEvents)
		s.HasShare = true
	}
	if len(amounts) > 0 {
		s.MedianAmount = median(amounts)
		s.HasAmounts = true
	}
	return s
}

// validAmount reports whether a purchase-like event carries a usable
// monetary amount: present, finite, positive and (when cap > 0) within the
// outlier bound.
func validAmount(e model.Event, bound float64) bool {
	if !e.HasAmount {
		return false
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return false
	}
	if e.Amount <= 0 {
		return false
	}
	if bound > 0 && e.Amount > bound {
		return false
	}
	return true
}

func median(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
