// Package kpi reduces one day's event records into the fixed KPI tuple.
package kpi

import (
	"math"

	"github.com/okian/trustlens/internal/domain/model"
	"github.com/okian/trustlens/internal/domain/quality"
	"github.com/okian/trustlens/internal/domain/types"
)

// percent converts a fraction to a percentage.
const percent = 100

// Aggregate computes the KPI tuple for one day bucket. next supplies the
// following day's bucket for the retention proxy and may be nil when that
// data does not exist yet. amountCap is the validity bound on purchase
// amounts (0 = unbounded). A bad amount excludes only the money: the event
// still proves a purchase attempt, so its user counts toward purchasers and
// DAU while the amount stays out of revenue.
//
// Pure function: no side effects, recomputed fresh on every run.
func Aggregate(bucket model.DayBucket, next *model.DayBucket, amountCap float64) types.KPI {
	var k types.KPI

	active := make(map[string]struct{})
	buyers := make(map[string]struct{})
	for _, e := range bucket.Events {
		active[e.UserID] = struct{}{}
		if e.Type.PurchaseLike() {
			buyers[e.UserID] = struct{}{}
			if quality.ValidAmount(e, amountCap) {
				k.Revenue += e.Amount
			}
		}
	}
	k.DAU = len(active)
	k.Purchasers = len(buyers)

	// Division by zero is defined away: an empty day reports zero rates,
	// not an error.
	if k.DAU > 0 {
		k.ConversionRate = round2(float64(k.Purchasers) / float64(k.DAU) * percent)
		k.RevenuePerDAU = k.Revenue / float64(k.DAU)
	}

	if next != nil && k.DAU > 0 {
		retained := 0
		nextActive := make(map[string]struct{}, len(next.Events))
		for _, e := range next.Events {
			nextActive[e.UserID] = struct{}{}
		}
		for id := range active {
			if _, ok := nextActive[id]; ok {
				retained++
			}
		}
		k.RetentionProxy = float64(retained) / float64(k.DAU)
		k.RetentionKnown = true
	}

	return k
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
