package kpi_test

import (
	"fmt"
	"testing"
	"time"

	kpi "github.com/okian/trustlens/internal/domain/kpi"
	"github.com/okian/trustlens/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var day0 = time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)

// crowdedDay builds a bucket with dau distinct active users of which the
// first `buyers` each make one purchase with the given amounts.
func crowdedDay(dau int, amounts []float64) model.DayBucket {
	b := model.DayBucket{Date: day0}
	for i := 0; i < dau; i++ {
		b.Events = append(b.Events, model.Event{
			UserID: fmt.Sprintf("u%d", i), TS: day0.Add(time.Duration(i) * time.Second),
			Type: model.SessionStart, IngestionID: fmt.Sprintf("s%d", i),
		})
	}
	for i, amount := range amounts {
		b.Events = append(b.Events, model.Event{
			UserID: fmt.Sprintf("u%d", i), TS: day0.Add(time.Hour),
			Type: model.Purchase, Amount: amount, HasAmount: true,
			IngestionID: fmt.Sprintf("p%d", i),
		})
	}
	return b
}

func TestAggregate(t *testing.T) {
	Convey("Given a day resembling the outage scenario", t, func() {
		amounts := make([]float64, 22)
		for i := range amounts {
			amounts[i] = 3.29
		}
		amounts[21] = 3.35 // 21*3.29 + 3.35 = 72.44
		b := crowdedDay(6121, amounts)

		Convey("When aggregated", func() {
			k := kpi.Aggregate(b, nil, 0)

			Convey("Then the KPI tuple matches the known day", func() {
				So(k.DAU, ShouldEqual, 6121)
				So(k.Purchasers, ShouldEqual, 22)
				So(k.Revenue, ShouldAlmostEqual, 72.44, 1e-6)
				So(k.ConversionRate, ShouldAlmostEqual, 0.36, 1e-9)
				So(k.RetentionKnown, ShouldBeFalse)
			})
		})
	})

	Convey("Given a healthier day", t, func() {
		amounts := make([]float64, 175)
		for i := range amounts {
			amounts[i] = 4.6
		}
		amounts[174] = 9 // 174*4.6 + 9 = 809.40
		b := crowdedDay(5978, amounts)

		k := kpi.Aggregate(b, nil, 0)

		Convey("Then conversion rounds to 2.93 percent", func() {
			So(k.Revenue, ShouldAlmostEqual, 809.40, 1e-6)
			So(k.ConversionRate, ShouldAlmostEqual, 2.93, 1e-9)
		})
	})

	Convey("Given an empty day bucket", t, func() {
		k := kpi.Aggregate(model.DayBucket{Date: day0}, nil, 0)

		Convey("Then zero DAU divides nothing", func() {
			So(k.DAU, ShouldEqual, 0)
			So(k.Purchasers, ShouldEqual, 0)
			So(k.Revenue, ShouldEqual, 0)
			So(k.ConversionRate, ShouldEqual, 0)
			So(k.RevenuePerDAU, ShouldEqual, 0)
		})
	})

	Convey("Given a purchase with an invalid amount", t, func() {
		b := crowdedDay(3, []float64{5})
		b.Events = append(b.Events, model.Event{
			UserID: "u9", TS: day0.Add(time.Hour),
			Type: model.Purchase, Amount: -4, HasAmount: true, IngestionID: "bad",
		})

		k := kpi.Aggregate(b, nil, 0)

		Convey("Then the user still counts as an active purchaser, minus the money", func() {
			So(k.DAU, ShouldEqual, 4) // u9 was active via the purchase event
			So(k.Purchasers, ShouldEqual, 2)
			So(k.Revenue, ShouldEqual, 5)
		})
	})

	Convey("Given an amount beyond the validity bound", t, func() {
		b := crowdedDay(2, []float64{5, 9000})

		k := kpi.Aggregate(b, nil, 500)

		Convey("Then the outlier amount is excluded from revenue only", func() {
			So(k.Purchasers, ShouldEqual, 2)
			So(k.Revenue, ShouldEqual, 5)
		})
	})

	Convey("Given a purchase event with no amount at all", t, func() {
		b := crowdedDay(3, []float64{5})
		b.Events = append(b.Events, model.Event{
			UserID: "u1", TS: day0.Add(time.Hour),
			Type: model.InAppPurchase, IngestionID: "noamt",
		})

		k := kpi.Aggregate(b, nil, 0)

		Convey("Then the purchase identity survives without the amount", func() {
			So(k.Purchasers, ShouldEqual, 2)
			So(k.Revenue, ShouldEqual, 5)
			So(k.ConversionRate, ShouldAlmostEqual, 66.67, 1e-9)
		})
	})

	Convey("Given consecutive days of activity", t, func() {
		b := crowdedDay(4, nil)
		next := model.DayBucket{Date: day0.AddDate(0, 0, 1)}
		for _, id := range []string{"u0", "u2", "u99"} {
			next.Events = append(next.Events, model.Event{
				UserID: id, TS: next.Date.Add(time.Minute),
				Type: model.SessionStart, IngestionID: "n" + id,
			})
		}

		Convey("When the next day is available", func() {
			k := kpi.Aggregate(b, &next, 0)

			Convey("Then the retention proxy is the returning share", func() {
				So(k.RetentionKnown, ShouldBeTrue)
				So(k.RetentionProxy, ShouldAlmostEqual, 0.5, 1e-9) // u0 and u2 of 4
			})
		})

		Convey("When the next day is unknown", func() {
			k := kpi.Aggregate(b, nil, 0)

			So(k.RetentionKnown, ShouldBeFalse)
		})
	})
}
