package report_test

import (
	"testing"
	"time"

	report "github.com/okian/trustlens/internal/domain/report"
	"github.com/okian/trustlens/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func rowsFor(trusts ...float64) []types.DayReport {
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]types.DayReport, len(trusts))
	for i, trust := range trusts {
		rows[i] = types.DayReport{Date: start.AddDate(0, 0, i), Trust: trust}
	}
	return rows
}

func TestTable(t *testing.T) {
	Convey("Given a table of six days", t, func() {
		table := report.New(rowsFor(88.1, 42.0, 95.5, 42.0, 61.3, 77.0))

		Convey("When asking for the lowest-trust days", func() {
			low := table.Lowest(3)

			Convey("Then the worst days come first, ties by date ascending", func() {
				So(len(low), ShouldEqual, 3)
				So(low[0].Trust, ShouldEqual, 42.0)
				So(low[1].Trust, ShouldEqual, 42.0)
				So(low[0].Date.Before(low[1].Date), ShouldBeTrue)
				So(low[2].Trust, ShouldEqual, 61.3)
			})
		})

		Convey("When asking for the highest-trust days", func() {
			high := table.Highest(2)

			So(high[0].Trust, ShouldEqual, 95.5)
			So(high[1].Trust, ShouldEqual, 88.1)
		})

		Convey("When asking for more days than exist", func() {
			So(len(table.Lowest(50)), ShouldEqual, 6)
		})

		Convey("When asking for a ranked view", func() {
			table.Lowest(3)

			Convey("Then the chronological row order is untouched", func() {
				rows := table.Rows()
				for i := 1; i < len(rows); i++ {
					So(rows[i-1].Date.Before(rows[i].Date), ShouldBeTrue)
				}
			})
		})
	})
}
