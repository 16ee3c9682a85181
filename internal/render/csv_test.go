package render_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/okian/trustlens/internal/domain/report"
	"github.com/okian/trustlens/internal/domain/types"
	render "github.com/okian/trustlens/internal/render"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleTable() report.Table {
	start := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)
	return report.New([]types.DayReport{
		{
			Date:    start,
			Trust:   46.5,
			Reasons: []types.Reason{types.ReasonPurchaseOutage, types.ReasonDuplicates, types.ReasonInvalidAmounts},
			KPI: types.KPI{
				DAU: 6121, Purchasers: 22, Revenue: 72.44,
				ConversionRate: 0.36, RevenuePerDAU: 0.0118,
			},
		},
		{
			Date:  start.AddDate(0, 0, 1),
			Trust: 98.2,
			KPI: types.KPI{
				DAU: 5978, Purchasers: 175, Revenue: 809.40,
				ConversionRate: 2.93, RevenuePerDAU: 0.1354,
				RetentionProxy: 0.41, RetentionKnown: true,
			},
		},
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Given a two-day report table", t, func() {
		table := sampleTable()

		Convey("When rendered to CSV", func() {
			var buf bytes.Buffer
			So(render.WriteCSV(&buf, table), ShouldBeNil)

			records, err := csv.NewReader(&buf).ReadAll()
			So(err, ShouldBeNil)

			Convey("Then the header and rows are stable", func() {
				So(len(records), ShouldEqual, 3)
				So(records[0][0], ShouldEqual, "date")
				So(records[0][2], ShouldEqual, "reasons")

				So(records[1][0], ShouldEqual, "2025-11-15")
				So(records[1][1], ShouldEqual, "46.5")
				So(records[1][2], ShouldEqual, "possible_purchase_outage, duplicates_detected, invalid_amount_values")
				So(records[1][6], ShouldEqual, "0.36")
				So(records[1][8], ShouldEqual, "") // retention unknown on the last day

				So(records[2][2], ShouldEqual, "ok")
				So(records[2][8], ShouldEqual, "0.4100")
			})
		})
	})
}

func TestWriteMemo(t *testing.T) {
	Convey("Given a two-day report table", t, func() {
		table := sampleTable()

		Convey("When the decision memo is rendered", func() {
			var buf bytes.Buffer
			So(render.WriteMemo(&buf, table, 5, 70), ShouldBeNil)
			memo := buf.String()

			Convey("Then the memo frames the low-trust day", func() {
				So(memo, ShouldContainSubstring, "## Lowest trust days")
				So(memo, ShouldContainSubstring, "| 2025-11-15 | 46.5 |")
				So(memo, ShouldContainSubstring, "possible_purchase_outage")
				So(memo, ShouldContainSubstring, "trust < 70")
			})

			Convey("Then the healthy day anchors the baseline table", func() {
				// n exceeds the row count, so each day shows up in both rankings
				So(strings.Count(memo, "| 2025-11-16 | 98.2 |"), ShouldEqual, 2)
			})
		})
	})
}
