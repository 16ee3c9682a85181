// Package render turns the report table into its external artifacts: a CSV
// table and a markdown decision memo. Thin, read-only consumers of the
// table; no decision logic lives here.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/okian/trustlens/internal/domain/report"
	"github.com/okian/trustlens/internal/domain/types"
)

// WriteCSV writes one row per day in chronological order.
func WriteCSV(w io.Writer, table report.Table) error {
	cw := csv.NewWriter(w)
	header := []string{
		"date", "trust_score", "reasons",
		"dau", "purchasers", "revenue",
		"conversion_rate", "revenue_per_dau", "d1_retention_proxy",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range table.Rows() {
		retention := ""
		if row.KPI.RetentionKnown {
			retention = strconv.FormatFloat(row.KPI.RetentionProxy, 'f', 4, 64)
		}
		record := []string{
			row.Date.Format(time.DateOnly),
			strconv.FormatFloat(row.Trust, 'f', 1, 64),
			joinReasons(row.Reasons),
			strconv.Itoa(row.KPI.DAU),
			strconv.Itoa(row.KPI.Purchasers),
			strconv.FormatFloat(row.KPI.Revenue, 'f', 2, 64),
			strconv.FormatFloat(row.KPI.ConversionRate, 'f', 2, 64),
			strconv.FormatFloat(row.KPI.RevenuePerDAU, 'f', 4, 64),
			retention,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func joinReasons(reasons []types.Reason) string {
	if len(reasons) == 0 {
		return "ok"
	}
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += ", "
		}
		out += string(r)
	}
	return out
}
