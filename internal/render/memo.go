package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/okian/trustlens/internal/domain/report"
	"github.com/okian/trustlens/internal/domain/types"
)

// WriteMemo writes the markdown decision memo: the executive framing plus
// the lowest- and highest-trust day tables.
func WriteMemo(w io.Writer, table report.Table, n int, alertThreshold float64) error {
	var b strings.Builder

	b.WriteString("# Decision Memo — KPI Integrity & Trust\n\n")
	b.WriteString("## Executive summary\n")
	b.WriteString("KPI movement on low-trust days is more likely a tracking or data issue\n")
	b.WriteString("(outages / schema drift / bots / duplicates) than true performance.\n\n")
	fmt.Fprintf(&b, "**Recommendation:** avoid acting on KPI movement when trust < %.0f. Investigate instrumentation first.\n\n", alertThreshold)

	b.WriteString("## Lowest trust days (investigate before acting)\n")
	writeMemoTable(&b, table.Lowest(n))
	b.WriteString("\n## Highest trust days (baseline / safe to compare)\n")
	writeMemoTable(&b, table.Highest(n))

	b.WriteString("\n## Next steps\n")
	b.WriteString("1. Confirm event naming mapping (purchase vs in_app_purchase) and update tracking/ETL.\n")
	b.WriteString("2. Investigate missing purchase events on outage days (SDK / pipeline).\n")
	b.WriteString("3. Add bot filtering rules for traffic spikes and backfill metrics.\n")
	fmt.Fprintf(&b, "4. Automate alerts when the trust score drops below %.0f.\n", alertThreshold)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMemoTable(b *strings.Builder, rows []types.DayReport) {
	b.WriteString("| date | trust | reasons | conv% | dau | purchasers | revenue |\n")
	b.WriteString("|---|---:|---|---:|---:|---:|---:|\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %.1f | %s | %.2f | %d | %d | %.2f |\n",
			row.Date.Format(time.DateOnly),
			row.Trust,
			joinReasons(row.Reasons),
			row.KPI.ConversionRate,
			row.KPI.DAU,
			row.KPI.Purchasers,
			row.KPI.Revenue,
		)
	}
}
