// Package report assembles the per-day results into the output table and
// its ranked views. Purely presentational glue; no computation beyond
// sorting and selection.
package report

import (
	"sort"

	"github.com/okian/trustlens/internal/domain/types"
)

// Table is the ordered sequence of day report rows over the analysis
// window. Rows are chronological and immutable; consumers must treat the
// table as read-only.
type Table struct {
	rows []types.DayReport
}

// New builds a table from rows already in chronological order.
func New(rows []types.DayReport) Table {
	return Table{rows: rows}
}

// Rows returns the rows in chronological order.
func (t Table) Rows() []types.DayReport {
	return t.rows
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.rows)
}

// Lowest returns the n lowest-trust days, ties broken by date ascending.
// These are the days to investigate before acting on a KPI movement.
func (t Table) Lowest(n int) []types.DayReport {
	return t.ranked(n, func(a, b types.DayReport) bool { return a.Trust < b.Trust })
}

// Highest returns the n highest-trust days, ties broken by date ascending.
// These are the safe comparison baseline.
func (t Table) Highest(n int) []types.DayReport {
	return t.ranked(n, func(a, b types.DayReport) bool { return a.Trust > b.Trust })
}

func (t Table) ranked(n int, better func(a, b types.DayReport) bool) []types.DayReport {
	sorted := make([]types.DayReport, len(t.rows))
	copy(sorted, t.rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Trust != sorted[j].Trust {
			return better(sorted[i], sorted[j])
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}
	return sorted[:n]
}
