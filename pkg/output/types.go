// Package output renders aggregated metrics as column-aligned text tables.
package output

import (
	"sort"
	"time"

	"github.com/ccollicutt/honeylog/pkg/aggregator"
)

// Order selects how table rows are sorted.
type Order int

const (
	// OrderByMetric sorts by metric descending; equal metrics are ordered by key ascending.
	OrderByMetric Order = iota

	// OrderByKey sorts by key ascending.
	OrderByKey
)

// Layout describes the fixed presentation of one report type.
type Layout struct {
	// Title is printed above the table unless output is quiet.
	Title string

	// KeyHeaders names the key columns; one per key part.
	KeyHeaders []string

	// KeyMinWidths are optional minimum widths for the key columns.
	KeyMinWidths []int

	// MetricHeader names the right-aligned metric column.
	MetricHeader string

	// MetricWidth is the width of the metric column.
	MetricWidth int

	// Order is the row ordering policy.
	Order Order
}

// Row is one line of a table.
type Row struct {
	Key    aggregator.Key
	Metric int
}

// Table is a report's layout together with its ordered rows.
type Table struct {
	Layout
	Rows []Row
}

// NewTable orders the metrics according to layout and keeps at most limit
// rows (limit <= 0 keeps all).
func NewTable(layout Layout, m aggregator.Metrics, limit int) *Table {
	rows := make([]Row, 0, len(m))
	for k, v := range m {
		rows = append(rows, Row{Key: k, Metric: v})
	}
	SortRows(rows, layout.Order)

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	return &Table{Layout: layout, Rows: rows}
}

// SortRows sorts rows in place according to order.
func SortRows(rows []Row, order Order) {
	switch order {
	case OrderByKey:
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].Key.Less(rows[j].Key)
		})
	default:
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Metric != rows[j].Metric {
				return rows[i].Metric > rows[j].Metric
			}
			return rows[i].Key.Less(rows[j].Key)
		})
	}
}

// Summary provides statistics about the run that produced a report.
type Summary struct {
	// LinesProcessed is the number of log lines read.
	LinesProcessed int

	// LinesMatched is the number of lines that produced an event.
	LinesMatched int

	// Groups is the number of distinct keys before filtering.
	Groups int

	// GroupsReported is the number of rows in the table.
	GroupsReported int
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// Task is the report type that was run.
	Task string

	// Source is the log file that was analyzed.
	Source string

	// AnalyzedAt is when the analysis completed.
	AnalyzedAt time.Time

	// Duration is how long the analysis took.
	Duration time.Duration
}

// Report is the complete output of one run.
type Report struct {
	Table    *Table
	Summary  Summary
	Metadata Metadata
}
