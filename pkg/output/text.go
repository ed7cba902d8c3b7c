package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// TextFormatter formats reports as aligned text tables.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report's table as text.
//
// Key columns are left-aligned and sized to the longest of their header,
// their values and the layout's minimum width. The metric column is
// right-aligned. A dashed rule separates the header from the rows.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	table := report.Table
	if table == nil {
		return fmt.Errorf("report has no table")
	}

	keyWidths := columnWidths(table)
	metricWidth := max(table.MetricWidth, utf8.RuneCountInString(table.MetricHeader))

	var b strings.Builder

	if !f.opts.Quiet && table.Title != "" {
		b.WriteString(table.Title)
		b.WriteByte('\n')
	}

	writeRow(&b, table.KeyHeaders, keyWidths, table.MetricHeader, metricWidth)

	ruleWidth := metricWidth
	for _, kw := range keyWidths {
		ruleWidth += kw + 1
	}
	b.WriteString(strings.Repeat("-", ruleWidth))
	b.WriteByte('\n')

	for _, row := range table.Rows {
		writeRow(&b, row.Key.Parts(), keyWidths, fmt.Sprintf("%d", row.Metric), metricWidth)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func columnWidths(table *Table) []int {
	widths := make([]int, len(table.KeyHeaders))
	for i, h := range table.KeyHeaders {
		widths[i] = utf8.RuneCountInString(h)
		if i < len(table.KeyMinWidths) {
			widths[i] = max(widths[i], table.KeyMinWidths[i])
		}
	}

	for _, row := range table.Rows {
		for i, part := range row.Key.Parts() {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(part))
			}
		}
	}

	return widths
}

// writeRow writes the key cells padded to their widths followed by the
// right-aligned metric cell. fmt pads by rune count, matching columnWidths.
func writeRow(b *strings.Builder, keys []string, keyWidths []int, metric string, metricWidth int) {
	for i, kw := range keyWidths {
		cell := ""
		if i < len(keys) {
			cell = keys[i]
		}
		fmt.Fprintf(b, "%-*s ", kw, cell)
	}
	fmt.Fprintf(b, "%*s\n", metricWidth, metric)
}
