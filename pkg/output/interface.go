package output

import (
	"context"
	"io"
)

// Formatter renders a report in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name.
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Quiet omits the title line and prints only the table.
	Quiet bool
}
