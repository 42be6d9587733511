package formatter

import (
	"fmt"
	"io"
)

// MarkdownFormatter renders tables as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the tables in markdown format
func (f *MarkdownFormatter) Format(tables []Table) error {
	_, _ = fmt.Fprintln(f.writer, "# Database Tables")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range tables {
		f.formatTable(table)
	}
	return nil
}

func (f *MarkdownFormatter) formatTable(table Table) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)

	if len(table.Columns) == 0 {
		_, _ = fmt.Fprintln(f.writer, "_not found_")
		_, _ = fmt.Fprintln(f.writer)
		return
	}
	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, col.Type)
	}
	_, _ = fmt.Fprintln(f.writer)
}
