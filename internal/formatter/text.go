package formatter

import (
	"fmt"
	"io"
)

// TextFormatter renders tables as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the tables in compact text format
func (f *TextFormatter) Format(tables []Table) error {
	for i, table := range tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.formatTable(table)
	}
	return nil
}

func (f *TextFormatter) formatTable(table Table) {
	_, _ = fmt.Fprintf(f.writer, "TABLE %s\n", table.Name)
	if len(table.Columns) == 0 {
		_, _ = fmt.Fprintln(f.writer, "  (not found)")
		return
	}
	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s: %s\n", col.Name, col.Type)
	}
}
