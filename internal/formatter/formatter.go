// Package formatter renders inspected table catalogs for the CLI.
package formatter

import (
	"fmt"
	"io"
	"sort"
)

// Table is one inspected relation: the live column catalog, in render order.
type Table struct {
	Name    string
	Columns []Column
}

// Column is one catalog entry: the column name and the type text the
// database reports for it.
type Column struct {
	Name string
	Type string
}

// FromCatalog converts a catalog map into a Table with columns sorted by
// name, so output is stable across runs.
func FromCatalog(name string, catalog map[string]string) Table {
	cols := make([]Column, 0, len(catalog))
	for col, typ := range catalog {
		cols = append(cols, Column{Name: col, Type: typ})
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
	return Table{Name: name, Columns: cols}
}

// Formatter renders inspected tables to a writer.
type Formatter interface {
	Format(tables []Table) error
}

// ForName returns the formatter registered under name.
func ForName(name string, w io.Writer) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTextFormatter(w), nil
	case "markdown", "md":
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q (supported: text, markdown)", name)
	}
}
