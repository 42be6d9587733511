package datacore

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/qwikbyte/datacore/internal/db"
	"github.com/qwikbyte/datacore/internal/typemap"
)

// fieldPlan maps lowercased column names to struct field indices for one
// result type. Plans are derived once per type and cached for the life of
// the process.
type fieldPlan struct {
	fields map[string]int
}

var planCache sync.Map // reflect.Type -> *fieldPlan

func planFor(t reflect.Type) *fieldPlan {
	if p, ok := planCache.Load(t); ok {
		return p.(*fieldPlan)
	}
	p, _ := planCache.LoadOrStore(t, buildPlan(t))
	return p.(*fieldPlan)
}

// buildPlan derives the column-to-field mapping. A field answers to its tag
// name when tagged, otherwise to its own lowercased name; `db:"-"` and
// unexported fields never receive a value.
func buildPlan(t reflect.Type) *fieldPlan {
	fields := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := ""
		if tag, ok := f.Tag.Lookup("db"); ok {
			if tag == "-" {
				continue
			}
			name, _, _ = strings.Cut(tag, ",")
		}
		if name == "" {
			name = f.Name
		}
		fields[strings.ToLower(name)] = i
	}
	return &fieldPlan{fields: fields}
}

// decodeRow materializes the current row into a fresh T. Columns with no
// matching field are discarded, NULL values leave the field at its zero
// value, and result columns never have to cover every field.
func decodeRow[T any](rows db.Rows, cols []string) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if rv.Kind() != reflect.Struct {
		return out, fmt.Errorf("result target %T is not a struct", out)
	}
	plan := planFor(rv.Type())

	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return out, err
	}

	for i, col := range cols {
		idx, ok := plan.fields[strings.ToLower(col)]
		if !ok {
			continue
		}
		if raw[i] == nil {
			continue
		}
		field := rv.Field(idx)
		v, err := typemap.FromStorage(raw[i], field.Type())
		if err != nil {
			return out, err
		}
		field.Set(v)
	}
	return out, nil
}

// collectRows materializes every remaining row in driver order.
func collectRows[T any](rows db.Rows) ([]T, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []T
	for rows.Next() {
		item, err := decodeRow[T](rows, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// firstRow materializes the first row and reports whether one existed.
// Remaining rows stay unread: single-result shapes take the first row of
// driver order and discard the rest.
func firstRow[T any](rows db.Rows) (T, bool, error) {
	var zero T
	cols, err := rows.Columns()
	if err != nil {
		return zero, false, err
	}
	if !rows.Next() {
		return zero, false, rows.Err()
	}
	item, err := decodeRow[T](rows, cols)
	if err != nil {
		return zero, false, err
	}
	return item, true, nil
}
