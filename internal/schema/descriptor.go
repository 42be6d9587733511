// Package schema builds immutable entity descriptors from struct tags and
// reconciles them, additively, against the live database schema.
package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/qwikbyte/datacore/internal/dialect"
	"github.com/qwikbyte/datacore/internal/typemap"
)

// Column is the resolved metadata for one declared column. SQLType is
// dialect text computed once at construction; it never changes afterwards.
type Column struct {
	Name       string
	SQLType    string
	PrimaryKey bool
	Nullable   bool
	Unique     bool
	Strategy   typemap.Strategy
}

// Descriptor is the persistence shape of one entity type: the target table
// plus one column per db-tagged field, in declaration order. Descriptors are
// read-only after construction and safe to share.
type Descriptor struct {
	Table   string
	Columns []Column
}

// tableNamer marks a type as an entity and names its table.
type tableNamer interface {
	TableName() string
}

// Describe builds the descriptor for v's type. A struct without a TableName
// method carries no table metadata and yields (nil, nil): a valid "not
// persisted" signal, not an error. Describe is pure: it never touches a
// connection.
//
// The column tag grammar is
//
//	db:"name[,pk][,notnull][,unique][,auto|uuid]"
//
// with an empty name defaulting to the lowercased field name and "-"
// excluding the field entirely. Exported fields without a db tag are not
// columns (they still materialize from query results under their lowercased
// name).
func Describe(v any, d dialect.Dialect) (*Descriptor, error) {
	if v == nil {
		return nil, fmt.Errorf("entity prototype is nil")
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity %s is not a struct", t)
	}

	table, ok := tableNameOf(t)
	if !ok {
		return nil, nil
	}

	desc := &Descriptor{Table: table}
	seen := make(map[string]string)
	primary := ""
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag, ok := f.Tag.Lookup("db")
		if !ok || tag == "-" {
			continue
		}

		col, err := parseTag(f, tag, d)
		if err != nil {
			return nil, err
		}

		lower := strings.ToLower(col.Name)
		if prev, dup := seen[lower]; dup {
			return nil, fmt.Errorf("entity %s: fields %s and %s declare the same column %q", t, prev, f.Name, col.Name)
		}
		seen[lower] = f.Name

		if col.PrimaryKey {
			if primary != "" {
				return nil, fmt.Errorf("entity %s: fields %s and %s both marked pk; composite keys are not supported", t, primary, f.Name)
			}
			primary = f.Name
		}

		desc.Columns = append(desc.Columns, col)
	}
	return desc, nil
}

// tableNameOf resolves the TableName method on a fresh zero value, accepting
// both value and pointer receivers.
func tableNameOf(t reflect.Type) (string, bool) {
	p := reflect.New(t)
	if tn, ok := p.Interface().(tableNamer); ok {
		return tn.TableName(), true
	}
	if tn, ok := p.Elem().Interface().(tableNamer); ok {
		return tn.TableName(), true
	}
	return "", false
}

func parseTag(f reflect.StructField, tag string, d dialect.Dialect) (Column, error) {
	parts := strings.Split(tag, ",")
	col := Column{
		Name:     parts[0],
		Nullable: true,
		Strategy: typemap.GenerationNone,
	}
	if col.Name == "" {
		col.Name = strings.ToLower(f.Name)
	}

	for _, opt := range parts[1:] {
		switch opt {
		case "pk":
			col.PrimaryKey = true
		case "notnull":
			col.Nullable = false
		case "unique":
			col.Unique = true
		case "auto", "uuid":
			if col.Strategy != typemap.GenerationNone {
				return Column{}, fmt.Errorf("field %s: generation strategies %s and %s conflict", f.Name, col.Strategy, opt)
			}
			if opt == "auto" {
				col.Strategy = typemap.GenerationAuto
			} else {
				col.Strategy = typemap.GenerationUUID
			}
		case "":
			// tolerate trailing comma
		default:
			return Column{}, fmt.Errorf("field %s: unknown db tag option %q", f.Name, opt)
		}
	}

	col.SQLType = d.ColumnType(f.Type, col.Strategy)
	return col, nil
}
