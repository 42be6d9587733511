// Package dialect owns everything that differs between the supported
// databases: the SQL spelling of each type-mapper class, the positional
// placeholder style, and the column-catalog query used to inspect live
// tables. PostgreSQL is the reference dialect.
package dialect

import (
	"context"
	"fmt"
	"reflect"

	"github.com/qwikbyte/datacore/internal/db"
	"github.com/qwikbyte/datacore/internal/query"
	"github.com/qwikbyte/datacore/internal/typemap"
)

// Dialect is implemented once per supported database.
type Dialect interface {
	Name() string
	Placeholder() query.Placeholder

	// ColumnType renders the column type text for a Go type under the given
	// generation strategy. The UUID strategy always yields a declaration
	// carrying a server-side default expression.
	ColumnType(t reflect.Type, s typemap.Strategy) string

	// TableColumns reads the live column catalog for one table and returns
	// existing columns as a map from lowercased column name to declared
	// type text. A table that does not exist yields an empty map, not an
	// error.
	TableColumns(ctx context.Context, conn db.Conn, schemaName, table string) (map[string]string, error)
}

// ForDriver resolves the dialect for a driver name as used by Open.
func ForDriver(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return Postgres{}, nil
	case "mysql":
		return MySQL{}, nil
	case "sqlite", "sqlite3":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q (want postgres, mysql or sqlite3)", driver)
	}
}
