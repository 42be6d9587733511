package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/qwikbyte/datacore/internal/db"
	"github.com/qwikbyte/datacore/internal/query"
	"github.com/qwikbyte/datacore/internal/typemap"
)

// SQLite leans on type affinity: exact spellings matter less than on the
// server dialects, but they are kept close to the reference dialect so
// inspected schemas read the same way.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite3" }

func (SQLite) Placeholder() query.Placeholder { return query.Question }

func (SQLite) ColumnType(t reflect.Type, s typemap.Strategy) string {
	if s == typemap.GenerationUUID {
		return "TEXT DEFAULT (lower(hex(randomblob(16))))"
	}
	switch typemap.KindOf(t) {
	case typemap.KindBool:
		return "BOOLEAN"
	case typemap.KindSmallInt, typemap.KindInteger, typemap.KindBigInt:
		// INTEGER PRIMARY KEY aliases the rowid, which is what the AUTO
		// strategy means here; no AUTOINCREMENT keyword needed.
		return "INTEGER"
	case typemap.KindReal, typemap.KindDouble:
		return "REAL"
	case typemap.KindDecimal:
		// TEXT keeps fixed-point values exact; NUMERIC affinity would
		// round-trip them through floats.
		return "TEXT"
	case typemap.KindChar:
		return "CHAR(1)"
	case typemap.KindBytes:
		return "BLOB"
	case typemap.KindDate:
		return "DATE"
	case typemap.KindTime:
		return "TIME"
	case typemap.KindTimestamp:
		return "TIMESTAMP"
	default:
		// Text, uuid, enums, JSON and the permissive fallback all store as
		// TEXT.
		return "TEXT"
	}
}

func (SQLite) TableColumns(ctx context.Context, conn db.Conn, _ string, table string) (map[string]string, error) {
	q := fmt.Sprintf("PRAGMA table_info(%s)", table)

	rows, err := conn.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]string)
	for rows.Next() {
		var (
			cid         int
			name        string
			colType     string
			notNull, pk int
			dflt        sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		columns[strings.ToLower(name)] = colType
	}
	return columns, rows.Err()
}
