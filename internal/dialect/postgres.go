package dialect

import (
	"context"
	"reflect"
	"strings"

	"github.com/qwikbyte/datacore/internal/db"
	"github.com/qwikbyte/datacore/internal/query"
	"github.com/qwikbyte/datacore/internal/typemap"
)

// Postgres is the reference dialect.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Placeholder() query.Placeholder { return query.Dollar }

func (Postgres) ColumnType(t reflect.Type, s typemap.Strategy) string {
	if s == typemap.GenerationUUID {
		return "UUID DEFAULT gen_random_uuid()"
	}
	switch typemap.KindOf(t) {
	case typemap.KindBool:
		return "BOOLEAN"
	case typemap.KindSmallInt:
		return "SMALLINT"
	case typemap.KindInteger:
		if s == typemap.GenerationAuto {
			return "SERIAL"
		}
		return "INTEGER"
	case typemap.KindBigInt:
		if s == typemap.GenerationAuto {
			return "BIGSERIAL"
		}
		return "BIGINT"
	case typemap.KindReal:
		return "REAL"
	case typemap.KindDouble:
		return "DOUBLE PRECISION"
	case typemap.KindDecimal:
		return "NUMERIC(18,4)"
	case typemap.KindChar:
		return "CHAR(1)"
	case typemap.KindBytes:
		return "BYTEA"
	case typemap.KindUUID:
		return "UUID"
	case typemap.KindDate:
		return "DATE"
	case typemap.KindTime:
		return "TIME"
	case typemap.KindTimestamp:
		return "TIMESTAMP"
	case typemap.KindJSON:
		return "JSONB"
	default:
		// Text, enums stored by name, and the permissive fallback.
		return "TEXT"
	}
}

func (Postgres) TableColumns(ctx context.Context, conn db.Conn, schemaName, table string) (map[string]string, error) {
	if schemaName == "" {
		schemaName = "public"
	}

	const q = `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := conn.Query(ctx, q, schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]string)
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, err
		}
		columns[strings.ToLower(name)] = dataType
	}
	return columns, rows.Err()
}
