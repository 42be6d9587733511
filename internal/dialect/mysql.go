package dialect

import (
	"context"
	"reflect"
	"strings"

	"github.com/qwikbyte/datacore/internal/db"
	"github.com/qwikbyte/datacore/internal/query"
	"github.com/qwikbyte/datacore/internal/typemap"
)

// MySQL requires 8.0.13+ for the expression default used by the UUID
// generation strategy.
type MySQL struct{}

func (MySQL) Name() string { return "mysql" }

func (MySQL) Placeholder() query.Placeholder { return query.Question }

func (MySQL) ColumnType(t reflect.Type, s typemap.Strategy) string {
	if s == typemap.GenerationUUID {
		return "CHAR(36) DEFAULT (uuid())"
	}
	switch typemap.KindOf(t) {
	case typemap.KindBool:
		return "BOOLEAN"
	case typemap.KindSmallInt:
		return "SMALLINT"
	case typemap.KindInteger:
		if s == typemap.GenerationAuto {
			return "INT AUTO_INCREMENT"
		}
		return "INT"
	case typemap.KindBigInt:
		if s == typemap.GenerationAuto {
			return "BIGINT AUTO_INCREMENT"
		}
		return "BIGINT"
	case typemap.KindReal:
		return "FLOAT"
	case typemap.KindDouble:
		return "DOUBLE"
	case typemap.KindDecimal:
		return "DECIMAL(18,4)"
	case typemap.KindChar:
		return "CHAR(1)"
	case typemap.KindBytes:
		return "BLOB"
	case typemap.KindUUID:
		return "CHAR(36)"
	case typemap.KindDate:
		return "DATE"
	case typemap.KindTime:
		return "TIME"
	case typemap.KindTimestamp:
		// DATETIME over TIMESTAMP: no 2038 range cliff, no session-zone
		// rewriting on read.
		return "DATETIME"
	case typemap.KindJSON:
		return "JSON"
	default:
		return "TEXT"
	}
}

func (MySQL) TableColumns(ctx context.Context, conn db.Conn, schemaName, table string) (map[string]string, error) {
	q := `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`
	args := []any{schemaName, table}
	if schemaName == "" {
		q = `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position
	`
		args = []any{table}
	}

	rows, err := conn.Query(ctx, q, args...)
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
