package schema

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/qwikbyte/datacore/internal/db"
	"github.com/qwikbyte/datacore/internal/dialect"
)

// Sync reconciles desc against the live table. Columns missing from the
// catalog are rendered as "name SQLTYPE [PRIMARY KEY] [NOT NULL]"; when the
// table has no columns at all one create-if-not-exists statement carries
// every definition, otherwise each missing column becomes its own add-column
// statement. Strictly additive: nothing is ever dropped, renamed, retyped or
// narrowed. Concurrent synchronization of the same table from two processes
// is unguarded and may fail transiently on the loser; the caller decides
// whether that aborts anything.
func Sync(ctx context.Context, conn db.Conn, d dialect.Dialect, schemaName string, desc *Descriptor, log *zap.Logger) error {
	if desc == nil || len(desc.Columns) == 0 {
		return nil
	}

	existing, err := d.TableColumns(ctx, conn, schemaName, desc.Table)
	if err != nil {
		return fmt.Errorf("failed to read column catalog for %s: %w", desc.Table, err)
	}

	var pending []string
	for _, col := range desc.Columns {
		if _, ok := existing[strings.ToLower(col.Name)]; !ok {
			pending = append(pending, columnDef(col))
		}
	}
	if len(pending) == 0 {
		return nil
	}

	if len(existing) == 0 {
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", desc.Table, strings.Join(pending, ", "))
		log.Debug("creating table", zap.String("table", desc.Table), zap.String("sql", stmt))
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", desc.Table, err)
		}
		return nil
	}

	for _, def := range pending {
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", desc.Table, def)
		log.Debug("adding column", zap.String("table", desc.Table), zap.String("sql", stmt))
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column to %s: %w", desc.Table, err)
		}
	}
	return nil
}

func columnDef(col Column) string {
	var b strings.Builder
	b.WriteString(col.Name)
	b.WriteByte(' ')
	b.WriteString(col.SQLType)
	if col.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if !col.Nullable {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}
