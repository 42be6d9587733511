package dialect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/qwikbyte/datacore/internal/db"
)

// fakeConn records the last query and serves canned rows.
type fakeConn struct {
	lastQuery string
	lastArgs  []any
	rows      *fakeRows
	queryErr  error
}

func (c *fakeConn) Query(_ context.Context, sql string, args ...any) (db.Rows, error) {
	c.lastQuery = sql
	c.lastArgs = args
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return c.rows, nil
}

func (c *fakeConn) Exec(_ context.Context, sql string, args ...any) (int64, error) {
	c.lastQuery = sql
	c.lastArgs = args
	return 0, nil
}

func (c *fakeConn) Release() {}

type fakeRows struct {
	cols []string
	data [][]any
	idx  int
}

func (r *fakeRows) Columns() ([]string, error) { return r.cols, nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(row))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int:
			*p = row[i].(int)
		case *sql.NullString:
			if row[i] == nil {
				*p = sql.NullString{}
			} else {
				*p = sql.NullString{String: row[i].(string), Valid: true}
			}
		case *any:
			*p = row[i]
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { return nil }
