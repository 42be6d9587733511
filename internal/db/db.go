// Package db supplies live database connections behind one small provider
// interface, backed either by a pgx connection pool or by database/sql with
// the sqlite3 and mysql drivers. The engine never dials on its own; every
// statement it runs flows through a Conn acquired here and released before
// the call returns.
package db

import "context"

// Provider hands out pooled connections. Close shuts the pool down; it is
// the host process's responsibility to call it during teardown.
type Provider interface {
	Acquire(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
	Close()
}

// Conn is one pooled connection, scoped to a single engine call. Release
// returns it to the pool and must be called on every exit path.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Release()
}

// Rows is the minimal result-set cursor the engine consumes. It is
// satisfied by database/sql rows via a thin wrapper and adapted from pgx
// rows; fakes in tests implement it directly.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}
