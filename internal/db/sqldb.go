package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLPool provides connections from a database/sql pool. It serves the
// sqlite3 and mysql drivers, both registered by this package's imports.
type SQLPool struct {
	db     *sql.DB
	driver string
	log    *zap.Logger
}

// NewSQLPool opens a database/sql pool for the named driver and verifies the
// connection. maxConns caps open connections when positive.
func NewSQLPool(ctx context.Context, driver, dsn string, maxConns int, log *zap.Logger) (*SQLPool, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("connected", zap.String("driver", driver))
	return &SQLPool{db: db, driver: driver, log: log}, nil
}

// WrapSQLDB adopts an already-open database/sql pool without dialing.
func WrapSQLDB(driver string, db *sql.DB, log *zap.Logger) *SQLPool {
	return &SQLPool{db: db, driver: driver, log: log}
}

// Acquire checks a dedicated connection out of the pool.
func (p *SQLPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &sqlConn{conn: conn}, nil
}

// Ping verifies the pool can reach the database.
func (p *SQLPool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close shuts the pool down.
func (p *SQLPool) Close() {
	p.log.Info("closing pool", zap.String("driver", p.driver))
	_ = p.db.Close()
}

type sqlConn struct {
	conn *sql.Conn
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *sqlConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *sqlConn) Release() {
	_ = c.conn.Close()
}
