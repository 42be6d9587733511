package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresPool provides connections from a pgx connection pool.
type PostgresPool struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewPostgresPool dials PostgreSQL and verifies the connection. maxConns
// caps the pool size when positive; zero keeps the pgx default.
func NewPostgresPool(ctx context.Context, dsn string, maxConns int32, log *zap.Logger) (*PostgresPool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("connected to postgres", zap.Int32("max_conns", cfg.MaxConns))
	return &PostgresPool{pool: pool, log: log}, nil
}

// WrapPostgresPool adopts an existing pool without dialing. The caller keeps
// ownership decisions out of this package; Close still closes the pool.
func WrapPostgresPool(pool *pgxpool.Pool, log *zap.Logger) *PostgresPool {
	return &PostgresPool{pool: pool, log: log}
}

// Acquire checks a connection out of the pool.
func (p *PostgresPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &pgxConn{conn: conn}, nil
}

// Ping verifies the pool can reach the database.
func (p *PostgresPool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts the pool down.
func (p *PostgresPool) Close() {
	p.log.Info("closing postgres pool")
	p.pool.Close()
}

type pgxConn struct {
	conn *pgxpool.Conn
}

func (c *pgxConn) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

func (c *pgxConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := c.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgxConn) Release() {
	c.conn.Release()
}

type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Columns() ([]string, error) {
	fds := r.rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	return cols, nil
}

func (r *pgxRows) Next() bool { return r.rows.Next() }

func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }

func (r *pgxRows) Err() error { return r.rows.Err() }

func (r *pgxRows) Close() error {
	r.rows.Close()
	return nil
}
