package datacore

import (
	"context"
	"fmt"

	"github.com/qwikbyte/datacore/internal/db"
	"github.com/qwikbyte/datacore/internal/dialect"
)

// stubDialect keeps the real PostgreSQL type mapping and placeholder style
// but serves the column catalog from memory, so registration never issues a
// catalog query against the fake connection.
type stubDialect struct {
	dialect.Postgres
	catalog    map[string]string
	catalogErr error
}

func (d stubDialect) TableColumns(ctx context.Context, conn db.Conn, schemaName, table string) (map[string]string, error) {
	if d.catalogErr != nil {
		return nil, d.catalogErr
	}
	if d.catalog == nil {
		return map[string]string{}, nil
	}
	return d.catalog, nil
}

// fakeResult is one canned result set. readErr is reported by Rows.Err
// after iteration, mimicking a connection dropped mid-read.
type fakeResult struct {
	cols    []string
	data    [][]any
	readErr error
}

// fakeConn records every statement it sees and serves canned results in
// order, repeating the last one.
type fakeConn struct {
	results  []fakeResult
	affected int64
	queryErr error
	execErr  error

	queries  []string
	execs    []string
	args     [][]any
	released int
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (db.Rows, error) {
	c.queries = append(c.queries, sql)
	c.args = append(c.args, args)
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	var res fakeResult
	if len(c.results) > 0 {
		res = c.results[0]
		if len(c.results) > 1 {
			c.results = c.results[1:]
		}
	}
	return &fakeRows{cols: res.cols, data: res.data, readErr: res.readErr}, nil
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	c.execs = append(c.execs, sql)
	c.args = append(c.args, args)
	if c.execErr != nil {
		return 0, c.execErr
	}
	return c.affected, nil
}

func (c *fakeConn) Release() { c.released++ }

type fakeProvider struct {
	conn       *fakeConn
	acquireErr error
	pingErr    error
	closed     bool
}

func (p *fakeProvider) Acquire(ctx context.Context) (db.Conn, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.conn, nil
}

func (p *fakeProvider) Ping(ctx context.Context) error { return p.pingErr }
func (p *fakeProvider) Close()                         { p.closed = true }

type fakeRows struct {
	cols    []string
	data    [][]any
	idx     int
	readErr error
	closed  bool
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
		return fmt.Errorf("scan: row has %d values, got %d destinations", len(row), len(dest))
	}
	for i, d := range dest {
		p, ok := d.(*any)
		if !ok {
			return fmt.Errorf("scan destination %d: want *any, got %T", i, d)
		}
		*p = row[i]
	}
	return nil
}

func (r *fakeRows) Err() error   { return r.readErr }
func (r *fakeRows) Close() error { r.closed = true; return nil }

// testCore builds a Core over the fakes, bypassing Open.
func testCore(conn *fakeConn, d dialect.Dialect) (*Core, *fakeProvider) {
	p := &fakeProvider{conn: conn}
	c := newCore(d, "")
	c.provider = p
	return c, p
}

// player is the entity most tests register.
type player struct {
	ID   int64    `db:"id,pk,auto"`
	Name string   `db:"name,notnull"`
	Tags []string `db:"tags"`
}

func (player) TableName() string { return "players" }

// playerCatalog matches player's descriptor, so sync is a no-op.
func playerCatalog() map[string]string {
	return map[string]string{"id": "bigint", "name": "text", "tags": "jsonb"}
}

// playerRepo is the repository interface the tests wire up.
type playerRepo interface {
	ByName(ctx context.Context, name string) (*player, error)
	All(ctx context.Context) ([]player, error)
	Save(ctx context.Context, name string, tags []string) (int64, error)
}

type playerRepoImpl struct{ rt *Runtime }

func (r *playerRepoImpl) ByName(ctx context.Context, name string) (*player, error) {
	return One[player](ctx, r.rt, "ByName", name)
}

func (r *playerRepoImpl) All(ctx context.Context) ([]player, error) {
	return All[player](ctx, r.rt, "All")
}

func (r *playerRepoImpl) Save(ctx context.Context, name string, tags []string) (int64, error) {
	return Exec(ctx, r.rt, "Save", name, tags)
}

func playerMethods() Methods {
	return Methods{
		"ByName": {Query: "SELECT id, name, tags FROM players WHERE name = :name", Params: []string{"name"}},
		"All":    {Query: "SELECT id, name, tags FROM players ORDER BY id", Params: nil},
		"Save":   {Query: "INSERT INTO players (name, tags) VALUES (:name, :tags)", Params: []string{"name", "tags"}},
	}
}

func registerPlayers(ctx context.Context, c *Core) (playerRepo, error) {
	return Register[playerRepo](ctx, c, player{}, playerMethods(), func(rt *Runtime) playerRepo {
		return &playerRepoImpl{rt: rt}
	})
}
