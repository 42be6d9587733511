package datacore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestRegisterCreatesTableAndStoresRepo(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}
	core, _ := testCore(conn, stubDialect{})

	repo, err := registerPlayers(ctx, core)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if repo == nil {
		t.Fatal("Register returned nil repository")
	}

	wantDDL := "CREATE TABLE IF NOT EXISTS players (id BIGSERIAL PRIMARY KEY, name TEXT NOT NULL, tags JSONB)"
	if len(conn.execs) != 1 || conn.execs[0] != wantDDL {
		t.Errorf("Expected exactly one DDL statement %q, got %v", wantDDL, conn.execs)
	}

	got, ok := Get[playerRepo](core)
	if !ok {
		t.Fatal("Get found no registered playerRepo")
	}
	if got != repo {
		t.Error("Get returned a different instance than Register")
	}
}

func TestRegisterSyncedTableIssuesNoDDL(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}
	core, _ := testCore(conn, stubDialect{catalog: playerCatalog()})

	if _, err := registerPlayers(ctx, core); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(conn.execs) != 0 {
		t.Errorf("Expected no DDL for an up-to-date table, got %v", conn.execs)
	}
}

func TestRegisterContinuesAfterSyncFailure(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}
	core, _ := testCore(conn, stubDialect{catalogErr: fmt.Errorf("catalog offline")})

	repo, err := registerPlayers(ctx, core)
	if err != nil {
		t.Fatalf("Register should survive a sync failure, got: %v", err)
	}
	if len(conn.execs) != 0 {
		t.Errorf("Expected no DDL after a failed catalog read, got %v", conn.execs)
	}

	// The repository stays usable: methods still dispatch.
	conn.results = []fakeResult{{cols: []string{"id", "name", "tags"}, data: [][]any{}}}
	if _, err := repo.All(ctx); err != nil {
		t.Errorf("Repository should work after a sync failure, got: %v", err)
	}
}

func TestRegisterPlainStructSkipsSync(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}
	core, _ := testCore(conn, stubDialect{})

	repo, err := Register[scoreRepo](ctx, core, scoreRow{}, Methods{
		"Top": {Query: "SELECT name, score FROM players ORDER BY score DESC"},
	}, func(rt *Runtime) scoreRepo {
		return &scoreRepoImpl{rt: rt}
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(conn.execs) != 0 || len(conn.queries) != 0 {
		t.Errorf("Expected no schema traffic for a plain struct, got execs=%v queries=%v", conn.execs, conn.queries)
	}

	conn.results = []fakeResult{{
		cols: []string{"name", "score"},
		data: [][]any{{"Ann", int64(31)}},
	}}
	rows, err := repo.Top(ctx)
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Ann" || rows[0].Score != 31 {
		t.Errorf("Unexpected result: %+v", rows)
	}
}

// scoreRow has no TableName: it is a query result target only.
type scoreRow struct {
	Name  string `db:"name"`
	Score int64  `db:"score"`
}

type scoreRepo interface {
	Top(ctx context.Context) ([]scoreRow, error)
}

type scoreRepoImpl struct{ rt *Runtime }

func (r *scoreRepoImpl) Top(ctx context.Context) ([]scoreRow, error) {
	return All[scoreRow](ctx, r.rt, "Top")
}

func TestRegisterRejectsBadEntity(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}
	core, _ := testCore(conn, stubDialect{})

	_, err := Register[playerRepo](ctx, core, twoKeys{}, playerMethods(), func(rt *Runtime) playerRepo {
		return &playerRepoImpl{rt: rt}
	})
	var derr *DeclarationError
	if !errors.As(err, &derr) {
		t.Fatalf("Expected DeclarationError, got %v", err)
	}
	if !strings.Contains(derr.Reason, "composite keys") {
		t.Errorf("Expected reason to mention composite keys, got %q", derr.Reason)
	}
}

type twoKeys struct {
	A int64 `db:"a,pk"`
	B int64 `db:"b,pk"`
}

func (twoKeys) TableName() string { return "two_keys" }

func TestRegisterRejectsNilEntity(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}
	core, _ := testCore(conn, stubDialect{})

	_, err := Register[playerRepo](ctx, core, nil, playerMethods(), func(rt *Runtime) playerRepo {
		return &playerRepoImpl{rt: rt}
	})
	var derr *DeclarationError
	if !errors.As(err, &derr) {
		t.Fatalf("Expected DeclarationError, got %v", err)
	}
}

func TestRegisterRejectsEmptyQuery(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}
	core, _ := testCore(conn, stubDialect{catalog: playerCatalog()})

	methods := playerMethods()
	methods["Broken"] = MethodSpec{Query: "   "}
	_, err := Register[playerRepo](ctx, core, player{}, methods, func(rt *Runtime) playerRepo {
		return &playerRepoImpl{rt: rt}
	})
	var derr *DeclarationError
	if !errors.As(err, &derr) {
		t.Fatalf("Expected DeclarationError, got %v", err)
	}
	if derr.Method != "Broken" {
		t.Errorf("Expected the failing method name, got %q", derr.Method)
	}
}

func TestRegisterRejectsDuplicateParams(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}
	core, _ := testCore(conn, stubDialect{catalog: playerCatalog()})

	methods := Methods{
		"Dup": {Query: "SELECT * FROM players WHERE name = :name", Params: []string{"name", "name"}},
	}
	_, err := Register[playerRepo](ctx, core, player{}, methods, func(rt *Runtime) playerRepo {
		return &playerRepoImpl{rt: rt}
	})
	var derr *DeclarationError
	if !errors.As(err, &derr) {
		t.Fatalf("Expected DeclarationError, got %v", err)
	}
	if !strings.Contains(derr.Reason, "declared twice") {
		t.Errorf("Expected duplicate-parameter reason, got %q", derr.Reason)
	}
}

func TestRegisterTwiceReplaces(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}
	core, _ := testCore(conn, stubDialect{catalog: playerCatalog()})

	first, err := registerPlayers(ctx, core)
	if err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	second, err := registerPlayers(ctx, core)
	if err != nil {
		t.Fatalf("second Register failed: %v", err)
	}
	if first == second {
		t.Fatal("Expected distinct instances from two registrations")
	}

	got, ok := Get[playerRepo](core)
	if !ok {
		t.Fatal("Get found nothing after re-registration")
	}
	if got != second {
		t.Error("Expected Get to return the latest registration")
	}
}

func TestGetUnregistered(t *testing.T) {
	type neverRegistered interface{ Nope() }
	conn := &fakeConn{}
	core, _ := testCore(conn, stubDialect{})

	if _, ok := Get[neverRegistered](core); ok {
		t.Error("Expected ok=false for an unregistered interface")
	}
}

// TestEngineEndToEnd drives the whole pipeline against the fakes: register,
// insert with a JSON-bound slice, then query the row back by name.
func TestEngineEndToEnd(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{
		affected: 1,
		results: []fakeResult{{
			cols: []string{"id", "name", "tags"},
			data: [][]any{{int64(1), "Ann", `["x","y"]`}},
		}},
	}
	core, _ := testCore(conn, stubDialect{catalog: playerCatalog()})

	repo, err := registerPlayers(ctx, core)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	n, err := repo.Save(ctx, "Ann", []string{"x", "y"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if n != 1 {
		t.Errorf("affected = %d, want 1", n)
	}
	saved := conn.args[len(conn.args)-1]
	if len(saved) != 2 || saved[0] != "Ann" || saved[1] != `["x","y"]` {
		t.Errorf("Save binds = %v, want [Ann [\"x\",\"y\"]]", saved)
	}

	found, err := repo.ByName(ctx, "Ann")
	if err != nil {
		t.Fatalf("ByName failed: %v", err)
	}
	if found == nil {
		t.Fatal("Expected a row for Ann")
	}
	if found.ID != 1 || found.Name != "Ann" {
		t.Errorf("row = %+v", found)
	}
	if !reflect.DeepEqual(found.Tags, []string{"x", "y"}) {
		t.Errorf("Tags = %v, want [x y]", found.Tags)
	}
}
