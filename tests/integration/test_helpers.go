//go:build integration
// +build integration

package integration

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/qwikbyte/datacore"
)

// arenaPlayer is the entity every engine suite registers first.
type arenaPlayer struct {
	ID   int64    `db:"id,pk,auto"`
	Name string   `db:"name,notnull"`
	Tags []string `db:"tags"`
}

func (arenaPlayer) TableName() string { return "arena_players" }

// arenaPlayerV2 widens the same table with two extra columns.
type arenaPlayerV2 struct {
	ID    int64         `db:"id,pk,auto"`
	Name  string        `db:"name,notnull"`
	Tags  []string      `db:"tags"`
	Grade datacore.Char `db:"grade"`
	Score int64         `db:"score"`
}

func (arenaPlayerV2) TableName() string { return "arena_players" }

type arenaRepo interface {
	Save(ctx context.Context, name string, tags []string) (int64, error)
	ByName(ctx context.Context, name string) (*arenaPlayer, error)
	All(ctx context.Context) ([]arenaPlayer, error)
	Clear(ctx context.Context) (int64, error)
}

type arenaRepoImpl struct{ rt *datacore.Runtime }

func (r *arenaRepoImpl) Save(ctx context.Context, name string, tags []string) (int64, error) {
	return datacore.Exec(ctx, r.rt, "Save", name, tags)
}

func (r *arenaRepoImpl) ByName(ctx context.Context, name string) (*arenaPlayer, error) {
	return datacore.One[arenaPlayer](ctx, r.rt, "ByName", name)
}

func (r *arenaRepoImpl) All(ctx context.Context) ([]arenaPlayer, error) {
	return datacore.All[arenaPlayer](ctx, r.rt, "All")
}

func (r *arenaRepoImpl) Clear(ctx context.Context) (int64, error) {
	return datacore.Exec(ctx, r.rt, "Clear")
}

type arenaRepoV2 interface {
	SetGrade(ctx context.Context, name string, grade datacore.Char, score int64) (int64, error)
	ByName(ctx context.Context, name string) (*arenaPlayerV2, error)
}

type arenaRepoV2Impl struct{ rt *datacore.Runtime }

func (r *arenaRepoV2Impl) SetGrade(ctx context.Context, name string, grade datacore.Char, score int64) (int64, error) {
	return datacore.Exec(ctx, r.rt, "SetGrade", name, grade, score)
}

func (r *arenaRepoV2Impl) ByName(ctx context.Context, name string) (*arenaPlayerV2, error) {
	return datacore.One[arenaPlayerV2](ctx, r.rt, "ByName", name)
}

func registerArena(ctx context.Context, t *testing.T, core *datacore.Core) arenaRepo {
	t.Helper()

	repo, err := datacore.Register[arenaRepo](ctx, core, arenaPlayer{}, datacore.Methods{
		"Save":   {Query: "INSERT INTO arena_players (name, tags) VALUES (:name, :tags)", Params: []string{"name", "tags"}},
		"ByName": {Query: "SELECT id, name, tags FROM arena_players WHERE name = :name", Params: []string{"name"}},
		"All":    {Query: "SELECT id, name, tags FROM arena_players ORDER BY id"},
		"Clear":  {Query: "DELETE FROM arena_players"},
	}, func(rt *datacore.Runtime) arenaRepo { return &arenaRepoImpl{rt: rt} })
	if err != nil {
		t.Fatalf("Failed to register arenaRepo: %v", err)
	}
	return repo
}

// verifyCatalogTypes checks that the live catalog carries every expected
// column; an empty expected type only asserts presence.
func verifyCatalogTypes(ctx context.Context, t *testing.T, core *datacore.Core, table string, wantTypes map[string]string) {
	t.Helper()

	catalog, err := core.TableColumns(ctx, table)
	if err != nil {
		t.Fatalf("Failed to read catalog for %s: %v", table, err)
	}
	for col, want := range wantTypes {
		got, ok := catalog[col]
		if !ok {
			t.Errorf("Expected column %s in %s catalog, have %v", col, table, catalog)
			continue
		}
		if want != "" && !strings.EqualFold(got, want) {
			t.Errorf("Column %s: expected type %s, got %s", col, want, got)
		}
	}
}

// runEngineSuite drives registration, schema sync, writes, reads and schema
// evolution against one live database.
func runEngineSuite(t *testing.T, core *datacore.Core, wantTypes map[string]string) {
	ctx := context.Background()

	repo := registerArena(ctx, t, core)
	verifyCatalogTypes(ctx, t, core, "arena_players", wantTypes)

	if _, err := repo.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear table: %v", err)
	}

	n, err := repo.Save(ctx, "Ann", []string{"scout", "archer"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 affected row, got %d", n)
	}

	found, err := repo.ByName(ctx, "Ann")
	if err != nil {
		t.Fatalf("ByName failed: %v", err)
	}
	if found == nil {
		t.Fatal("Expected a row for Ann")
	}
	if found.ID == 0 {
		t.Error("Expected a database-assigned id")
	}
	if !reflect.DeepEqual(found.Tags, []string{"scout", "archer"}) {
		t.Errorf("Tags = %v", found.Tags)
	}

	missing, err := repo.ByName(ctx, "Nobody")
	if err != nil {
		t.Fatalf("ByName(Nobody) failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for a missing row, got %+v", missing)
	}

	if _, err := repo.Save(ctx, "Bea", []string{"mage"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(all))
	}
	if all[0].Name != "Ann" || all[1].Name != "Bea" {
		t.Errorf("Unexpected order: %+v", all)
	}

	// Re-registration must be idempotent and replace the stored repo.
	repo = registerArena(ctx, t, core)
	if again, err := repo.ByName(ctx, "Ann"); err != nil || again == nil {
		t.Fatalf("Repository broken after re-registration: %+v, %v", again, err)
	}

	evolveArena(ctx, t, core)
}

// evolveArena registers the widened entity over the same table and checks
// that sync added only the new columns.
func evolveArena(ctx context.Context, t *testing.T, core *datacore.Core) {
	t.Helper()

	repo, err := datacore.Register[arenaRepoV2](ctx, core, arenaPlayerV2{}, datacore.Methods{
		"SetGrade": {
			Query:  "UPDATE arena_players SET grade = :grade, score = :score WHERE name = :name",
			Params: []string{"name", "grade", "score"},
		},
		"ByName": {
			Query:  "SELECT id, name, tags, grade, score FROM arena_players WHERE name = :name",
			Params: []string{"name"},
		},
	}, func(rt *datacore.Runtime) arenaRepoV2 { return &arenaRepoV2Impl{rt: rt} })
	if err != nil {
		t.Fatalf("Failed to register arenaRepoV2: %v", err)
	}

	catalog, err := core.TableColumns(ctx, "arena_players")
	if err != nil {
		t.Fatalf("Failed to read catalog: %v", err)
	}
	for _, col := range []string{"grade", "score"} {
		if _, ok := catalog[col]; !ok {
			t.Errorf("Expected column %s after evolution, have %v", col, catalog)
		}
	}

	if _, err := repo.SetGrade(ctx, "Ann", 'B', 1200); err != nil {
		t.Fatalf("SetGrade failed: %v", err)
	}
	found, err := repo.ByName(ctx, "Ann")
	if err != nil {
		t.Fatalf("ByName failed: %v", err)
	}
	if found == nil {
		t.Fatal("Expected a row for Ann")
	}
	if found.Grade != 'B' || found.Score != 1200 {
		t.Errorf("Evolution round trip failed: grade=%c score=%d", rune(found.Grade), found.Score)
	}
	if !reflect.DeepEqual(found.Tags, []string{"scout", "archer"}) {
		t.Errorf("Existing data disturbed: %v", found.Tags)
	}
}
