//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/qwikbyte/datacore"
)

func TestSQLiteEngine(t *testing.T) {
	ctx := context.Background()

	// Use environment variable if set, otherwise a throwaway database file
	dbPath := os.Getenv("SQLITE_TEST_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(t.TempDir(), "arena.db")
	}

	core, err := datacore.Open(ctx, datacore.Config{DSN: "sqlite://" + dbPath})
	if err != nil {
		t.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer core.Close()

	runEngineSuite(t, core, map[string]string{
		"id":   "INTEGER",
		"name": "TEXT",
		"tags": "TEXT",
	})
}

func TestSQLiteInMemory(t *testing.T) {
	ctx := context.Background()

	core, err := datacore.Open(ctx, datacore.Config{DSN: "sqlite://:memory:", PoolSize: 1})
	if err != nil {
		t.Fatalf("Failed to open in-memory SQLite: %v", err)
	}
	defer core.Close()

	if err := core.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	repo := registerArena(ctx, t, core)
	if _, err := repo.Save(ctx, "Ann", []string{"scout"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	found, err := repo.ByName(ctx, "Ann")
	if err != nil {
		t.Fatalf("ByName failed: %v", err)
	}
	if found == nil || found.Tags[0] != "scout" {
		t.Errorf("Round trip failed: %+v", found)
	}
}
