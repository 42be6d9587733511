//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/qwikbyte/datacore"
)

func TestMySQLEngine(t *testing.T) {
	ctx := context.Background()

	// Use environment variable if set, otherwise use default test connection string
	connString := os.Getenv("MYSQL_TEST_URL")
	if connString == "" {
		connString = "root:testpassword@tcp(localhost:3306)/testdb"
	}

	core, err := datacore.Open(ctx, datacore.Config{Driver: "mysql", DSN: connString, PoolSize: 4})
	if err != nil {
		t.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer core.Close()

	runEngineSuite(t, core, map[string]string{
		"id":   "bigint",
		"name": "text",
		"tags": "json",
	})
}
