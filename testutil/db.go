package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/storage/database"
)

// PrepareDB returns a migrated, empty test database.
// Tests needing it are skipped unless REPOSTNET_TEST_DB is set.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv("REPOSTNET_TEST_DB") == "" {
		t.Skip("REPOSTNET_TEST_DB not set; skipping database test")
	}

	conf := core.NewConfig()
	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	ResetDB(t, db)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	if _, err := db.Exec("TRUNCATE TABLE submissions, members"); err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}
