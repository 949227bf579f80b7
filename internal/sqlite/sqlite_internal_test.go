package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/realronaldrump/workout-app-sub002/internal/testhelpers"
)

func TestNewDatabase_Migrates(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	url := filepath.Join(t.TempDir(), "migrate.sqlite3")

	for run := range 2 {
		db, err := NewDatabase(ctx, url, logger)
		if err != nil {
			t.Fatalf("run %d: new database: %v", run, err)
		}
		var version int
		if err = db.ReadOnly.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
			t.Fatalf("run %d: read user_version: %v", run, err)
		}
		if version != schemaVersion {
			t.Errorf("run %d: user_version = %d, want %d", run, version, schemaVersion)
		}
		if _, err = db.ReadWrite.ExecContext(ctx,
			"INSERT INTO blobs (key, revision, data) VALUES (?, ?, ?) ON CONFLICT DO NOTHING", "k", 1, []byte("v")); err != nil {
			t.Errorf("run %d: insert into blobs: %v", run, err)
		}
		if err = db.Close(); err != nil {
			t.Fatalf("run %d: close: %v", run, err)
		}
	}
}

func TestDatabase_ReadOnlyRejectsWrites(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	db, err := NewDatabase(ctx, ":memory:", testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if err != nil {
		t.Fatalf("new database: %v", err)
	}
	defer db.Close()

	if _, err = db.ReadOnly.ExecContext(ctx,
		"INSERT INTO blobs (key, revision, data) VALUES ('k', 1, x'00')"); err == nil {
		t.Error("expected write through read-only pool to fail")
	}
}
