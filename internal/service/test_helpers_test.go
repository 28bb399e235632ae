package service_test

import (
	"path/filepath"
	"testing"

	"github.com/arhaangamer7865-design/Auranut/internal/db"
	"github.com/arhaangamer7865-design/Auranut/internal/store"
)

func newTestStore(t *testing.T) (*store.SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auranut.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return store.NewSQLite(sqldb), path
}
