package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultBackupDirSitsBesideDB(t *testing.T) {
	t.Parallel()
	got := DefaultBackupDir(filepath.Join("data", "auranut.db"))
	if got != filepath.Join("data", "backups") {
		t.Fatalf("unexpected backup dir %q", got)
	}
}

func TestEnsureDBDirCreatesParents(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a", "b", "auranut.db")
	if err := EnsureDBDir(path); err != nil {
		t.Fatalf("ensure db dir: %v", err)
	}
	if st, err := os.Stat(filepath.Dir(path)); err != nil || !st.IsDir() {
		t.Fatalf("expected directory, got %v %v", st, err)
	}
}
