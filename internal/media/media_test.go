package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDeleteRunExports(t *testing.T) {
	root := t.TempDir()
	runDir := filepath.Join(root, "alpha", "1")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "sheet-1.pdf"), []byte("%PDF"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewDir(root)
	if err := store.DeleteRunExports(context.Background(), "alpha", 1); err != nil {
		t.Fatalf("delete run exports: %v", err)
	}
	if _, err := os.Stat(runDir); !os.IsNotExist(err) {
		t.Fatalf("expected run dir removed, stat err %v", err)
	}
}

func TestDeleteRunExportsMissingDir(t *testing.T) {
	store := NewDir(t.TempDir())
	if err := store.DeleteRunExports(context.Background(), "alpha", 2); err != nil {
		t.Fatalf("expected no error for missing dir, got %v", err)
	}
}

func TestDeleteRunExportsValidation(t *testing.T) {
	store := NewDir(t.TempDir())
	if err := store.DeleteRunExports(context.Background(), "", 1); err == nil {
		t.Fatal("expected error for empty slug")
	}
	if err := store.DeleteRunExports(context.Background(), "alpha", 0); err == nil {
		t.Fatal("expected error for non-positive run")
	}
}
