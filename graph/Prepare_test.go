package graph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/outlaybuild/forge/vfs"
)

func TestCreateOutputDirectoriesMakesParents(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	out := reg.GetFile(filepath.Join(dir, "nested", "deep", "out.o"))

	a := &Action{ProducedItems: []vfs.FileItem{out}}
	if err := CreateOutputDirectories([]*Action{a}); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(filepath.Join(dir, "nested", "deep")); err != nil || !info.IsDir() {
		t.Fatalf("expected the produced item's parent directory to exist, got err=%v", err)
	}
}

func TestDeleteScheduledRemovesFilesAndToleratesMissing(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	stale := filepath.Join(dir, "stale.tmp")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	already := reg.GetFile(filepath.Join(dir, "already-gone.tmp"))
	item := reg.GetFile(stale)

	a := &Action{DeleteItems: []vfs.FileItem{item, already}}
	if err := DeleteScheduled([]*Action{a}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("expected the scheduled-for-deletion file to be removed")
	}
}

func TestValidatePathLengthsNoopOnNonWindows(t *testing.T) {
	// This suite runs on non-Windows CI; ValidatePathLengths is a no-op there,
	// so a deliberately over-long path must not produce an error.
	reg := vfs.NewRegistry()
	out := reg.GetFile("/tmp/" + strings.Repeat("x", 300))
	a := &Action{ProducedItems: []vfs.FileItem{out}}
	if err := ValidatePathLengths([]*Action{a}); err != nil {
		t.Fatalf("expected no-op on non-Windows platforms, got %v", err)
	}
}
