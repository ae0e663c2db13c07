package history

import (
	"path/filepath"
	"testing"

	"github.com/outlaybuild/forge/internal/base"
	"github.com/outlaybuild/forge/vfs"
)

var testLog = base.NewLogCategory("HistoryTest")

func TestUpdateProducingCommandLineDetectsChange(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	item := reg.GetFile(filepath.Join(dir, "out.o"))

	h := NewHistory(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "history.bin")), nil)

	if !h.UpdateProducingCommandLine(item, "/usr/bin/cc", "-c a.c -o out.o") {
		t.Fatalf("expected first recording of a command line to report changed")
	}
	if h.UpdateProducingCommandLine(item, "/usr/bin/cc", "-c a.c -o out.o") {
		t.Fatalf("expected repeating the same command line to report unchanged")
	}
	if !h.UpdateProducingCommandLine(item, "/usr/bin/cc", "-c a.c -o out.o -O2") {
		t.Fatalf("expected a different command line to report changed")
	}
}

func TestCommandLineHashIsCaseInsensitive(t *testing.T) {
	a := hashCommandLine("/usr/bin/CC", "-c A.C")
	b := hashCommandLine("/usr/bin/cc", "-c a.c")
	if a != b {
		t.Fatalf("expected case-folded hashing to treat differently-cased command lines as identical")
	}
}

func TestHistoryDelegatesToParentScope(t *testing.T) {
	engineDir := t.TempDir()
	projectDir := t.TempDir()
	reg := vfs.NewRegistry()
	item := reg.GetFile(filepath.Join(engineDir, "out.o"))

	parent := NewHistory(vfs.MakeDirectory(engineDir), vfs.MakeFilename(filepath.Join(engineDir, "h.bin")), nil)
	child := NewHistory(vfs.MakeDirectory(projectDir), vfs.MakeFilename(filepath.Join(projectDir, "h.bin")), parent)

	if !child.UpdateProducingCommandLine(item, "/usr/bin/cc", "-c a.c") {
		t.Fatalf("expected first write to report changed")
	}
	if !parent.Dirty() || child.Dirty() {
		t.Fatalf("expected the engine-scope parent (not the project-scope child) to hold the entry")
	}
}

func TestHistorySaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	item := reg.GetFile(filepath.Join(dir, "out.o"))
	store := vfs.MakeFilename(filepath.Join(dir, "history.bin"))

	h := NewHistory(vfs.MakeDirectory(dir), store, nil)
	h.UpdateProducingCommandLine(item, "/usr/bin/cc", "-c a.c")
	if err := h.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded := NewHistory(vfs.MakeDirectory(dir), store, nil)
	if err := reloaded.Load(testLog); err != nil {
		t.Fatal(err)
	}
	if reloaded.UpdateProducingCommandLine(item, "/usr/bin/cc", "-c a.c") {
		t.Fatalf("expected reloaded history to recognise the unchanged command line")
	}
}
