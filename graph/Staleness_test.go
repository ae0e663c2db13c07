package graph

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/outlaybuild/forge/depcache"
	"github.com/outlaybuild/forge/history"
	"github.com/outlaybuild/forge/vfs"
)

func touch(t *testing.T, path string, at time.Time, size int) {
	t.Helper()
	content := make([]byte, size)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatal(err)
	}
}

func newGraphForStaleness(t *testing.T, actions ...*Action) *Graph {
	t.Helper()
	g, err := Link(actions)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestStalenessMissingProducedItemIsStale(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	out := reg.GetFile(filepath.Join(dir, "missing.o"))

	a := &Action{Kind: KindCompile, CommandPath: "cc", ProducedItems: []vfs.FileItem{out}}
	g := newGraphForStaleness(t, a)

	h := history.NewHistory(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "h.bin")), nil)
	result, err := g.AnalyzeStaleness(StalenessOptions{History: h})
	if err != nil {
		t.Fatal(err)
	}
	if !result[a] {
		t.Fatal("expected an action whose produced item does not exist to be stale")
	}
}

func TestStalenessZeroLengthCompileObjectIsNotStale(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	now := time.Now()
	outPath := filepath.Join(dir, "empty.o")
	touch(t, outPath, now, 0)
	out := reg.GetFile(outPath)

	a := &Action{Kind: KindCompile, CommandPath: "cc", CommandArguments: "-c a.c", ProducedItems: []vfs.FileItem{out}}
	g := newGraphForStaleness(t, a)

	h := history.NewHistory(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "h.bin")), nil)
	h.UpdateProducingCommandLine(out, "cc", "-c a.c")

	result, err := g.AnalyzeStaleness(StalenessOptions{History: h})
	if err != nil {
		t.Fatal(err)
	}
	if result[a] {
		t.Fatal("expected a zero-length .o produced by a Compile action to be treated as a legitimate empty translation unit")
	}
}

func TestStalenessZeroLengthNonCompileOutputIsStale(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	now := time.Now()
	outPath := filepath.Join(dir, "empty.txt")
	touch(t, outPath, now, 0)
	out := reg.GetFile(outPath)

	a := &Action{Kind: KindWriteMetadata, CommandPath: "writer", ProducedItems: []vfs.FileItem{out}}
	g := newGraphForStaleness(t, a)

	h := history.NewHistory(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "h.bin")), nil)
	h.UpdateProducingCommandLine(out, "writer", "")

	result, err := g.AnalyzeStaleness(StalenessOptions{History: h})
	if err != nil {
		t.Fatal(err)
	}
	if !result[a] {
		t.Fatal("expected a zero-length output from a non-Compile action to be treated like a missing output")
	}
}

func TestStalenessCommandLineChangeForcesRebuild(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	now := time.Now()
	outPath := filepath.Join(dir, "out.o")
	touch(t, outPath, now, 10)
	out := reg.GetFile(outPath)

	a := &Action{Kind: KindCompile, CommandPath: "cc", CommandArguments: "-c a.c -O2", ProducedItems: []vfs.FileItem{out}}
	g := newGraphForStaleness(t, a)

	h := history.NewHistory(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "h.bin")), nil)
	h.UpdateProducingCommandLine(out, "cc", "-c a.c") // different arguments recorded previously

	result, err := g.AnalyzeStaleness(StalenessOptions{History: h})
	if err != nil {
		t.Fatal(err)
	}
	if !result[a] {
		t.Fatal("expected a changed command line to force staleness")
	}
}

func TestStalenessPrerequisiteNewerThanOutputIsStale(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	base := time.Now().Add(-time.Hour)

	srcPath := filepath.Join(dir, "a.c")
	outPath := filepath.Join(dir, "a.o")
	touch(t, outPath, base, 10)
	touch(t, srcPath, base.Add(10*time.Second), 10) // newer than output, past the slop

	src := reg.GetFile(srcPath)
	out := reg.GetFile(outPath)

	a := &Action{Kind: KindCompile, CommandPath: "cc", CommandArguments: "-c a.c",
		PrerequisiteItems: []vfs.FileItem{src}, ProducedItems: []vfs.FileItem{out}}
	g := newGraphForStaleness(t, a)

	h := history.NewHistory(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "h.bin")), nil)
	h.UpdateProducingCommandLine(out, "cc", "-c a.c")

	result, err := g.AnalyzeStaleness(StalenessOptions{History: h})
	if err != nil {
		t.Fatal(err)
	}
	if !result[a] {
		t.Fatal("expected a prerequisite newer than the output (beyond the mtime slop) to force staleness")
	}
}

// TestStalenessLeafCommandLineChangePropagatesToDependent is scenario S3: a
// command-line change on a leaf action must transitively mark a downstream
// action stale even though neither the downstream action's own command line
// nor any mtime has changed -- at pre-execution analysis time the leaf
// hasn't run yet, so its produced item's mtime can't be the signal. Only
// recursively consulting the leaf's own computed staleness verdict catches
// this.
func TestStalenessLeafCommandLineChangePropagatesToDependent(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	now := time.Now()

	objPath := filepath.Join(dir, "a.o")
	exePath := filepath.Join(dir, "app")
	touch(t, objPath, now, 10)
	touch(t, exePath, now, 10)

	obj := reg.GetFile(objPath)
	exe := reg.GetFile(exePath)

	compile := &Action{Kind: KindCompile, CommandPath: "cc", CommandArguments: "-c a.c -O2", ProducedItems: []vfs.FileItem{obj}}
	link := &Action{Kind: KindLink, CommandPath: "ld", PrerequisiteItems: []vfs.FileItem{obj}, ProducedItems: []vfs.FileItem{exe}}
	g := newGraphForStaleness(t, compile, link)

	h := history.NewHistory(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "h.bin")), nil)
	h.UpdateProducingCommandLine(obj, "cc", "-c a.c") // different arguments recorded previously
	h.UpdateProducingCommandLine(exe, "ld", "")       // link's own command line is unchanged

	result, err := g.AnalyzeStaleness(StalenessOptions{History: h})
	if err != nil {
		t.Fatal(err)
	}
	if !result[compile] {
		t.Fatal("expected the leaf action with a changed command line to be stale")
	}
	if !result[link] {
		t.Fatal("expected staleness to propagate from the stale compile prerequisite to the link action, even though link's own command line and mtimes are unchanged")
	}
}

func TestStalenessImportLibraryExemption(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	now := time.Now()

	libPath := filepath.Join(dir, "a.lib")
	exePath := filepath.Join(dir, "app")
	touch(t, libPath, now, 10)
	touch(t, exePath, now, 10)

	lib := reg.GetFile(libPath)
	exe := reg.GetFile(exePath)

	// The dependent action does not list the .lib as a prerequisite item
	// (it never actually consumes it), matching the exemption's condition.
	produceLib := &Action{Kind: KindLink, CommandPath: "lib.exe", ProducedItems: []vfs.FileItem{lib}, Skipped: true}
	link := &Action{Kind: KindLink, CommandPath: "ld", ProducedItems: []vfs.FileItem{exe}}
	link.PrerequisiteActions = []*Action{produceLib}

	h := history.NewHistory(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "h.bin")), nil)
	h.UpdateProducingCommandLine(exe, "ld", "")

	g := &Graph{Actions: []*Action{produceLib, link}, producer: map[string]*Action{libPath: produceLib}}

	state := map[*Action]*staleState{produceLib: {}, link: {}}
	stale, err := g.actionIsStale(link, StalenessOptions{History: h, IgnoreImportLibraryChanges: true}, state)
	if err != nil {
		t.Fatal(err)
	}
	if stale {
		t.Fatal("expected a skipped import-library-only prerequisite to be exempted when ignore_import_library_changes is set and the lib is unconsumed")
	}
}

func TestStalenessDependencyManifestMissingIsStale(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	now := time.Now()
	outPath := filepath.Join(dir, "out.o")
	touch(t, outPath, now, 10)
	out := reg.GetFile(outPath)
	manifest := reg.GetFile(filepath.Join(dir, "out.d")) // never created

	a := &Action{Kind: KindCompile, CommandPath: "cc", ProducedItems: []vfs.FileItem{out}, DependencyListFile: &manifest}
	g := newGraphForStaleness(t, a)

	h := history.NewHistory(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "h.bin")), nil)
	h.UpdateProducingCommandLine(out, "cc", "")
	deps := depcache.NewCache(reg)

	result, err := g.AnalyzeStaleness(StalenessOptions{History: h, Dependencies: deps})
	if err != nil {
		t.Fatal(err)
	}
	if !result[a] {
		t.Fatal("expected a missing dependency manifest to force staleness")
	}
}

func TestStalenessDependencyManifestEntryNewerIsStale(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	base := time.Now().Add(-time.Hour)

	outPath := filepath.Join(dir, "out.o")
	headerPath := filepath.Join(dir, "header.h")
	manifestPath := filepath.Join(dir, "out.d")
	touch(t, outPath, base, 10)
	touch(t, headerPath, base.Add(10*time.Second), 10)
	if err := os.WriteFile(manifestPath, []byte(headerPath+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(manifestPath, base, base); err != nil {
		t.Fatal(err)
	}

	out := reg.GetFile(outPath)
	manifest := reg.GetFile(manifestPath)

	a := &Action{Kind: KindCompile, CommandPath: "cc", ProducedItems: []vfs.FileItem{out}, DependencyListFile: &manifest}
	g := newGraphForStaleness(t, a)

	h := history.NewHistory(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "h.bin")), nil)
	h.UpdateProducingCommandLine(out, "cc", "")
	deps := depcache.NewCache(reg)

	result, err := g.AnalyzeStaleness(StalenessOptions{History: h, Dependencies: deps})
	if err != nil {
		t.Fatal(err)
	}
	if !result[a] {
		t.Fatal("expected a dependency-manifest entry newer than the output to force staleness")
	}
}
