package sourcemeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/outlaybuild/forge/internal/base"
	"github.com/outlaybuild/forge/vfs"
)

var testLog = base.NewLogCategory("SourceMetaTest")

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFirstIncludeParsedAndCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cpp")
	writeFile(t, path, "// header\n#include \"Foo.h\"\nint main() {}\n")

	reg := vfs.NewRegistry()
	item := reg.GetFile(path)

	cache := NewCache(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "cache.bin")), nil)

	include, found, err := cache.FirstInclude(item)
	if err != nil {
		t.Fatal(err)
	}
	if !found || include != "Foo.h" {
		t.Fatalf("expected first include Foo.h, got %q found=%v", include, found)
	}
	if !cache.Dirty() {
		t.Fatalf("expected first parse to mark the cache dirty")
	}
}

func TestReflectionMarkerDetected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.h")
	writeFile(t, path, "#pragma once\nUCLASS()\nclass AFoo {};\n")

	reg := vfs.NewRegistry()
	item := reg.GetFile(path)
	cache := NewCache(vfs.MakeDirectory(dir), vfs.MakeFilename(filepath.Join(dir, "cache.bin")), nil)

	marked, err := cache.ReflectionMarker(item)
	if err != nil {
		t.Fatal(err)
	}
	if !marked {
		t.Fatalf("expected UCLASS() macro to be detected")
	}
}

func TestCacheDelegatesToParentOutsideBase(t *testing.T) {
	engineDir := t.TempDir()
	projectDir := t.TempDir()

	enginePath := filepath.Join(engineDir, "e.h")
	writeFile(t, enginePath, "#include <vector>\n")

	reg := vfs.NewRegistry()
	item := reg.GetFile(enginePath)

	parent := NewCache(vfs.MakeDirectory(engineDir), vfs.MakeFilename(filepath.Join(engineDir, "engine.bin")), nil)
	child := NewCache(vfs.MakeDirectory(projectDir), vfs.MakeFilename(filepath.Join(projectDir, "project.bin")), parent)

	include, found, err := child.FirstInclude(item)
	if err != nil {
		t.Fatal(err)
	}
	if !found || include != "vector" {
		t.Fatalf("expected delegation to parent cache to resolve engine-scope file, got %q found=%v", include, found)
	}
	if !parent.Dirty() || child.Dirty() {
		t.Fatalf("expected parent cache (not child) to record the parse")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cpp")
	writeFile(t, path, "#include \"Foo.h\"\n")

	store := vfs.MakeFilename(filepath.Join(dir, "meta.bin"))
	reg := vfs.NewRegistry()
	item := reg.GetFile(path)

	cache := NewCache(vfs.MakeDirectory(dir), store, nil)
	if _, _, err := cache.FirstInclude(item); err != nil {
		t.Fatal(err)
	}
	if err := cache.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded := NewCache(vfs.MakeDirectory(dir), store, nil)
	if err := reloaded.Load(testLog); err != nil {
		t.Fatal(err)
	}

	include, found, err := reloaded.firstIncludeLocal(item)
	if err != nil {
		t.Fatal(err)
	}
	if !found || include != "Foo.h" {
		t.Fatalf("expected reloaded cache to contain Foo.h without re-parsing, got %q found=%v", include, found)
	}
	if reloaded.Dirty() {
		t.Fatal("expected a cache hit after Load, but the file was re-parsed")
	}
}
