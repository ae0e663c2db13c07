package depcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/outlaybuild/forge/vfs"
)

func TestGetParsesManifestAndCaches(t *testing.T) {
	dir := t.TempDir()
	dep1 := filepath.Join(dir, "a.h")
	dep2 := filepath.Join(dir, "b.h")
	manifest := filepath.Join(dir, "deps.d")
	os.WriteFile(dep1, []byte("x"), 0o644)
	os.WriteFile(dep2, []byte("x"), 0o644)
	os.WriteFile(manifest, []byte(dep1+"\n"+dep2+"\n"), 0o644)

	reg := vfs.NewRegistry()
	cache := NewCache(reg)

	items, ok, err := cache.Get(reg.GetFile(manifest))
	if err != nil {
		t.Fatal(err)
	}
	if !ok || len(items) != 2 {
		t.Fatalf("expected 2 dependency items, got %d ok=%v", len(items), ok)
	}
}

func TestGetMissingManifestReturnsNotOK(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	cache := NewCache(reg)

	_, ok, err := cache.Get(reg.GetFile(filepath.Join(dir, "missing.d")))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("expected missing manifest to report ok=false")
	}
}

func TestGetReparsesAfterMTimeAdvances(t *testing.T) {
	dir := t.TempDir()
	dep := filepath.Join(dir, "a.h")
	manifest := filepath.Join(dir, "deps.d")
	os.WriteFile(dep, []byte("x"), 0o644)
	os.WriteFile(manifest, []byte(dep+"\n"), 0o644)

	reg := vfs.NewRegistry()
	cache := NewCache(reg)
	item := reg.GetFile(manifest)

	items, _, _ := cache.Get(item)
	if len(items) != 1 {
		t.Fatalf("expected 1 item initially, got %d", len(items))
	}

	dep2 := filepath.Join(dir, "b.h")
	os.WriteFile(dep2, []byte("x"), 0o644)
	now := time.Now().Add(2 * time.Second)
	os.WriteFile(manifest, []byte(dep+"\n"+dep2+"\n"), 0o644)
	os.Chtimes(manifest, now, now)
	item.Invalidate()

	items, _, _ = cache.Get(item)
	if len(items) != 2 {
		t.Fatalf("expected re-parse to observe 2 items after mtime advanced, got %d", len(items))
	}
}
