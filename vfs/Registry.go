package vfs

import (
	"sync"

	"github.com/outlaybuild/forge/internal/base"
)

// Registry is the interning table backing FileItem/DirectoryItem
// identity: every component asking for the same path receives a handle
// sharing the same cached attributes, so a single Invalidate() call after
// an action runs is visible everywhere. It is an explicit per-build-
// invocation object rather than an ambient global singleton (DESIGN.md ADR-1).
type Registry struct {
	files *base.SharedMap[string, *fileAttrs]
	dirs  *base.SharedMap[string, *dirAttrs]
}

func NewRegistry() *Registry {
	return &Registry{
		files: base.NewSharedMap[string, *fileAttrs](1024),
		dirs:  base.NewSharedMap[string, *dirAttrs](256),
	}
}

// GetFile interns path and returns its FileItem handle, allocating a fresh
// attribute cache on first use.
func (r *Registry) GetFile(raw string) FileItem {
	path := MakeFilename(raw)
	key := path.String()
	attrs, _ := r.files.FindOrAdd(key, func() *fileAttrs { return &fileAttrs{} })
	return FileItem{Path: path, attrs: attrs}
}

func (r *Registry) GetFilename(path Filename) FileItem {
	key := path.String()
	attrs, _ := r.files.FindOrAdd(key, func() *fileAttrs { return &fileAttrs{} })
	return FileItem{Path: path, attrs: attrs}
}

// GetDirectory interns path and returns its DirectoryItem handle.
func (r *Registry) GetDirectory(raw string) DirectoryItem {
	dir := MakeDirectory(raw)
	key := dir.String()
	attrs, _ := r.dirs.FindOrAdd(key, func() *dirAttrs { return &dirAttrs{} })
	return DirectoryItem{Path: dir, attrs: attrs}
}

// InvalidateAll clears every cached attribute in the registry, for reusing
// one registry across independent build invocations in the same process.
// Neither the driver nor the farm worker currently calls it.
func (r *Registry) InvalidateAll() {
	for _, a := range r.files.Values() {
		a.once = sync.Once{}
	}
	for _, a := range r.dirs.Values() {
		a.once = sync.Once{}
	}
}
