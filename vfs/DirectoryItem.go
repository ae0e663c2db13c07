package vfs

import (
	"os"
	"sync"
)

// dirAttrs lazily caches a directory's existence and child listing: one
// os.ReadDir per generation, regardless of how many callers ask.
type dirAttrs struct {
	once    sync.Once
	exists  bool
	files   []string
	subdirs []string
	statErr error
}

func (a *dirAttrs) load(path string) {
	a.once.Do(func() {
		a.exists, a.files, a.subdirs, a.statErr = false, nil, nil, nil
		info, err := os.Stat(path)
		if err != nil {
			a.statErr = err
			return
		}
		if !info.IsDir() {
			a.statErr = os.ErrInvalid
			return
		}
		a.exists = true
		entries, err := os.ReadDir(path)
		if err != nil {
			a.statErr = err
			return
		}
		for _, e := range entries {
			if e.IsDir() {
				a.subdirs = append(a.subdirs, e.Name())
			} else {
				a.files = append(a.files, e.Name())
			}
		}
	})
}

// DirectoryItem is the C1 handle for a directory: a Directory plus a
// pointer into the interning registry's listing cache.
type DirectoryItem struct {
	Path  Directory
	attrs *dirAttrs
}

func (d DirectoryItem) String() string { return d.Path.String() }

func (d DirectoryItem) Exists() bool {
	d.attrs.load(d.Path.String())
	return d.attrs.statErr == nil && d.attrs.exists
}

// Files returns the basenames of regular files directly under this
// directory, from the cached listing.
func (d DirectoryItem) Files() []string {
	d.attrs.load(d.Path.String())
	return d.attrs.files
}

// Subdirectories returns the basenames of child directories, from the
// cached listing.
func (d DirectoryItem) Subdirectories() []string {
	d.attrs.load(d.Path.String())
	return d.attrs.subdirs
}

func (d DirectoryItem) Invalidate() {
	d.attrs.once = sync.Once{}
}
