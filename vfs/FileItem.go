package vfs

import (
	"os"
	"sync"
	"time"

	"github.com/djherbis/times"
)

// fileAttrs is the lazily-populated, explicitly invalidated attribute cache
// backing a FileItem: exists/size/mtime memoised behind a single os.Stat
// call per generation.
type fileAttrs struct {
	once      sync.Once
	exists    bool
	size      int64
	modTime   time.Time
	birthTime time.Time
	statErr   error
}

func (a *fileAttrs) load(path string) {
	a.once.Do(func() {
		info, err := os.Stat(path)
		if err != nil {
			a.exists = false
			a.statErr = err
			return
		}
		a.statErr = nil
		a.exists = true
		a.size = info.Size()
		a.modTime = info.ModTime()
		if ts, err := times.Stat(path); err == nil && ts.HasBirthTime() {
			a.birthTime = ts.BirthTime()
		} else {
			a.birthTime = a.modTime
		}
	})
}

// FileItem is the handle for a single regular file: a Filename plus a
// pointer into the interning registry's attribute cache. Two FileItem
// values referencing the same path always share the same *fileAttrs, so a
// single Invalidate() call is visible to every holder of the handle.
type FileItem struct {
	Path  Filename
	attrs *fileAttrs
}

func (f FileItem) String() string { return f.Path.String() }

func (f FileItem) Exists() bool {
	f.attrs.load(f.Path.String())
	return f.attrs.statErr == nil && f.attrs.exists
}

func (f FileItem) Size() int64 {
	f.attrs.load(f.Path.String())
	return f.attrs.size
}

func (f FileItem) ModTime() time.Time {
	f.attrs.load(f.Path.String())
	return f.attrs.modTime
}

func (f FileItem) BirthTime() time.Time {
	f.attrs.load(f.Path.String())
	return f.attrs.birthTime
}

func (f FileItem) StatError() error {
	f.attrs.load(f.Path.String())
	return f.attrs.statErr
}

// Invalidate drops every cached attribute, forcing the next accessor call
// to re-stat. The driver calls this on an Action's produced items after the
// executor has run the batch containing that action.
func (f FileItem) Invalidate() {
	f.attrs.once = sync.Once{}
}

// NewerThan implements the staleness comparison between a produced item and
// its prerequisites, with a one-second slop to tolerate coarse filesystem
// mtime resolution (ADR-3: the same slop also covers dependency-manifest
// entries).
func (f FileItem) NewerThan(o FileItem) bool {
	return f.ModTime().After(o.ModTime().Add(time.Second))
}
