// Package vfs implements the FileItem/DirectoryItem cache and the metadata
// prefetcher: lazy-stat interning over a concrete FileItem/DirectoryItem
// handle, rather than a generic build-graph node model.
package vfs

import (
	"path/filepath"
	"strings"
)

// Directory is a normalised absolute directory path, value-typed so two
// Directory values for the same path compare equal without any registry
// lookup -- the registry only backs the *attribute cache*, not identity.
type Directory struct {
	path string
}

func MakeDirectory(raw string) Directory {
	return Directory{path: clean(raw)}
}

func (d Directory) String() string          { return d.path }
func (d Directory) Valid() bool             { return len(d.path) > 0 }
func (d Directory) Equals(o Directory) bool { return d.path == o.path }

func (d Directory) Basename() string {
	return filepath.Base(d.path)
}

func (d Directory) Parent() Directory {
	return Directory{path: filepath.Dir(d.path)}
}

func (d Directory) Folder(names ...string) Directory {
	return MakeDirectory(filepath.Join(append([]string{d.path}, names...)...))
}

func (d Directory) File(names ...string) Filename {
	if len(names) == 0 {
		return Filename{}
	}
	dir := d.Folder(names[:len(names)-1]...)
	return Filename{Dirname: dir, Basename: names[len(names)-1]}
}

// IsParentOf reports whether d is a (non-strict) path ancestor of o --
// used throughout by history's engine/project scope routing.
func (d Directory) IsParentOf(o Directory) bool {
	if d.path == o.path {
		return true
	}
	return strings.HasPrefix(o.path, d.path+string(filepath.Separator))
}

// Filename is a normalised absolute file path, split into directory +
// basename so path arithmetic (ReplaceExt, ...) stays cheap.
type Filename struct {
	Dirname  Directory
	Basename string
}

func MakeFilename(raw string) Filename {
	raw = clean(raw)
	dir, base := filepath.Split(raw)
	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	return Filename{Dirname: Directory{path: dir}, Basename: base}
}

func (f Filename) String() string {
	if f.Dirname.path == "" {
		return f.Basename
	}
	return filepath.Join(f.Dirname.path, f.Basename)
}
func (f Filename) Valid() bool { return len(f.Basename) > 0 }
func (f Filename) Equals(o Filename) bool {
	return f.Basename == o.Basename && f.Dirname.Equals(o.Dirname)
}
func (f Filename) Ext() string     { return filepath.Ext(f.Basename) }
func (f Filename) TrimExt() string { return strings.TrimSuffix(f.Basename, f.Ext()) }
func (f Filename) ReplaceExt(ext string) Filename {
	return Filename{Dirname: f.Dirname, Basename: f.TrimExt() + ext}
}

func clean(raw string) string {
	if !filepath.IsAbs(raw) {
		if abs, err := filepath.Abs(raw); err == nil {
			raw = abs
		}
	}
	return filepath.Clean(raw)
}

// FileSet / DirSet: ordered, de-duplicated path collections, used
// throughout action linking.
type FileSet []Filename

func (s *FileSet) Append(items ...Filename) {
	for _, it := range items {
		if !s.Contains(it) {
			*s = append(*s, it)
		}
	}
}
func (s FileSet) Contains(f Filename) bool {
	for _, it := range s {
		if it.Equals(f) {
			return true
		}
	}
	return false
}

type DirSet []Directory

func (s *DirSet) Append(items ...Directory) {
	for _, it := range items {
		found := false
		for _, existing := range *s {
			if existing.Equals(it) {
				found = true
				break
			}
		}
		if !found {
			*s = append(*s, it)
		}
	}
}
