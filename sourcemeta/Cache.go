// Package sourcemeta implements the source-file metadata cache: two
// mtime-gated per-file maps (first-include text, reflection-marker flag)
// with hierarchical engine/project scoping and versioned binary
// persistence (versioned Archive, atomic replace-on-save).
package sourcemeta

import (
	"sync"
	"sync/atomic"

	fbase "github.com/outlaybuild/forge/internal/base"
	"github.com/outlaybuild/forge/vfs"
)

const cacheFormatVersion int32 = 3

// includeEntry/markupEntry are the two map value shapes the on-disk format
// stores: an observed mtime stamp plus the parsed answer.
type includeEntry struct {
	observedMTime int64
	firstInclude  string
	hasInclude    bool
}

type markupEntry struct {
	observedMTime  int64
	containsMarkup bool
}

// Cache is one scope's worth of source metadata (engine or project). A
// child cache delegates lookups for paths outside its own base directory
// to Parent.
type Cache struct {
	mu    sync.Mutex
	base  vfs.Directory
	store vfs.Filename

	includes map[string]includeEntry
	markups  map[string]markupEntry

	Parent      *Cache
	dirty       int32
	Compression fbase.CompressionFormat
}

func NewCache(base vfs.Directory, store vfs.Filename, parent *Cache) *Cache {
	return &Cache{
		base:        base,
		store:       store,
		includes:    make(map[string]includeEntry),
		markups:     make(map[string]markupEntry),
		Parent:      parent,
		Compression: fbase.COMPRESSION_FORMAT_LZ4,
	}
}

func (c *Cache) owns(item vfs.FileItem) bool {
	return c.base.IsParentOf(item.Path.Dirname)
}

func (c *Cache) resolve(item vfs.FileItem) *Cache {
	if c.owns(item) || c.Parent == nil {
		return c
	}
	return c.Parent.resolve(item)
}

// FirstInclude returns the first #include/#import target found at the top
// of item, re-parsing when item's current mtime has advanced past the
// observed mtime recorded for the cached answer.
func (c *Cache) FirstInclude(item vfs.FileItem) (string, bool, error) {
	scope := c.resolve(item)
	return scope.firstIncludeLocal(item)
}

func (c *Cache) firstIncludeLocal(item vfs.FileItem) (string, bool, error) {
	key := item.Path.String()
	mtime := item.ModTime().Unix()

	c.mu.Lock()
	if e, ok := c.includes[key]; ok && e.observedMTime >= mtime {
		c.mu.Unlock()
		return e.firstInclude, e.hasInclude, nil
	}
	c.mu.Unlock()

	text, found, err := parseFirstInclude(item)
	if err != nil {
		return "", false, err
	}

	c.mu.Lock()
	c.includes[key] = includeEntry{observedMTime: mtime, firstInclude: text, hasInclude: found}
	c.mu.Unlock()
	atomic.StoreInt32(&c.dirty, 1)

	return text, found, nil
}

// ReflectionMarker reports whether item contains a reflection-system
// markup macro (U(CLASS|STRUCT|ENUM|INTERFACE|DELEGATE)) at the start of a
// line, with the same mtime-gated re-parse rule as FirstInclude.
func (c *Cache) ReflectionMarker(item vfs.FileItem) (bool, error) {
	scope := c.resolve(item)
	return scope.reflectionMarkerLocal(item)
}

func (c *Cache) reflectionMarkerLocal(item vfs.FileItem) (bool, error) {
	key := item.Path.String()
	mtime := item.ModTime().Unix()

	c.mu.Lock()
	if e, ok := c.markups[key]; ok && e.observedMTime >= mtime {
		c.mu.Unlock()
		return e.containsMarkup, nil
	}
	c.mu.Unlock()

	marked, err := parseReflectionMarker(item)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.markups[key] = markupEntry{observedMTime: mtime, containsMarkup: marked}
	c.mu.Unlock()
	atomic.StoreInt32(&c.dirty, 1)

	return marked, nil
}

func (c *Cache) Dirty() bool {
	return atomic.LoadInt32(&c.dirty) != 0
}

func (c *Cache) clearDirty() {
	atomic.StoreInt32(&c.dirty, 0)
}
