package sourcemeta

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/danjacques/gofslock/fslock"

	"github.com/outlaybuild/forge/internal/base"
)

// Load reads the versioned binary format from the cache's storage file. A
// missing file or version mismatch is treated as an empty cache: logged,
// never fatal.
func (c *Cache) Load(category *base.LogCategory) error {
	path := c.store.String()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	cr, err := base.NewCompressedReader(f, c.Compression)
	if err != nil {
		return err
	}
	defer cr.Close()

	ar := base.NewArchiveBinaryReader(cr)
	var version int32
	ar.Int32(&version)
	if ar.Error() != nil {
		base.LogWarning(category, "sourcemeta: %s is truncated, starting empty: %v", path, ar.Error())
		return nil
	}
	if version != cacheFormatVersion {
		base.LogWarning(category, "sourcemeta: %s has version %d, expected %d, starting empty", path, version, cacheFormatVersion)
		return nil
	}

	var includeCount int32
	ar.Int32(&includeCount)
	includes := make(map[string]includeEntry, includeCount)
	for i := int32(0); i < includeCount; i++ {
		var key string
		var e includeEntry
		ar.String(&key)
		ar.Int64(&e.observedMTime)
		ar.Bool(&e.hasInclude)
		if e.hasInclude {
			ar.String(&e.firstInclude)
		}
		includes[key] = e
	}

	var markupCount int32
	ar.Int32(&markupCount)
	markups := make(map[string]markupEntry, markupCount)
	for i := int32(0); i < markupCount; i++ {
		var key string
		var e markupEntry
		ar.String(&key)
		ar.Int64(&e.observedMTime)
		ar.Bool(&e.containsMarkup)
		markups[key] = e
	}

	if ar.Error() != nil {
		base.LogWarning(category, "sourcemeta: %s failed mid-read, starting empty: %v", path, ar.Error())
		return nil
	}

	c.mu.Lock()
	c.includes = includes
	c.markups = markups
	c.mu.Unlock()
	return nil
}

// Save persists the cache to its storage file with an atomic
// temp-file-then-rename replace, guarded by a cross-process exclusive lock
// (gofslock) so two build processes sharing a cache directory never
// interleave writes -- forge's farm workers can share a cache mount.
func (c *Cache) Save() error {
	if !c.Dirty() {
		return nil
	}

	path := c.store.String()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lock, err := fslock.Lock(path + ".lock")
	if err != nil {
		return fmt.Errorf("sourcemeta: could not acquire save lock for %s: %w", path, err)
	}
	defer lock.Unlock()

	tmp := path + fmt.Sprintf(".tmp-%d", time.Now().UnixNano())
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	cw, err := base.NewCompressedWriter(f, c.Compression)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	c.mu.Lock()
	ar := base.NewArchiveBinaryWriter(cw)
	version := cacheFormatVersion
	ar.Int32(&version)

	includeCount := int32(len(c.includes))
	ar.Int32(&includeCount)
	for key, e := range c.includes {
		k := key
		ar.String(&k)
		ar.Int64(&e.observedMTime)
		ar.Bool(&e.hasInclude)
		if e.hasInclude {
			ar.String(&e.firstInclude)
		}
	}

	markupCount := int32(len(c.markups))
	ar.Int32(&markupCount)
	for key, e := range c.markups {
		k := key
		ar.String(&k)
		ar.Int64(&e.observedMTime)
		ar.Bool(&e.containsMarkup)
	}
	err = ar.Error()
	c.mu.Unlock()

	if cerr := cw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	c.clearDirty()
	return nil
}
