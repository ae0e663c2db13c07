package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/danjacques/gofslock/fslock"

	"github.com/outlaybuild/forge/internal/base"
)

const historyFormatVersion int32 = 2

// Load reads the versioned history format: an Int32 version, then a
// FileItem → 16-byte MD5 dictionary. A version mismatch or truncated file
// is logged and treated as empty, never fatal.
func (h *History) Load(category *base.LogCategory) error {
	path := h.store.String()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	cr, err := base.NewCompressedReader(f, h.Compression)
	if err != nil {
		return err
	}
	defer cr.Close()

	ar := base.NewArchiveBinaryReader(cr)
	var version int32
	ar.Int32(&version)
	if ar.Error() != nil {
		base.LogWarning(category, "history: %s is truncated, starting empty: %v", path, ar.Error())
		return nil
	}
	if version != historyFormatVersion {
		base.LogWarning(category, "history: %s has version %d, expected %d, starting empty", path, version, historyFormatVersion)
		return nil
	}

	var count int32
	ar.Int32(&count)
	entries := make(map[string]Digest, count)
	for i := int32(0); i < count; i++ {
		var key string
		var digest Digest
		ar.String(&key)
		ar.Raw(digest[:])
		entries[key] = digest
	}

	if ar.Error() != nil {
		base.LogWarning(category, "history: %s failed mid-read, starting empty: %v", path, ar.Error())
		return nil
	}

	h.mu.Lock()
	h.entries = entries
	h.mu.Unlock()
	return nil
}

// Save persists the table with an atomic temp-file-then-rename replace,
// guarded by a cross-process gofslock so a farm worker sharing a history
// file with the coordinator never tears a concurrent write.
func (h *History) Save() error {
	if !h.Dirty() {
		return nil
	}

	path := h.store.String()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lock, err := fslock.Lock(path + ".lock")
	if err != nil {
		return fmt.Errorf("history: could not acquire save lock for %s: %w", path, err)
	}
	defer lock.Unlock()

	tmp := path + fmt.Sprintf(".tmp-%d", time.Now().UnixNano())
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	cw, err := base.NewCompressedWriter(f, h.Compression)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	h.mu.Lock()
	ar := base.NewArchiveBinaryWriter(cw)
	version := historyFormatVersion
	ar.Int32(&version)

	count := int32(len(h.entries))
	ar.Int32(&count)
	for key, digest := range h.entries {
		k := key
		d := digest
		ar.String(&k)
		ar.Raw(d[:])
	}
	err = ar.Error()
	h.dirty = false
	h.mu.Unlock()

	if cerr := cw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		h.mu.Lock()
		h.dirty = true
		h.mu.Unlock()
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		h.mu.Lock()
		h.dirty = true
		h.mu.Unlock()
		return err
	}

	return nil
}
