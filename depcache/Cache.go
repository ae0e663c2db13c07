// Package depcache implements the dependency-list cache: parses a
// compiler-emitted manifest of absolute paths into a []vfs.FileItem,
// memoised by the manifest's own mtime, following sourcemeta's mtime-gated
// map pattern but without persistence -- a dependency manifest is cheap to
// reparse and tied to a single build invocation.
package depcache

import (
	"bufio"
	"os"
	"strings"
	"sync"

	"github.com/outlaybuild/forge/vfs"
)

type entry struct {
	observedMTime int64
	items         []vfs.FileItem
	err           error
}

// Cache memoises manifest → []FileItem by the manifest file's mtime. A
// missing manifest is not cached as an error -- the call site treats it as
// a staleness signal, not as a parse failure the cache should remember.
type Cache struct {
	registry *vfs.Registry
	mu       sync.Mutex
	entries  map[string]entry
}

func NewCache(registry *vfs.Registry) *Cache {
	return &Cache{registry: registry, entries: make(map[string]entry)}
}

// Get returns the dependency list for manifest, re-parsing when the
// manifest's current mtime has advanced past the cached entry's observed
// mtime. ok is false when the manifest does not exist.
func (c *Cache) Get(manifest vfs.FileItem) (items []vfs.FileItem, ok bool, err error) {
	if !manifest.Exists() {
		return nil, false, nil
	}

	key := manifest.Path.String()
	mtime := manifest.ModTime().Unix()

	c.mu.Lock()
	if e, found := c.entries[key]; found && e.observedMTime >= mtime {
		c.mu.Unlock()
		return e.items, true, e.err
	}
	c.mu.Unlock()

	parsed, err := parseManifest(manifest.Path.String())

	items = make([]vfs.FileItem, len(parsed))
	for i, raw := range parsed {
		items[i] = c.registry.GetFile(raw)
	}

	c.mu.Lock()
	c.entries[key] = entry{observedMTime: mtime, items: items, err: err}
	c.mu.Unlock()

	return items, true, err
}

// parseManifest reads the compiler-emitted manifest format: one absolute
// path per line, blank lines and Windows CRLF endings tolerated.
func parseManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths, scanner.Err()
}
