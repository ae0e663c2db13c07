// Package history implements ActionHistory: a persistent
// map<FileItem, 16-byte MD5> recording the command line that last produced
// each tracked file, used by the action graph to detect "the command
// changed" staleness, over the exact case-folded-UTF-16 MD5 wire format the
// on-disk layout mandates -- that contract is preserved byte-for-byte,
// distinct from a zip-bulk cache-artifact format that would solve a
// different problem (cached build outputs, not command-line change
// detection).
package history

import (
	"crypto/md5"
	"strings"
	"sync"
	"unicode"
	"unicode/utf16"

	fbase "github.com/outlaybuild/forge/internal/base"
	"github.com/outlaybuild/forge/vfs"
)

// Digest is the 16-byte MD5 fixed-length hash stored per tracked item.
type Digest [md5.Size]byte

// History is one scope's command-line fingerprint table (engine or
// project). A lookup for an item outside Base delegates to Parent, exactly
// mirroring the engine/project routing sourcemeta.Cache uses: both caches
// share the same hierarchical layout, routing to the appropriate scope by
// path containment.
type History struct {
	mu      sync.Mutex
	base    vfs.Directory
	store   vfs.Filename
	entries map[string]Digest
	dirty   bool

	Parent      *History
	Compression fbase.CompressionFormat
}

func NewHistory(base vfs.Directory, store vfs.Filename, parent *History) *History {
	return &History{
		base:        base,
		store:       store,
		entries:     make(map[string]Digest),
		Parent:      parent,
		Compression: fbase.COMPRESSION_FORMAT_LZ4,
	}
}

func (h *History) owns(item vfs.FileItem) bool {
	return h.base.IsParentOf(item.Path.Dirname)
}

func (h *History) resolve(item vfs.FileItem) *History {
	if h.owns(item) || h.Parent == nil {
		return h
	}
	return h.Parent.resolve(item)
}

// UpdateProducingCommandLine computes the fixed-format hash of commandPath
// + " " + commandArguments and compares it against the stored digest for
// item. It writes the new digest and returns true ("command changed") when
// there was no prior entry or the digest differs; otherwise it returns
// false and leaves the store untouched.
func (h *History) UpdateProducingCommandLine(item vfs.FileItem, commandPath, commandArguments string) bool {
	scope := h.resolve(item)
	digest := hashCommandLine(commandPath, commandArguments)

	key := item.Path.String()

	scope.mu.Lock()
	defer scope.mu.Unlock()

	if existing, ok := scope.entries[key]; ok && existing == digest {
		return false
	}
	scope.entries[key] = digest
	scope.dirty = true
	return true
}

func (h *History) Dirty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dirty
}

// hashCommandLine computes MD5 over the case-folded string, encoded as
// UTF-16LE code units -- matching a Windows string hashing convention
// byte-for-byte so a history file remains valid across reimplementations.
func hashCommandLine(commandPath, commandArguments string) Digest {
	folded := strings.Map(unicode.ToUpper, commandPath+" "+commandArguments)
	units := utf16.Encode([]rune(folded))

	buf := make([]byte, 0, len(units)*2)
	for _, u := range units {
		buf = append(buf, byte(u), byte(u>>8))
	}
	return md5.Sum(buf)
}
