package vfs

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/outlaybuild/forge/internal/base"
)

// Prefetcher walks directory trees ahead of the build driver's actual
// need, warming the Registry's stat cache on a bounded worker pool so the
// later hot path (linking, staleness analysis) never blocks on disk IO it
// could have done concurrently.
type Prefetcher struct {
	registry  *Registry
	pool      base.ThreadPool
	wg        sync.WaitGroup
	cancelled int32
}

func NewPrefetcher(registry *Registry, pool base.ThreadPool) *Prefetcher {
	return &Prefetcher{registry: registry, pool: pool}
}

// Cancel requests cooperative early exit: queued walk tasks return without
// reading their directory, and an in-flight task stops before its next
// directory entry.
func (p *Prefetcher) Cancel() {
	atomic.StoreInt32(&p.cancelled, 1)
}

func (p *Prefetcher) cancelled_() bool {
	return atomic.LoadInt32(&p.cancelled) != 0
}

// WalkEngineLayout prefetches the fixed, well-known subtree an engine build
// root always has (e.g. "Source", "Generated", "Intermediate"), skipping
// directories that don't exist rather than erroring -- optional generated-
// output folders shouldn't fail a prefetch.
func (p *Prefetcher) WalkEngineLayout(root Directory, knownSubdirs []string) {
	for _, name := range knownSubdirs {
		sub := root.Folder(name)
		if !p.registry.GetDirectory(sub.String()).Exists() {
			continue
		}
		p.walkAsync(sub)
	}
}

// WalkRecursive prefetches an arbitrary directory tree, used for project
// roots whose layout isn't known in advance.
func (p *Prefetcher) WalkRecursive(root Directory) {
	p.walkAsync(root)
}

func (p *Prefetcher) walkAsync(dir Directory) {
	p.wg.Add(1)
	p.pool.Queue(func(base.ThreadContext) {
		defer p.wg.Done()
		p.walkOne(dir)
	})
}

func (p *Prefetcher) walkOne(dir Directory) {
	if p.cancelled_() {
		return
	}
	item := p.registry.GetDirectory(dir.String())
	if !item.Exists() {
		return
	}

	entries, err := os.ReadDir(dir.String())
	if err != nil {
		return
	}
	for _, e := range entries {
		if p.cancelled_() {
			return
		}
		full := filepath.Join(dir.String(), e.Name())
		if e.IsDir() {
			p.registry.GetDirectory(full)
			p.walkAsync(MakeDirectory(full))
		} else {
			p.registry.GetFile(full).Exists() // force a stat to warm the cache
		}
	}
}

// Wait blocks until every queued walk task (including ones queued by tasks
// themselves, recursively) has drained.
func (p *Prefetcher) Wait() {
	p.wg.Wait()
}
