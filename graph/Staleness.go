package graph

import (
	"sync"
	"time"

	"github.com/outlaybuild/forge/depcache"
	"github.com/outlaybuild/forge/history"
	"github.com/outlaybuild/forge/vfs"
)

// StalenessOptions bundles the caches and flags staleness analysis needs:
// the command-line history, the dependency-manifest cache, and the
// ignore-import-library-changes flag.
type StalenessOptions struct {
	History                    *history.History
	Dependencies               *depcache.Cache
	IgnoreImportLibraryChanges bool
}

// staleState memoises one action's staleness verdict behind a sync.Once, so
// concurrent callers resolving the same prerequisite (shared by two
// dependents) compute it exactly once and everyone else just waits.
type staleState struct {
	once  sync.Once
	stale bool
	err   error
}

// AnalyzeStaleness runs the full staleness pass, parallelised per action,
// with dependency manifests pre-parsed concurrently first to warm the
// dependency cache before the main pass. A prerequisite action's own stale
// verdict is resolved recursively (memoised, not recomputed) so that a
// stale leaf action correctly propagates staleness up through every action
// that transitively depends on it -- the graph is already known acyclic by
// the time this runs, so the recursion always terminates.
func (g *Graph) AnalyzeStaleness(opts StalenessOptions) (map[*Action]bool, error) {
	g.warmDependencyManifests(opts)

	state := make(map[*Action]*staleState, len(g.Actions))
	for _, a := range g.Actions {
		state[a] = &staleState{}
	}

	var wg sync.WaitGroup
	for _, a := range g.Actions {
		a := a
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.resolveStaleness(a, opts, state)
		}()
	}
	wg.Wait()

	out := make(map[*Action]bool, len(state))
	for a, s := range state {
		if s.err != nil {
			return nil, s.err
		}
		out[a] = s.stale
	}
	return out, nil
}

// resolveStaleness returns a's memoised staleness verdict, computing it (and
// recursively, any unresolved prerequisite's verdict) at most once.
func (g *Graph) resolveStaleness(a *Action, opts StalenessOptions, state map[*Action]*staleState) (bool, error) {
	s := state[a]
	s.once.Do(func() {
		s.stale, s.err = g.actionIsStale(a, opts, state)
	})
	return s.stale, s.err
}

func (g *Graph) warmDependencyManifests(opts StalenessOptions) {
	if opts.Dependencies == nil {
		return
	}
	var wg sync.WaitGroup
	for _, a := range g.Actions {
		if a.DependencyListFile == nil {
			continue
		}
		a := a
		wg.Add(1)
		go func() {
			defer wg.Done()
			opts.Dependencies.Get(*a.DependencyListFile)
		}()
	}
	wg.Wait()
}

const staleSlop = time.Second

func (g *Graph) actionIsStale(a *Action, opts StalenessOptions, state map[*Action]*staleState) (bool, error) {
	lastExecution := effectiveLastExecutionTime(a)

	for _, produced := range a.ProducedItems {
		changed := true
		if opts.History != nil {
			changed = opts.History.UpdateProducingCommandLine(produced, a.CommandPath, a.CommandArguments)
		}
		if changed {
			return true, nil
		}

		if !produced.Exists() {
			return true, nil
		}
		if produced.Size() == 0 && !(a.Kind == KindCompile && isCompileObjectExt(produced)) {
			return true, nil // a zero-length output is otherwise treated like a missing one
		}
	}

	for _, prereq := range a.PrerequisiteActions {
		if importLibraryExempt(a, prereq, opts) {
			continue
		}
		stale, err := g.resolveStaleness(prereq, opts, state)
		if err != nil {
			return false, err
		}
		if stale {
			return true, nil
		}
	}

	for _, item := range a.PrerequisiteItems {
		if item.ModTime().After(lastExecution.Add(staleSlop)) {
			if producer, ok := g.producer[item.Path.String()]; ok && importLibraryExempt(a, producer, opts) {
				continue
			}
			return true, nil
		}
	}

	if a.DependencyListFile != nil && opts.Dependencies != nil {
		items, ok, err := opts.Dependencies.Get(*a.DependencyListFile)
		if err != nil {
			return false, err
		}
		if !ok {
			return true, nil // missing manifest: unknown dependencies, must rebuild
		}
		for _, item := range items {
			if !item.Exists() || item.ModTime().After(lastExecution.Add(staleSlop)) {
				return true, nil
			}
		}
	}

	return false, nil
}

// effectiveLastExecutionTime is the minimum mtime over existing produced
// items -- taking the oldest ensures a partially-built output set is
// treated as not-yet-run.
func effectiveLastExecutionTime(a *Action) time.Time {
	var oldest time.Time
	for _, item := range a.ProducedItems {
		if !item.Exists() {
			return time.Time{} // zero value sorts before everything: force staleness
		}
		mtime := item.ModTime()
		if oldest.IsZero() || mtime.Before(oldest) {
			oldest = mtime
		}
	}
	return oldest
}

// importLibraryExempt implements the ignore_import_library_changes
// exception: a prerequisite whose only produced outputs are .lib files that
// the dependent action does not actually consume does not propagate
// staleness.
func importLibraryExempt(a, prereq *Action, opts StalenessOptions) bool {
	if !opts.IgnoreImportLibraryChanges || !prereq.ProducesOnly(".lib") {
		return false
	}
	for _, produced := range prereq.ProducedItems {
		for _, consumed := range a.PrerequisiteItems {
			if produced.Path.Equals(consumed.Path) {
				return false // actually consumed, exception does not apply
			}
		}
	}
	return true
}

func isCompileObjectExt(item vfs.FileItem) bool {
	ext := item.Path.Ext()
	return ext == ".obj" || ext == ".o"
}
