// Package driver implements the build driver: a thirteen-step orchestration
// algorithm wiring every other component package (vfs, sourcemeta,
// depcache, history, graph, exec, cluster) into one invocation, over a
// concrete Action/FileItem pipeline rather than a generic buildable graph
// (DESIGN.md ADR-1).
package driver

import (
	"fmt"
	"time"

	"github.com/outlaybuild/forge/depcache"
	"github.com/outlaybuild/forge/exec"
	"github.com/outlaybuild/forge/graph"
	"github.com/outlaybuild/forge/history"
	"github.com/outlaybuild/forge/internal/base"
	"github.com/outlaybuild/forge/sourcemeta"
	"github.com/outlaybuild/forge/vfs"
)

var LogDriver = base.NewLogCategory("Driver")

// Scope bundles the engine-and-project pair of persistent caches, with
// hierarchical delegation: project scope falls back to engine scope
// outside its own base directory.
type Scope struct {
	EngineRoot  vfs.Directory
	ProjectRoot vfs.Directory

	EngineMeta, ProjectMeta       *sourcemeta.Cache
	EngineHistory, ProjectHistory *history.History
}

// LoadScope opens (or creates empty) the persistent source-metadata and
// history caches for both the engine and project roots, the project scope
// parented to the engine scope for hierarchical delegation.
func LoadScope(engineRoot, projectRoot vfs.Directory, cacheDirName string) (*Scope, error) {
	s := &Scope{EngineRoot: engineRoot, ProjectRoot: projectRoot}

	s.EngineMeta = sourcemeta.NewCache(engineRoot, engineRoot.File(cacheDirName, "sourcemeta.bin"), nil)
	s.ProjectMeta = sourcemeta.NewCache(projectRoot, projectRoot.File(cacheDirName, "sourcemeta.bin"), s.EngineMeta)

	s.EngineHistory = history.NewHistory(engineRoot, engineRoot.File(cacheDirName, "history.bin"), nil)
	s.ProjectHistory = history.NewHistory(projectRoot, projectRoot.File(cacheDirName, "history.bin"), s.EngineHistory)

	if err := s.EngineMeta.Load(LogDriver); err != nil {
		return nil, err
	}
	if err := s.ProjectMeta.Load(LogDriver); err != nil {
		return nil, err
	}
	if err := s.EngineHistory.Load(LogDriver); err != nil {
		return nil, err
	}
	if err := s.ProjectHistory.Load(LogDriver); err != nil {
		return nil, err
	}
	return s, nil
}

// Persist saves the source-metadata and history caches for both scopes,
// skipping untouched caches.
func (s *Scope) Persist() error {
	if err := s.EngineMeta.Save(); err != nil {
		return err
	}
	if err := s.ProjectMeta.Save(); err != nil {
		return err
	}
	if err := s.EngineHistory.Save(); err != nil {
		return err
	}
	if err := s.ProjectHistory.Save(); err != nil {
		return err
	}
	return nil
}

// Options configures one Run invocation.
type Options struct {
	Registry *vfs.Registry
	Scope    *Scope

	RequestedOutputs []string // absolute produced-item paths; empty means the whole graph

	IgnoreImportLibraryChanges bool
	LogDetailedStats           bool

	Selection exec.SelectionOptions

	KnownEngineSubdirs []string // passed to the C2 prefetcher's engine walk
}

// Result reports the outcome of one Run.
type Result struct {
	Graph     *graph.Graph
	Executed  []*graph.Action
	Stats     Stats
	StartedAt time.Time
	Duration  time.Duration
}

// Run executes the thirteen-step build algorithm against actions,
// returning once every requested output has been built (or the run fails).
func Run(opts Options, actions []*graph.Action) (*Result, error) {
	start := time.Now()

	// Step 1: fire-and-forget C2 prefetch, joined right before link.
	pool := base.GlobalThreadPool()
	prefetcher := vfs.NewPrefetcher(opts.Registry, pool)
	prefetcher.WalkEngineLayout(opts.Scope.EngineRoot, opts.KnownEngineSubdirs)
	prefetcher.WalkRecursive(opts.Scope.ProjectRoot)

	// Steps 2 and 3 are the caller's responsibility: opts.Scope is already
	// loaded, and actions is the received Action list.

	prefetcher.Wait()

	// Step 4: link the graph.
	g, err := graph.Link(actions)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	// Step 5 (conflict detection) happens inside Link itself.

	g.Sort()

	// Step 6: gather the closure of prerequisite actions for the requested
	// outputs; an empty request means "build everything linked".
	working := g.Actions
	if len(opts.RequestedOutputs) > 0 {
		working, err = g.RequestedClosure(opts.RequestedOutputs)
		if err != nil {
			return nil, fmt.Errorf("driver: %w", err)
		}
	}

	// Step 7: compute the stale set.
	depCache := depcache.NewCache(opts.Registry)
	staleness, err := g.AnalyzeStaleness(graph.StalenessOptions{
		History:                    opts.Scope.ProjectHistory,
		Dependencies:               depCache,
		IgnoreImportLibraryChanges: opts.IgnoreImportLibraryChanges,
	})
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}

	var stale []*graph.Action
	for _, a := range working {
		if staleness[a] {
			stale = append(stale, a)
		}
	}

	// Step 8: validate path lengths.
	if err := graph.ValidatePathLengths(stale); err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}

	// Step 9: delete scheduled files, create output directories.
	if err := graph.DeleteScheduled(stale); err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	if err := graph.CreateOutputDirectories(stale); err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}

	result := &Result{Graph: g, Executed: stale, StartedAt: start}

	if len(stale) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	// Step 10: select an executor and invoke it.
	executor := exec.Select(opts.Selection)
	tracker := newInvalidatingExecutor(executor, opts.Registry) // wraps step 11
	ok := tracker.Execute(stale, opts.LogDetailedStats)

	// Step 12: verify every Link action's produced items now exist.
	for _, a := range stale {
		if a.Kind != graph.KindLink || a.Skipped || a.ExitCode != 0 {
			continue
		}
		for _, item := range a.ProducedItems {
			if !item.Exists() {
				return result, &graph.MissingLinkOutputError{Action: a, Item: item.Path.String()}
			}
		}
	}

	result.Stats = Summarize(stale)
	result.Duration = time.Since(start)

	// Step 13: persist C3 and C5 if dirty.
	if err := opts.Scope.Persist(); err != nil {
		return result, fmt.Errorf("driver: %w", err)
	}

	if !ok {
		return result, fmt.Errorf("driver: one or more actions failed")
	}
	return result, nil
}

// invalidatingExecutor wraps an exec.Executor so every produced item of the
// batch is invalidated in the registry once the wrapped Execute returns --
// kept as a thin decorator rather than threading an invalidation callback
// through every Executor implementation. Items are not invalidated one
// action at a time while the batch is still running.
type invalidatingExecutor struct {
	inner    exec.Executor
	registry *vfs.Registry
}

func newInvalidatingExecutor(inner exec.Executor, registry *vfs.Registry) *invalidatingExecutor {
	return &invalidatingExecutor{inner: inner, registry: registry}
}

func (t *invalidatingExecutor) Execute(actions []*graph.Action, logDetailedStats bool) bool {
	ok := t.inner.Execute(actions, logDetailedStats)
	for _, a := range actions {
		for _, item := range a.ProducedItems {
			item.Invalidate()
		}
	}
	return ok
}
