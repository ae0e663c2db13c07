package graph

import (
	"os"
	"runtime"

	"github.com/outlaybuild/forge/internal/base"
)

// maxPathLength is the Windows MAX_PATH-derived hard limit for a produced
// item's path; warnPathBudget is how close to it a path may get before the
// driver just warns instead of failing outright.
const (
	maxPathLength  = 256
	warnPathBudget = 32
)

// ValidatePathLengths is the Windows-only path-length check: fails fast on
// any produced item whose absolute
// path is longer than the MAX_PATH-derived limit, and warns when a path is
// within warnPathBudget characters of it. A no-op on non-Windows platforms,
// where the underlying filesystem does not impose the same ceiling.
func ValidatePathLengths(actions []*Action) error {
	if runtime.GOOS != "windows" {
		return nil
	}
	for _, a := range actions {
		for _, item := range a.ProducedItems {
			path := item.Path.String()
			if len(path) > maxPathLength {
				return &PathLengthError{Path: path, Length: len(path), Limit: maxPathLength}
			}
			if len(path) > maxPathLength-warnPathBudget {
				base.LogWarning(LogGraph, "produced item path %q is %d characters long, within %d of the %d-character limit",
					path, len(path), maxPathLength-len(path), maxPathLength)
			}
		}
	}
	return nil
}

// DeleteScheduled removes every DeleteItems entry of a stale action before
// that action executes. A missing
// file is not an error -- the goal state (absent) already holds.
func DeleteScheduled(actions []*Action) error {
	for _, a := range actions {
		for _, item := range a.DeleteItems {
			if err := os.Remove(item.Path.String()); err != nil && !os.IsNotExist(err) {
				return err
			}
			item.Invalidate()
		}
	}
	return nil
}

// CreateOutputDirectories ensures, for every stale action, that the parent
// directory of each produced item exists before the action runs.
func CreateOutputDirectories(actions []*Action) error {
	seen := make(map[string]bool)
	for _, a := range actions {
		for _, item := range a.ProducedItems {
			dir := item.Path.Dirname.String()
			if seen[dir] {
				continue
			}
			seen[dir] = true
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
	}
	return nil
}
