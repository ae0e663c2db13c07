package driver

import (
	"bufio"
	"bytes"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/outlaybuild/forge/internal/base"
)

var LogSourceControl = base.NewLogCategory("SourceControl")

// DirtyFiles runs `git status --porcelain` against repoRoot and returns the
// set of locally-modified or untracked absolute paths as a membership set,
// not per-file state detail -- that's all staleness checks need. A repo
// with no git binary or no .git directory reports an empty, non-fatal set:
// an absent VCS degrades gracefully rather than failing the build.
func DirtyFiles(repoRoot string) (map[string]bool, error) {
	dirty := make(map[string]bool)

	if _, err := exec.LookPath("git"); err != nil {
		base.LogVerbose(LogSourceControl, "git not found in PATH, treating %q as having no dirty files", repoRoot)
		return dirty, nil
	}

	cmd := exec.Command("git", "--no-optional-locks", "status", "--porcelain", "-s")
	cmd.Dir = repoRoot
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		base.LogVerbose(LogSourceControl, "%q is not a git repository, treating as having no dirty files: %v", repoRoot, err)
		return dirty, nil
	}

	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 4 {
			continue
		}
		status := line[:2]
		if status == " D" {
			continue // deleted files carry nothing to exclude from a cache
		}
		path := filepath.Join(repoRoot, strings.TrimSpace(line[3:]))
		dirty[path] = true
	}
	return dirty, scanner.Err()
}

// ExcludeDirty filters items against dirty (absolute path -> true): a
// remote farm must never serve a cached artifact derived from a file that
// has local, uncommitted modifications, since other farm clients would
// not see the same source content.
func ExcludeDirty(items []string, dirty map[string]bool) []string {
	if len(dirty) == 0 {
		return items
	}
	clean := make([]string, 0, len(items))
	for _, it := range items {
		if !dirty[it] {
			clean = append(clean, it)
		}
	}
	return clean
}
