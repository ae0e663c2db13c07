package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/outlaybuild/forge/driver"
	"github.com/outlaybuild/forge/exec"
	"github.com/outlaybuild/forge/graph"
	"github.com/outlaybuild/forge/internal/base"
	"github.com/outlaybuild/forge/vfs"
)

// Exit codes: success, any non-zero action, and the fatal graph/filesystem
// failures (cycle, conflict, missing link output) all collapse onto the
// same "other compilation error" code.
const (
	exitSuccess               = 0
	exitOtherCompilationError = 6
)

var LogCmd = base.NewLogCategory("Forge")

// buildFlags holds the knobs that are genuinely specific to this one
// invocation (which graph to load, which outputs, where to write reports).
// Executor selection and orchestration knobs live in exec.Flags/driver.Flags
// instead and bind to the same cobra flag set through pflagVisitor, so
// neither package needs to know cobra exists.
type buildFlags struct {
	graphFile   string
	engineRoot  string
	projectRoot string
	outputs     []string

	chromeTraceFile   string
	compilationDBFile string
	graphVizFile      string
	statsOut          bool

	exec   *exec.Flags
	driver *driver.Flags
}

func newBuildCommand() *cobra.Command {
	flags := &buildFlags{exec: exec.NewFlags(), driver: driver.NewFlags()}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "link and execute an action graph exported as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(flags)
		},
	}

	f := cmd.Flags()
	v := pflagVisitor{set: f}
	f.StringVar(&flags.graphFile, "graph", "", "path to the action-graph JSON document (required)")
	f.StringVar(&flags.engineRoot, "engine-root", ".", "engine scope root directory")
	f.StringVar(&flags.projectRoot, "project-root", ".", "project scope root directory")
	f.StringSliceVar(&flags.outputs, "output", nil, "requested produced-item path (repeatable); empty builds the whole graph")
	f.StringVar(&flags.chromeTraceFile, "chrome-trace", "", "write a Chrome-tracing timeline to this path")
	f.StringVar(&flags.compilationDBFile, "compile-commands", "", "write a compile_commands.json-shaped database to this path")
	f.StringVar(&flags.graphVizFile, "graphviz", "", "write a GraphViz .dot rendering of the linked graph to this path")
	f.BoolVar(&flags.statsOut, "stats", false, "print a build-statistics summary on completion")
	flags.exec.Visit(v)
	flags.driver.Visit(v)
	cmd.MarkFlagRequired("graph")

	return cmd
}

func runBuild(flags *buildFlags) error {
	registry := vfs.NewRegistry()

	f, err := os.Open(flags.graphFile)
	if err != nil {
		return fmt.Errorf("forge: %w", err)
	}
	actions, err := graph.ReadJSON(f, registry)
	f.Close()
	if err != nil {
		return fmt.Errorf("forge: %w", err)
	}

	scope, err := driver.LoadScope(vfs.MakeDirectory(flags.engineRoot), vfs.MakeDirectory(flags.projectRoot), flags.driver.CacheDirName)
	if err != nil {
		return fmt.Errorf("forge: %w", err)
	}

	opts := driver.Options{
		Registry:                   registry,
		Scope:                      scope,
		RequestedOutputs:           flags.outputs,
		IgnoreImportLibraryChanges: flags.driver.IgnoreImportLibraryChanges,
		LogDetailedStats:           flags.driver.LogDetailedStats,
		Selection:                  flags.exec.SelectionOptions(),
	}

	result, runErr := driver.Run(opts, actions)

	var cycle *graph.CycleError
	if flags.graphVizFile != "" {
		graphActions := actions
		highlight := map[*graph.Action]bool{}
		if errors.As(runErr, &cycle) {
			graphActions = cycle.Actions
			for _, a := range cycle.Actions {
				highlight[a] = true
			}
		} else if result != nil {
			graphActions = result.Graph.Actions
		}
		if err := writeToFile(flags.graphVizFile, func(w *os.File) error {
			return graph.WriteGraphViz(w, graphActions, highlight)
		}); err != nil {
			base.LogWarning(LogCmd, "could not write graphviz dump: %v", err)
		}
	}

	if result != nil {
		if flags.chromeTraceFile != "" {
			if err := writeToFile(flags.chromeTraceFile, func(w *os.File) error {
				return driver.WriteChromeTrace(w, result.Executed)
			}); err != nil {
				base.LogWarning(LogCmd, "could not write chrome trace: %v", err)
			}
		}
		if flags.compilationDBFile != "" {
			if err := writeToFile(flags.compilationDBFile, func(w *os.File) error {
				return graph.WriteCompilationDatabase(w, result.Graph.Actions)
			}); err != nil {
				base.LogWarning(LogCmd, "could not write compilation database: %v", err)
			}
		}
		if flags.statsOut {
			base.LogInfo(LogCmd, "%s", result.Stats.String())
		}
	}

	var conflict *graph.ConflictError
	var missing *graph.MissingLinkOutputError
	switch {
	case errors.As(runErr, &cycle):
		base.LogError(LogCmd, "%v", cycle)
		os.Exit(exitOtherCompilationError)
	case errors.As(runErr, &conflict):
		base.LogError(LogCmd, "%v", conflict)
		os.Exit(exitOtherCompilationError)
	case errors.As(runErr, &missing):
		base.LogError(LogCmd, "%v", missing)
		os.Exit(exitOtherCompilationError)
	}
	if runErr != nil {
		base.LogError(LogCmd, "%v", runErr)
		os.Exit(exitOtherCompilationError)
	}

	os.Exit(exitSuccess)
	return nil
}

func writeToFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}
