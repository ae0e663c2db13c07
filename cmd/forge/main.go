// Command forge is the build driver's command-line entrypoint: it loads an
// action graph exported by an upstream project generator, runs it through
// the driver algorithm, and reports build status with fixed exit codes.
// Built on spf13/cobra rather than a CommandEnv/CommandContext framework,
// since this module deliberately narrows away the generic buildable-graph
// machinery such a framework would serve (DESIGN.md ADR-1).
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newForgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forge",
		Short: "forge builds a linked action graph of native compilation steps",
	}
	cmd.AddCommand(newBuildCommand())
	return cmd
}

func main() {
	if err := newForgeCommand().Execute(); err != nil {
		os.Exit(exitOtherCompilationError)
	}
}
