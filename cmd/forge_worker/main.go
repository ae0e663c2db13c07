// Command forge_worker hosts one distributed-farm participant: a websocket
// job endpoint (cluster.Worker) plus a WebDAV artifact staging endpoint
// (cluster.ArtifactServer), built over net/http + spf13/cobra instead of a
// CommandEnv-style framework (DESIGN.md ADR-1).
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/outlaybuild/forge/cluster"
	"github.com/outlaybuild/forge/internal/base"
)

var LogWorker = base.NewLogCategory("Worker")

func newWorkerCommand() *cobra.Command {
	var addr, stagingDir string

	cmd := &cobra.Command{
		Use:   "forge_worker",
		Short: "listen for distributed build jobs and execute them locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(addr, stagingDir)
		},
	}

	cmd.Flags().StringVar(&addr, "listen", ":9871", "address to listen on")
	cmd.Flags().StringVar(&stagingDir, "staging-dir", ".forge-staging", "directory staging artifacts exchanged over WebDAV")

	return cmd
}

func serve(addr, stagingDir string) error {
	identity, err := cluster.NewPeerIdentity()
	if err != nil {
		return fmt.Errorf("forge_worker: %w", err)
	}

	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return fmt.Errorf("forge_worker: %w", err)
	}

	worker := cluster.NewWorker(identity)
	artifacts := cluster.NewArtifactServer(stagingDir)

	mux := http.NewServeMux()
	mux.HandleFunc("/forge/v1", worker.ServeHTTP)
	mux.Handle("/forge/artifacts/", artifacts)

	base.LogInfo(LogWorker, "worker %v listening on %s (artifacts at %s)", identity, addr, artifacts.Endpoint(addr))
	return http.ListenAndServe(addr, mux)
}

func main() {
	if err := newWorkerCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
