package cluster

import (
	"context"
	"net/http"

	"github.com/outlaybuild/forge/exec"
	"github.com/outlaybuild/forge/graph"
	"github.com/outlaybuild/forge/internal/base"
)

// Worker services JobRequests over an accepted Tunnel, narrowed to
// forge's batch-of-Actions payload (DESIGN.md).
type Worker struct {
	Identity PeerIdentity
}

func NewWorker(identity PeerIdentity) *Worker {
	return &Worker{Identity: identity}
}

// ServeHTTP upgrades the connection and services jobs until the tunnel
// closes, suitable for mounting on an http.ServeMux at "/forge/v1".
func (w *Worker) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	tunnel, err := AcceptTunnel(rw, r)
	if err != nil {
		base.LogError(LogCluster, "worker %v: upgrade failed: %v", w.Identity, err)
		return
	}
	defer tunnel.Close()

	for {
		job, err := tunnel.RecvJob()
		if err != nil {
			return // peer disconnected
		}
		base.LogVerbose(LogCluster, "worker %v: received job %s with %d action(s)", w.Identity, job.ID, len(job.Actions))

		result := w.run(job)
		if err := tunnel.SendResult(result); err != nil {
			base.LogError(LogCluster, "worker %v: failed to send result for job %s: %v", w.Identity, job.ID, err)
			return
		}
	}
}

// run executes every action in the batch sequentially against the local
// host, in payload order -- the farm dispatches one script per batch, so
// ordering within a batch mirrors what a single local script would do.
func (w *Worker) run(job JobRequest) JobResult {
	result := JobResult{ID: job.ID, Results: make([]ActionResult, len(job.Actions))}
	failed := false

	for i, payload := range job.Actions {
		if failed {
			result.Results[i] = ActionResult{Index: payload.Index, ExitCode: -1, Err: "skipped: earlier action in batch failed"}
			continue
		}

		kind, _ := graph.ParseKind(payload.Kind)
		a := &graph.Action{
			Kind:             kind,
			WorkingDirectory: payload.WorkingDirectory,
			CommandPath:      payload.CommandPath,
			CommandArguments: payload.CommandArguments,
		}

		exitCode, output, err := exec.RunCommand(context.Background(), a)
		ar := ActionResult{Index: payload.Index, ExitCode: exitCode, Output: output}
		if err != nil {
			ar.Err = err.Error()
			failed = true
		}
		result.Results[i] = ar
	}

	return result
}
