package cluster

import "github.com/google/uuid"

// ActionPayload is the wire shape of one graph.Action shipped to a worker:
// everything the worker needs to re-run the command line and report back,
// deliberately excluding derived/local-only fields (PrerequisiteActions,
// TotalDependentActions) that have no meaning off-host.
type ActionPayload struct {
	Index              int      `json:"index"`
	Kind               string   `json:"kind"`
	WorkingDirectory   string   `json:"workingDirectory"`
	CommandPath        string   `json:"commandPath"`
	CommandArguments   string   `json:"commandArguments"`
	CommandDescription string   `json:"commandDescription"`
	ProducedItems      []string `json:"producedItems"`
}

// JobRequest bundles one batch of remotely-eligible actions under a single
// correlation ID -- the farm executor builds one script per batch, not one
// RPC per node, so the payload is batch-shaped rather than per-action.
type JobRequest struct {
	ID      uuid.UUID       `json:"id"`
	Actions []ActionPayload `json:"actions"`
}

// ActionResult reports one action's outcome back to the dispatching peer.
type ActionResult struct {
	Index    int    `json:"index"`
	ExitCode int    `json:"exitCode"`
	Output   string `json:"output"`
	Err      string `json:"err,omitempty"`
}

// JobResult answers a JobRequest once every bundled action has run (or been
// skipped because an earlier one in the same batch failed).
type JobResult struct {
	ID      uuid.UUID      `json:"id"`
	Results []ActionResult `json:"results"`
}
