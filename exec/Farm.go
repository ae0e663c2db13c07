package exec

import (
	"github.com/google/uuid"

	"github.com/outlaybuild/forge/cluster"
	"github.com/outlaybuild/forge/graph"
	"github.com/outlaybuild/forge/internal/base"
)

// FarmExecutor dispatches every remotely-eligible action as a single batch
// over one cluster.Tunnel connection and falls back to a LocalExecutor for
// the rest: it sends the remotely-eligible actions as one cluster.JobRequest,
// waits for a single JobResult and copies each returned exit code onto its
// action. It writes no script file and spawns no local farm driver process.
// Remotely-ineligible actions, and every action when the dispatch itself
// fails, run on the local executor.
type FarmExecutor struct {
	Addr  string
	Local *LocalExecutor
}

func NewFarmExecutor(addr string, local *LocalExecutor) *FarmExecutor {
	return &FarmExecutor{Addr: addr, Local: local}
}

func (f *FarmExecutor) Execute(actions []*graph.Action, logDetailedStats bool) bool {
	var remote, local []*graph.Action
	for _, a := range actions {
		if a.CanExecuteRemotely {
			remote = append(remote, a)
		} else {
			local = append(local, a)
		}
	}

	success := true
	if len(remote) > 0 {
		if err := f.dispatch(remote); err != nil {
			base.LogError(LogExec, "farm dispatch to %q failed, falling back to local execution: %v", f.Addr, err)
			local = append(local, remote...)
		} else {
			for _, a := range remote {
				if a.ExitCode != 0 {
					success = false
				}
			}
		}
	}

	if len(local) > 0 && f.Local != nil {
		if !f.Local.Execute(local, logDetailedStats) {
			success = false
		}
	}
	return success
}

func (f *FarmExecutor) dispatch(actions []*graph.Action) error {
	tunnel, err := cluster.DialTunnel(f.Addr)
	if err != nil {
		return err
	}
	defer tunnel.Close()

	job := cluster.JobRequest{ID: uuid.New(), Actions: make([]cluster.ActionPayload, len(actions))}
	for i, a := range actions {
		job.Actions[i] = cluster.ActionPayload{
			Index:              i,
			Kind:               a.Kind.String(),
			WorkingDirectory:   a.WorkingDirectory,
			CommandPath:        a.CommandPath,
			CommandArguments:   a.CommandArguments,
			CommandDescription: a.CommandDescription,
		}
	}

	if err := tunnel.SendJob(job); err != nil {
		return err
	}
	result, err := tunnel.RecvResult()
	if err != nil {
		return err
	}

	for _, r := range result.Results {
		if r.Index < 0 || r.Index >= len(actions) {
			continue
		}
		a := actions[r.Index]
		a.ExitCode = r.ExitCode
		if r.Err != "" && r.ExitCode == 0 {
			a.ExitCode = -1
		}
	}
	return nil
}
