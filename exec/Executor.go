package exec

import "github.com/outlaybuild/forge/graph"

// Executor is the common contract every backend (Local, Farm, Hybrid)
// implements: run every stale action to ground, report whether any action
// failed. Individual action results are recorded directly onto the
// *graph.Action values so the driver can inspect them after Execute returns:
// the local backend sets ExitCode, Skipped and Start/EndTime; the farm
// backend sets only ExitCode for the actions it dispatched remotely.
type Executor interface {
	Execute(actions []*graph.Action, logDetailedStats bool) bool
}

// Stats accumulates per-run counters. No executor in this package updates
// one; the driver's build summary is computed from the Action fields instead.
type Stats struct {
	Total, Built, UpToDate, Failed, Skipped int
}

func (s *Stats) recordSkip()    { s.Skipped++; s.Total++ }
func (s *Stats) recordBuilt()   { s.Built++; s.Total++ }
func (s *Stats) recordFailed()  { s.Failed++; s.Total++ }
func (s *Stats) recordCurrent() { s.UpToDate++; s.Total++ }
