package driver

import (
	"fmt"
	"sort"
	"time"

	"github.com/outlaybuild/forge/graph"
)

// Stats is a build-statistics summary: per-kind wall-clock totals plus a
// most-expensive-actions report, built from the flat per-Action timings a
// pre-linked batch executor records (no inclusive/exclusive bookkeeping --
// nothing here runs child actions inline).
type Stats struct {
	Total, Built, UpToDate, Failed, Skipped int

	TotalDuration time.Duration
	ByKind        map[graph.Kind]time.Duration

	actions []*graph.Action
}

// Summarize builds a Stats snapshot from a batch of already-executed
// actions (Action.StartTime/EndTime/ExitCode/Skipped must be populated).
func Summarize(actions []*graph.Action) Stats {
	s := Stats{ByKind: make(map[graph.Kind]time.Duration)}
	for _, a := range actions {
		s.actions = append(s.actions, a)
		switch {
		case a.Skipped:
			s.Skipped++
		case a.ExitCode != 0:
			s.Failed++
		default:
			s.Built++
		}
		s.Total++

		d := a.EndTime.Sub(a.StartTime)
		if d > 0 {
			s.TotalDuration += d
			s.ByKind[a.Kind] += d
		}
	}
	return s
}

// MostExpensive returns up to n actions with the longest wall-clock
// duration, longest first.
func (s Stats) MostExpensive(n int) []*graph.Action {
	sorted := append([]*graph.Action(nil), s.actions...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EndTime.Sub(sorted[i].StartTime) > sorted[j].EndTime.Sub(sorted[j].StartTime)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// String renders a human-readable summary: total duration, per-kind
// breakdown, top expensive actions.
func (s Stats) String() string {
	out := fmt.Sprintf("built %d, up-to-date %d, failed %d, skipped %d (%d total) in %.3fs",
		s.Built, s.UpToDate, s.Failed, s.Skipped, s.Total, s.TotalDuration.Seconds())
	for _, k := range sortedKinds(s.ByKind) {
		out += fmt.Sprintf("\n  %-16s %.3fs", k.String(), s.ByKind[k].Seconds())
	}
	return out
}

func sortedKinds(byKind map[graph.Kind]time.Duration) []graph.Kind {
	kinds := make([]graph.Kind, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return byKind[kinds[i]] > byKind[kinds[j]] })
	return kinds
}
