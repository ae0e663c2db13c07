package driver

import (
	"io"
	"os"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/outlaybuild/forge/graph"
)

// tracePhase is the Chrome trace-event phase vocabulary, trimmed to the two
// phases a flat begin/end action timeline actually needs.
type tracePhase string

const (
	tracePhaseBegin tracePhase = "B"
	tracePhaseEnd   tracePhase = "E"
)

type traceEvent struct {
	Name      string     `json:"name"`
	Category  string     `json:"cat"`
	Phase     tracePhase `json:"ph"`
	Timestamp int64      `json:"ts"`
	Pid       int        `json:"pid"`
	Tid       int        `json:"tid"`
}

// traceFile is the top-level https://chromium docs "trace event format"
// document.
type traceFile struct {
	TraceEvents     []traceEvent `json:"traceEvents"`
	DisplayTimeUnit string       `json:"displayTimeUnit"`
}

// WriteChromeTrace exports actions as a Chrome-tracing-compatible timeline,
// one begin/end event pair per action, timestamped in microseconds since
// the earliest action's start. Actions are assigned a synthetic thread id
// by a greedy interval assignment (assignTracks) so overlapping actions land
// on distinct tracks, since forge's executors don't expose a real OS thread
// id per action.
func WriteChromeTrace(w io.Writer, actions []*graph.Action) error {
	pid := os.Getpid()

	withTiming := make([]*graph.Action, 0, len(actions))
	for _, a := range actions {
		if !a.EndTime.IsZero() {
			withTiming = append(withTiming, a)
		}
	}
	sort.Slice(withTiming, func(i, j int) bool {
		return withTiming[i].StartTime.Before(withTiming[j].StartTime)
	})

	var epoch int64
	if len(withTiming) > 0 {
		epoch = withTiming[0].StartTime.UnixMicro()
	}

	tids := assignTracks(withTiming)

	doc := traceFile{DisplayTimeUnit: "ms"}
	for _, a := range withTiming {
		tid := tids[a]
		doc.TraceEvents = append(doc.TraceEvents,
			traceEvent{Name: a.String(), Category: a.Kind.String(), Phase: tracePhaseBegin, Timestamp: a.StartTime.UnixMicro() - epoch, Pid: pid, Tid: tid},
			traceEvent{Name: a.String(), Category: a.Kind.String(), Phase: tracePhaseEnd, Timestamp: a.EndTime.UnixMicro() - epoch, Pid: pid, Tid: tid},
		)
	}

	return json.NewEncoder(w).Encode(doc)
}

// assignTracks gives each action a synthetic track (Tid) such that no two
// actions sharing a track overlap in time, a simple interval-scheduling
// greedy assignment standing in for a real thread id.
func assignTracks(sortedByStart []*graph.Action) map[*graph.Action]int {
	var trackFree []time.Time
	assignment := make(map[*graph.Action]int, len(sortedByStart))
	for _, a := range sortedByStart {
		placed := false
		for i, free := range trackFree {
			if !free.After(a.StartTime) {
				assignment[a] = i
				trackFree[i] = a.EndTime
				placed = true
				break
			}
		}
		if !placed {
			assignment[a] = len(trackFree)
			trackFree = append(trackFree, a.EndTime)
		}
	}
	return assignment
}
