package exec

import (
	"context"
	"sync"
	"time"

	"github.com/outlaybuild/forge/graph"
	"github.com/outlaybuild/forge/internal/base"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// DegreeOfParallelismOptions lets the CLI override what the host otherwise
// reports via a configurable multiplier and a MaxProcessorCount clamp.
type DegreeOfParallelismOptions struct {
	Multiplier        float64 // applied when logical > physical but not hyperthreaded-shaped; default 1.0
	MaxProcessorCount int
}

func (o DegreeOfParallelismOptions) normalized() DegreeOfParallelismOptions {
	if o.Multiplier <= 0 {
		o.Multiplier = 1.0
	}
	if o.MaxProcessorCount <= 0 {
		o.MaxProcessorCount = 256
	}
	return o
}

// DegreeOfParallelism implements the local-executor sizing formula:
// physical-vs-logical branching, then a memory-aware cap, then a final
// [1, MaxProcessorCount] clamp, using gopsutil's cpu.Counts/mem.VirtualMemory
// for the underlying host readings.
func DegreeOfParallelism(opts DegreeOfParallelismOptions) int {
	opts = opts.normalized()

	physical, err := cpu.Counts(false)
	if err != nil || physical < 1 {
		physical = 1
	}
	logical, err := cpu.Counts(true)
	if err != nil || logical < 1 {
		logical = physical
	}

	var degree int
	switch {
	case logical == physical:
		degree = physical
	case physical > 4 && logical > physical:
		avg := (physical + logical) / 2
		floor := logical - 4
		degree = avg
		if floor > degree {
			degree = floor
		}
	case logical > physical:
		degree = int(float64(physical) * opts.Multiplier)
	default:
		degree = physical
	}

	if vm, err := mem.VirtualMemory(); err == nil && vm.Total > 0 {
		totalMiB := vm.Total / (1024 * 1024)
		var divisor uint64 = 1536
		if totalMiB >= 16*1024 {
			divisor = 1024
		}
		memCap := int(totalMiB / divisor)
		if memCap < 1 {
			memCap = 1
		}
		if degree > memCap {
			degree = memCap
		}
	}

	if degree < 1 {
		degree = 1
	}
	if degree > opts.MaxProcessorCount {
		degree = opts.MaxProcessorCount
	}
	return degree
}

// LocalExecutor runs actions as parallel child processes coordinated by a
// single goroutine polling loop (see DESIGN.md ADR-1 for why this is a
// poll-and-spawn loop rather than future-based recursion).
type LocalExecutor struct {
	Degree    int
	PollEvery time.Duration
}

func NewLocalExecutor(opts DegreeOfParallelismOptions) *LocalExecutor {
	return &LocalExecutor{Degree: DegreeOfParallelism(opts), PollEvery: 100 * time.Millisecond}
}

type actionState int

const (
	stateWaiting actionState = iota
	stateExecuting
	stateDone
	stateSkipped
)

// Execute runs the local scheduling loop. It does not itself decide which
// actions are stale -- callers pass exactly the stale set (plus whatever
// the driver has already marked Skipped upstream).
func (e *LocalExecutor) Execute(actions []*graph.Action, logDetailedStats bool) bool {
	degree := e.Degree
	if degree < 1 {
		degree = 1
	}
	poll := e.PollEvery
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}

	states := make(map[*graph.Action]actionState, len(actions))
	for _, a := range actions {
		states[a] = stateWaiting
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	success := true

	for {
		mu.Lock()
		executing := 0
		allDone := true
		for _, s := range states {
			if s == stateExecuting {
				executing++
			}
			if s == stateWaiting || s == stateExecuting {
				allDone = false
			}
		}
		if allDone {
			mu.Unlock()
			break
		}

		for _, a := range actions {
			if states[a] != stateWaiting {
				continue
			}
			if executing >= degree {
				break
			}

			ready := true
			failed := false
			for _, p := range a.PrerequisiteActions {
				s, tracked := states[p]
				if !tracked {
					continue // prerequisite outside this batch, assumed already satisfied
				}
				switch s {
				case stateDone:
					if p.ExitCode != 0 {
						failed = true
					}
				case stateSkipped:
					failed = true
				default:
					ready = false
				}
			}
			if failed {
				states[a] = stateSkipped
				a.Skipped = true
				continue
			}
			if !ready {
				continue
			}

			states[a] = stateExecuting
			executing++

			a := a
			wg.Add(1)
			go func() {
				defer wg.Done()
				exitCode, output, err := RunCommand(context.Background(), a)
				a.ExitCode = exitCode
				if err != nil {
					base.LogError(LogExec, "%s: %v\n%s", a.String(), err, output)
				} else if logDetailedStats {
					base.LogVerbose(LogExec, "%s: completed in %v", a.String(), a.EndTime.Sub(a.StartTime))
				}

				mu.Lock()
				states[a] = stateDone
				if exitCode != 0 {
					success = false
				}
				mu.Unlock()
			}()
		}
		mu.Unlock()

		time.Sleep(poll)
	}

	wg.Wait()
	return success
}
