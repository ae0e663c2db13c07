//go:build forge_profiling

package driver

import (
	"github.com/pkg/profile"

	"github.com/outlaybuild/forge/internal/base"
)

const ProfilingEnabled = true

var LogProfiling = base.NewLogCategory("Profiling")

// ProfilingMode covers the two profiling modes a build driver invocation
// plausibly wants: CPU and heap. pprof's other modes (goroutine, mutex,
// threadcreation, trace) have no forge caller.
type ProfilingMode int

const (
	ProfilingCPU ProfilingMode = iota
	ProfilingHeap
)

func (m ProfilingMode) pprofMode() func(*profile.Profile) {
	switch m {
	case ProfilingHeap:
		return profile.MemProfileHeap
	default:
		return profile.CPUProfile
	}
}

// StartProfiling begins a pprof capture under outputDir and returns a
// closer to stop it.
func StartProfiling(mode ProfilingMode, outputDir string) func() {
	base.LogWarning(LogProfiling, "profiling enabled, writing pprof output to %q", outputDir)
	stopper := profile.Start(mode.pprofMode(), profile.NoShutdownHook, profile.ProfilePath(outputDir))
	return stopper.Stop
}
