//go:build !forge_profiling

package driver

const ProfilingEnabled = false

type ProfilingMode int

const (
	ProfilingCPU ProfilingMode = iota
	ProfilingHeap
)

// StartProfiling is a no-op outside a forge_profiling build -- pkg/profile
// still lives in go.mod, exercised by the Profiling_Enabled.go half of this
// pair, but a default build never pays for it.
func StartProfiling(mode ProfilingMode, outputDir string) func() {
	return func() {}
}
