package exec

import "github.com/outlaybuild/forge/internal/base"

// Flags collects the executor-selection knobs a caller's CLI layer binds,
// declared without depending on a concrete flag-parsing library.
type Flags struct {
	DisableHybrid bool
	DisableFarmA  bool
	DisableFarmB  bool
	DisableLocal  bool

	FarmAAddr string
	FarmBAddr string

	ParallelismMultiplier float64
	MaxProcessorCount     int
	MaxLocalActions       int
}

func NewFlags() *Flags {
	return &Flags{ParallelismMultiplier: 1.0, MaxLocalActions: 16}
}

func (x *Flags) Visit(fv base.FlagVisitor) {
	fv.BoolVar("DisableHybrid", "never use the hybrid local/remote partitioned executor", &x.DisableHybrid)
	fv.BoolVar("DisableFarmA", "never dispatch to the primary distributed farm", &x.DisableFarmA)
	fv.BoolVar("DisableFarmB", "never dispatch to the secondary distributed farm", &x.DisableFarmB)
	fv.BoolVar("DisableLocal", "never fall back to the local parallel executor", &x.DisableLocal)
	fv.StringVar("FarmAAddr", "primary distributed farm address (host:port)", &x.FarmAAddr)
	fv.StringVar("FarmBAddr", "secondary distributed farm address (host:port)", &x.FarmBAddr)
	fv.Float64Var("ParallelismMultiplier", "multiplier applied to physical core count when sizing the local executor", &x.ParallelismMultiplier)
	fv.IntVar("MaxProcessorCount", "hard ceiling on local executor worker count", &x.MaxProcessorCount)
	fv.IntVar("MaxLocalActions", "leaf-peeling budget for the hybrid executor", &x.MaxLocalActions)
}

// SelectionOptions projects Flags onto the concrete options Select() expects.
func (x *Flags) SelectionOptions() SelectionOptions {
	return SelectionOptions{
		DisableHybrid: x.DisableHybrid,
		DisableFarmA:  x.DisableFarmA,
		DisableFarmB:  x.DisableFarmB,
		DisableLocal:  x.DisableLocal,
		FarmAAddr:     x.FarmAAddr,
		FarmBAddr:     x.FarmBAddr,
		Parallelism: DegreeOfParallelismOptions{
			Multiplier:        x.ParallelismMultiplier,
			MaxProcessorCount: x.MaxProcessorCount,
		},
		MaxLocalActions: x.MaxLocalActions,
	}
}
