package exec

// SelectionOptions carries the executor-selection policy, in priority
// order: hybrid (if both backends available) → remote farm A → remote
// farm B → local parallel → local single-threaded fallback, with flags to
// disable specific backends.
type SelectionOptions struct {
	DisableHybrid bool
	DisableFarmA  bool
	DisableFarmB  bool
	DisableLocal  bool

	FarmAAddr string
	FarmBAddr string

	Parallelism     DegreeOfParallelismOptions
	MaxLocalActions int
}

// Select builds the executor chain in priority order, returning the first
// backend the options leave enabled. The
// fallback of last resort is always a single-threaded LocalExecutor so a
// build can proceed even with every remote/parallel option disabled.
func Select(opts SelectionOptions) Executor {
	local := NewLocalExecutor(opts.Parallelism)
	var farmA, farmB Executor

	if !opts.DisableFarmA && opts.FarmAAddr != "" {
		farmA = NewFarmExecutor(opts.FarmAAddr, local)
	}
	if !opts.DisableFarmB && opts.FarmBAddr != "" {
		farmB = NewFarmExecutor(opts.FarmBAddr, local)
	}

	remote := farmA
	if remote == nil {
		remote = farmB
	}

	if !opts.DisableHybrid && remote != nil {
		return NewHybridExecutor(local, remote, opts.MaxLocalActions)
	}
	if remote != nil {
		return remote
	}
	if !opts.DisableLocal {
		return local
	}
	return &LocalExecutor{Degree: 1, PollEvery: local.PollEvery}
}
