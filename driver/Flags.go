package driver

import "github.com/outlaybuild/forge/internal/base"

// Flags collects the orchestration-level knobs a caller's CLI layer binds,
// kept separate from exec.Flags, which covers executor selection on its own.
type Flags struct {
	CacheDirName               string
	IgnoreImportLibraryChanges bool
	LogDetailedStats           bool
}

func NewFlags() *Flags {
	return &Flags{CacheDirName: ".forge-cache"}
}

func (x *Flags) Visit(fv base.FlagVisitor) {
	fv.StringVar("CacheDirName", "directory name for persistent caches, relative to each scope root", &x.CacheDirName)
	fv.BoolVar("IgnoreImportLibraryChanges", "exempt import-library-only prerequisites from staleness", &x.IgnoreImportLibraryChanges)
	fv.BoolVar("LogDetailedStats", "log per-action detail while executing", &x.LogDetailedStats)
}
