// Package graph implements the ActionGraph: linking Actions into a
// producer-indexed DAG, cycle detection, fan-out-prioritised sorting, and
// staleness analysis, built directly around a concrete Action/FileItem model
// (see DESIGN.md ADR-1) rather than a generic lazily-resolved artifact
// abstraction -- this package's link/cycle-detect/topo-sort algorithm
// batches those steps the way a from-scratch build driver needs to.
package graph

import (
	"time"

	"github.com/outlaybuild/forge/vfs"
)

// Kind enumerates the Action variants; Compile and Link get special
// handling in staleness analysis and output verification.
type Kind int32

const (
	KindBuildProject Kind = iota
	KindCompile
	KindCreateAppBundle
	KindGenerateDebugInfo
	KindLink
	KindWriteMetadata
	KindPostBuildStep
	KindParseTimingInfo
)

func (k Kind) String() string {
	switch k {
	case KindBuildProject:
		return "BuildProject"
	case KindCompile:
		return "Compile"
	case KindCreateAppBundle:
		return "CreateAppBundle"
	case KindGenerateDebugInfo:
		return "GenerateDebugInfo"
	case KindLink:
		return "Link"
	case KindWriteMetadata:
		return "WriteMetadata"
	case KindPostBuildStep:
		return "PostBuildStep"
	case KindParseTimingInfo:
		return "ParseTimingInfo"
	default:
		return "Unknown"
	}
}

func ParseKind(s string) (Kind, bool) {
	for k := KindBuildProject; k <= KindParseTimingInfo; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Action is the atomic unit of work.
type Action struct {
	Kind Kind

	PrerequisiteItems  []vfs.FileItem
	ProducedItems      []vfs.FileItem
	DeleteItems        []vfs.FileItem
	DependencyListFile *vfs.FileItem

	WorkingDirectory string
	CommandPath      string
	CommandArguments string

	CommandDescription string
	StatusDescription  string
	GroupNames         []string

	CanExecuteRemotely        bool
	CanExecuteRemotelyOnFarmB bool
	IsGCCCompiler             bool
	ProducesImportLibrary     bool
	ShouldLogStatus           bool

	// Derived by Link/Sort; not set by callers.
	PrerequisiteActions   []*Action
	TotalDependentActions int

	StartTime time.Time
	EndTime   time.Time

	ExitCode int
	Skipped  bool
}

// ProducesOnly reports whether every produced item matches ext (used by the
// import-library staleness exception: a prerequisite whose only produced
// outputs are import-library files is treated specially).
func (a *Action) ProducesOnly(ext string) bool {
	if len(a.ProducedItems) == 0 {
		return false
	}
	for _, item := range a.ProducedItems {
		if item.Path.Ext() != ext {
			return false
		}
	}
	return true
}

func (a *Action) String() string {
	return a.CommandPath + " " + a.CommandArguments
}
