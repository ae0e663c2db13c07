package exec

import (
	"testing"

	"github.com/outlaybuild/forge/graph"
)

// fakeExecutor records which actions it was asked to run.
type fakeExecutor struct {
	ran []*graph.Action
}

func (f *fakeExecutor) Execute(actions []*graph.Action, logDetailedStats bool) bool {
	f.ran = append(f.ran, actions...)
	return true
}

func TestHybridPartitionPeelsSinksAsLocalLeaves(t *testing.T) {
	compileA := &graph.Action{Kind: graph.KindCompile, CommandPath: "cc"}
	compileB := &graph.Action{Kind: graph.KindCompile, CommandPath: "cc"}
	link := &graph.Action{Kind: graph.KindLink, CommandPath: "ld", PrerequisiteActions: []*graph.Action{compileA, compileB}}

	h := NewHybridExecutor(nil, nil, 1)
	leaves, interior := h.Partition([]*graph.Action{compileA, compileB, link})

	if len(leaves) != 1 || leaves[0] != link {
		t.Fatalf("expected the link action (no dependents) to peel first as the sole leaf, got %v", leaves)
	}
	if len(interior) != 2 {
		t.Fatalf("expected both compiles to remain interior, got %d", len(interior))
	}
}

func TestHybridExecuteRoutesLeavesAndInteriorToTheRightBackend(t *testing.T) {
	compileA := &graph.Action{Kind: graph.KindCompile, CommandPath: "cc"}
	link := &graph.Action{Kind: graph.KindLink, CommandPath: "ld", PrerequisiteActions: []*graph.Action{compileA}}

	local := &fakeExecutor{}
	remote := &fakeExecutor{}
	h := NewHybridExecutor(local, remote, 1)

	ok := h.Execute([]*graph.Action{compileA, link}, false)
	if !ok {
		t.Fatal("expected overall success")
	}
	if len(local.ran) != 1 || local.ran[0] != link {
		t.Fatalf("expected the link action to run locally, got %v", local.ran)
	}
	if len(remote.ran) != 1 || remote.ran[0] != compileA {
		t.Fatalf("expected the compile action to run remotely, got %v", remote.ran)
	}
}
