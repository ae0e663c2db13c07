package exec

import "github.com/outlaybuild/forge/graph"

// HybridExecutor partitions an action list by iterative leaf-peeling and
// runs the peeled leaves locally while the remaining interior goes to a
// remote backend: it iteratively peels off leaves (actions whose decremented
// fan-in count reaches zero) until either no new leaves appear or the
// accumulated leaf count reaches MaxLocalActions. The leaves go to the local
// executor; the interior goes to the remote executor. Implemented as a
// single non-recursive pass with an explicit remaining-fan-in map rather
// than recursive future-resolution.
type HybridExecutor struct {
	Local           Executor
	Remote          Executor
	MaxLocalActions int
}

func NewHybridExecutor(local, remote Executor, maxLocalActions int) *HybridExecutor {
	if maxLocalActions <= 0 {
		maxLocalActions = 16
	}
	return &HybridExecutor{Local: local, Remote: remote, MaxLocalActions: maxLocalActions}
}

// Partition splits actions into (leaves, interior) by peeling off actions
// whose fan-in -- here, the count of not-yet-peeled actions *depending on*
// it within the same batch -- has reached zero, one pass at a time, until
// either no new leaf appears or MaxLocalActions leaves have accumulated.
// Peeling starts from the sinks of the dependency DAG (the final link/
// codegen steps nothing else depends on) and works backward, matching the
// rationale that those few final steps should run locally while the
// broad-fan-out interior goes to the remote farm.
func (h *HybridExecutor) Partition(actions []*graph.Action) (leaves, interior []*graph.Action) {
	inBatch := make(map[*graph.Action]bool, len(actions))
	for _, a := range actions {
		inBatch[a] = true
	}

	dependents := make(map[*graph.Action][]*graph.Action, len(actions))
	fanIn := make(map[*graph.Action]int, len(actions))
	for _, a := range actions {
		for _, p := range a.PrerequisiteActions {
			if inBatch[p] {
				dependents[p] = append(dependents[p], a)
			}
		}
	}
	for _, a := range actions {
		fanIn[a] = len(dependents[a])
	}

	peeled := make(map[*graph.Action]bool, len(actions))
	var leafOrder []*graph.Action

	for len(leafOrder) < h.MaxLocalActions {
		var newLeaves []*graph.Action
		for _, a := range actions {
			if peeled[a] || fanIn[a] != 0 {
				continue
			}
			newLeaves = append(newLeaves, a)
		}
		if len(newLeaves) == 0 {
			break
		}
		for _, a := range newLeaves {
			if len(leafOrder) >= h.MaxLocalActions {
				break
			}
			peeled[a] = true
			leafOrder = append(leafOrder, a)
			for _, p := range a.PrerequisiteActions {
				if inBatch[p] && !peeled[p] {
					fanIn[p]--
				}
			}
		}
	}

	for _, a := range actions {
		if peeled[a] {
			leaves = append(leaves, a)
		} else {
			interior = append(interior, a)
		}
	}
	return leaves, interior
}

func (h *HybridExecutor) Execute(actions []*graph.Action, logDetailedStats bool) bool {
	leaves, interior := h.Partition(actions)

	success := true
	if len(interior) > 0 {
		if !h.Remote.Execute(interior, logDetailedStats) {
			success = false
		}
	}
	if len(leaves) > 0 {
		if !h.Local.Execute(leaves, logDetailedStats) {
			success = false
		}
	}
	return success
}
