package graph

import (
	"reflect"
	"sort"

	"github.com/outlaybuild/forge/internal/base"
	"github.com/outlaybuild/forge/vfs"
)

var LogGraph = base.NewLogCategory("Graph")

// Graph holds a linked, sorted set of Actions plus the producer index built
// during Link, around a concrete Action/FileItem model (DESIGN.md ADR-1).
type Graph struct {
	Actions  []*Action
	producer map[string]*Action // produced item path -> producer
}

// Link builds the producer map, detects conflicts and cycles, and computes
// TotalDependentActions.
func Link(actions []*Action) (*Graph, error) {
	g := &Graph{Actions: actions, producer: make(map[string]*Action, len(actions)*2)}

	if err := g.buildProducerIndex(); err != nil {
		return nil, err
	}
	for _, a := range g.Actions {
		a.PrerequisiteActions = g.prerequisiteActionsOf(a)
	}
	if err := g.detectCycles(); err != nil {
		return nil, err
	}
	g.computeTotalDependents()

	return g, nil
}

// buildProducerIndex: a produced item appearing under two actions whose
// compared fields (see diffingFields) are identical merges silently; any
// difference in those fields is a fatal ConflictError.
func (g *Graph) buildProducerIndex() error {
	for _, a := range g.Actions {
		for _, item := range a.ProducedItems {
			key := item.Path.String()
			if existing, ok := g.producer[key]; ok {
				if existing == a {
					continue
				}
				if fields := diffingFields(existing, a); len(fields) > 0 {
					return &ConflictError{Item: key, First: existing, Second: a, DifferingFields: fields}
				}
				continue
			}
			g.producer[key] = a
		}
	}
	return nil
}

// diffingFields reports which Action fields differ between two actions
// claiming to produce the same item. It compares Kind, CommandPath,
// CommandArguments, WorkingDirectory and the ProducedItems/PrerequisiteItems
// path lists only; the descriptions, GroupNames, the boolean flags,
// DeleteItems, DependencyListFile and the derived/timing fields are not
// compared.
func diffingFields(a, b *Action) []string {
	var diffs []string
	if a.Kind != b.Kind {
		diffs = append(diffs, "Kind")
	}
	if a.CommandPath != b.CommandPath {
		diffs = append(diffs, "CommandPath")
	}
	if a.CommandArguments != b.CommandArguments {
		diffs = append(diffs, "CommandArguments")
	}
	if a.WorkingDirectory != b.WorkingDirectory {
		diffs = append(diffs, "WorkingDirectory")
	}
	if !reflect.DeepEqual(filePaths(a.ProducedItems), filePaths(b.ProducedItems)) {
		diffs = append(diffs, "ProducedItems")
	}
	if !reflect.DeepEqual(filePaths(a.PrerequisiteItems), filePaths(b.PrerequisiteItems)) {
		diffs = append(diffs, "PrerequisiteItems")
	}
	return diffs
}

func filePaths(items []vfs.FileItem) []string {
	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.Path.String()
	}
	return paths
}

// prerequisiteActionsOf computes the set of producers of a's prerequisite
// items, deduplicated, producer-missing prerequisites (external/already-
// up-to-date inputs) silently excluded.
func (g *Graph) prerequisiteActionsOf(a *Action) []*Action {
	seen := make(map[*Action]bool)
	var result []*Action
	for _, item := range a.PrerequisiteItems {
		if producer, ok := g.producer[item.Path.String()]; ok && producer != a && !seen[producer] {
			seen[producer] = true
			result = append(result, producer)
		}
	}
	return result
}

// detectCycles repeatedly prunes actions whose prerequisites are all
// already marked, iterated to a fixpoint. Any unmarked remainder
// participates in a cycle.
func (g *Graph) detectCycles() error {
	marked := make(map[*Action]bool, len(g.Actions))

	for {
		progressed := false
		for _, a := range g.Actions {
			if marked[a] {
				continue
			}
			allPrereqsMarked := true
			for _, p := range a.PrerequisiteActions {
				if !marked[p] {
					allPrereqsMarked = false
					break
				}
			}
			if allPrereqsMarked {
				marked[a] = true
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	var unmarked []*Action
	for _, a := range g.Actions {
		if !marked[a] {
			unmarked = append(unmarked, a)
		}
	}
	if len(unmarked) == 0 {
		return nil
	}

	index := make(map[*Action]int, len(unmarked))
	for i, a := range unmarked {
		index[a] = i
	}
	var edges [][2]int
	for _, a := range unmarked {
		for _, p := range a.PrerequisiteActions {
			if j, ok := index[p]; ok {
				edges = append(edges, [2]int{index[a], j})
			}
		}
	}
	return &CycleError{Actions: unmarked, Edges: edges}
}

// computeTotalDependents computes, for each action, the cardinality of the
// set of actions transitively depending on it (DFS over the reverse-
// prerequisite relation, deduplicated). The graph is already known acyclic
// by the time this runs (detectCycles ran first), so the per-action DFS
// always terminates.
func (g *Graph) computeTotalDependents() {
	dependents := make(map[*Action][]*Action, len(g.Actions))
	for _, a := range g.Actions {
		for _, p := range a.PrerequisiteActions {
			dependents[p] = append(dependents[p], a)
		}
	}

	for _, a := range g.Actions {
		reached := make(map[*Action]bool)
		var visit func(n *Action)
		visit = func(n *Action) {
			for _, d := range dependents[n] {
				if !reached[d] {
					reached[d] = true
					visit(d)
				}
			}
		}
		visit(a)
		a.TotalDependentActions = len(reached)
	}
}

// Sort is a stable sort by TotalDependentActions descending (primary),
// len(PrerequisiteItems) descending (secondary).
func (g *Graph) Sort() {
	sort.SliceStable(g.Actions, func(i, j int) bool {
		a, b := g.Actions[i], g.Actions[j]
		if a.TotalDependentActions != b.TotalDependentActions {
			return a.TotalDependentActions > b.TotalDependentActions
		}
		return len(a.PrerequisiteItems) > len(b.PrerequisiteItems)
	})
}
