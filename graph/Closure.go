package graph

// RequestedClosure gathers the prerequisite actions for the requested
// outputs: a closure over prerequisite_actions. requestedOutputs names
// absolute produced-item paths; the result is every
// action transitively required to produce them, in depth-first discovery
// order; the result is not sorted.
func (g *Graph) RequestedClosure(requestedOutputs []string) ([]*Action, error) {
	seen := make(map[*Action]bool, len(g.Actions))
	var closure []*Action

	var visit func(a *Action)
	visit = func(a *Action) {
		if seen[a] {
			return
		}
		seen[a] = true
		closure = append(closure, a)
		for _, p := range a.PrerequisiteActions {
			visit(p)
		}
	}

	for _, out := range requestedOutputs {
		producer, ok := g.producer[out]
		if !ok {
			return nil, &MissingProducerError{Item: out}
		}
		visit(producer)
	}
	return closure, nil
}

// MissingProducerError reports a requested output with no producing action
// in the linked graph.
type MissingProducerError struct {
	Item string
}

func (e *MissingProducerError) Error() string {
	return "action graph: no action produces requested output " + e.Item
}
