package graph

import (
	"fmt"
	"strings"
)

// ConflictError reports two actions producing the same item with differing
// fields.
type ConflictError struct {
	Item            string
	First, Second   *Action
	DifferingFields []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("action graph: %q is produced by two conflicting actions (differs in: %s):\n  [1] %s\n  [2] %s",
		e.Item, strings.Join(e.DifferingFields, ", "), e.First.String(), e.Second.String())
}

// CycleError reports a structured diagnostic for an unresolved cycle:
// every action participating in it, its prerequisites, and the cyclic
// edges themselves.
type CycleError struct {
	Actions []*Action
	Edges   [][2]int // indices into Actions
}

func (e *CycleError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "action graph: cycle detected among %d action(s):\n", len(e.Actions))
	for i, a := range e.Actions {
		fmt.Fprintf(&b, "  [%d] %s (prerequisites: %d)\n", i, a.String(), len(a.PrerequisiteActions))
	}
	b.WriteString("  cyclic edges:\n")
	for _, edge := range e.Edges {
		fmt.Fprintf(&b, "    [%d] -> [%d]\n", edge[0], edge[1])
	}
	return b.String()
}

// PathLengthError reports a produced item whose absolute path exceeds the
// Windows MAX_PATH-derived budget.
type PathLengthError struct {
	Path   string
	Length int
	Limit  int
}

func (e *PathLengthError) Error() string {
	return fmt.Sprintf("action graph: produced item path %q is %d characters long, exceeding the %d-character limit",
		e.Path, e.Length, e.Limit)
}

// MissingLinkOutputError reports a Link action whose produced item does
// not exist on disk after a successful exit.
type MissingLinkOutputError struct {
	Action *Action
	Item   string
}

func (e *MissingLinkOutputError) Error() string {
	return fmt.Sprintf("action graph: link action %q reported success but did not produce %q",
		e.Action.String(), e.Item)
}
