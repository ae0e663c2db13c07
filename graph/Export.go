package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// WriteGraphViz dumps a .dot rendering of actions and their prerequisite
// edges, trimmed to the handful of attributes a cycle/conflict postmortem
// actually needs: a box per action, labelled with its command, and an edge
// per prerequisite relationship. highlight (optional) is drawn
// in red -- the driver passes the actions a CycleError names.
func WriteGraphViz(w io.Writer, actions []*Action, highlight map[*Action]bool) error {
	if _, err := fmt.Fprintln(w, "digraph forge {"); err != nil {
		return err
	}
	ids := make(map[*Action]string, len(actions))
	for i, a := range actions {
		ids[a] = fmt.Sprintf("n%d", i)
	}
	for _, a := range actions {
		color := "black"
		if highlight[a] {
			color = "red"
		}
		if _, err := fmt.Fprintf(w, "  %s [shape=box color=%s label=%q];\n", ids[a], color, a.String()); err != nil {
			return err
		}
	}
	for _, a := range actions {
		for _, p := range a.PrerequisiteActions {
			pid, ok := ids[p]
			if !ok {
				continue
			}
			if _, err := fmt.Fprintf(w, "  %s -> %s;\n", ids[a], pid); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// CompileCommand is one clang-compatible compilation-database entry: a
// direct projection of any linked Action of KindCompile.
type CompileCommand struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Output    string   `json:"output"`
	Arguments []string `json:"arguments"`
}

// WriteCompilationDatabase emits a compile_commands.json-shaped array built
// from every KindCompile action in the graph: one entry per action, File is
// taken as its first prerequisite item (the translation unit), Output as its
// first produced item.
func WriteCompilationDatabase(w io.Writer, actions []*Action) error {
	var db []CompileCommand
	for _, a := range actions {
		if a.Kind != KindCompile {
			continue
		}
		cmd := CompileCommand{
			Directory: a.WorkingDirectory,
			Arguments: append([]string{a.CommandPath}, strings.Fields(a.CommandArguments)...),
		}
		if len(a.PrerequisiteItems) > 0 {
			cmd.File = a.PrerequisiteItems[0].Path.String()
		}
		if len(a.ProducedItems) > 0 {
			cmd.Output = a.ProducedItems[0].Path.String()
		}
		db = append(db, cmd)
	}
	encoder := json.NewEncoder(w)
	return encoder.Encode(db)
}
