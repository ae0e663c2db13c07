package graph

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/outlaybuild/forge/vfs"
)

// actionJSON is the wire shape of one Actions[] entry, field-for-field:
// Type, WorkingDirectory, CommandPath, CommandArguments,
// CommandDescription, StatusDescription, the five bool flags, the three
// absolute-path arrays, and an optional DependencyListFile.
type actionJSON struct {
	Type               string `json:"Type"`
	WorkingDirectory   string `json:"WorkingDirectory"`
	CommandPath        string `json:"CommandPath"`
	CommandArguments   string `json:"CommandArguments"`
	CommandDescription string `json:"CommandDescription"`
	StatusDescription  string `json:"StatusDescription"`

	CanExecuteRemotely        bool `json:"CanExecuteRemotely"`
	CanExecuteRemotelyOnFarmB bool `json:"CanExecuteRemotelyOnFarmB"`
	IsGCCCompiler             bool `json:"IsGCCCompiler"`
	ProducesImportLibrary     bool `json:"ProducesImportLibrary"`
	ShouldLogStatus           bool `json:"ShouldLogStatus"`

	PrerequisiteItems []string `json:"PrerequisiteItems"`
	ProducedItems     []string `json:"ProducedItems"`
	DeleteItems       []string `json:"DeleteItems"`

	DependencyListFile string `json:"DependencyListFile,omitempty"`
}

// graphJSON is the top-level action-graph document: an Environment map of
// the variables that differ from the launch environment, plus the Actions
// array. Only the deltas are recorded on export; every recorded variable is
// re-exported into the child process environment on import.
type graphJSON struct {
	Environment map[string]string `json:"Environment"`
	Actions     []actionJSON      `json:"Actions"`
}

// WriteJSON exports actions (and the environment deltas computed against
// the launching process's own environment) as the action-graph JSON
// document.
func WriteJSON(w io.Writer, actions []*Action, environment map[string]string) error {
	doc := graphJSON{
		Environment: diffEnvironment(environment),
		Actions:     make([]actionJSON, len(actions)),
	}
	for i, a := range actions {
		doc.Actions[i] = actionJSON{
			Type:                      a.Kind.String(),
			WorkingDirectory:          a.WorkingDirectory,
			CommandPath:               a.CommandPath,
			CommandArguments:          a.CommandArguments,
			CommandDescription:        a.CommandDescription,
			StatusDescription:         a.StatusDescription,
			CanExecuteRemotely:        a.CanExecuteRemotely,
			CanExecuteRemotelyOnFarmB: a.CanExecuteRemotelyOnFarmB,
			IsGCCCompiler:             a.IsGCCCompiler,
			ProducesImportLibrary:     a.ProducesImportLibrary,
			ShouldLogStatus:           a.ShouldLogStatus,
			PrerequisiteItems:         itemPaths(a.PrerequisiteItems),
			ProducedItems:             itemPaths(a.ProducedItems),
			DeleteItems:               itemPaths(a.DeleteItems),
		}
		if a.DependencyListFile != nil {
			doc.Actions[i].DependencyListFile = a.DependencyListFile.Path.String()
		}
	}
	encoder := json.NewEncoder(w)
	return encoder.Encode(doc)
}

// ReadJSON parses an action-graph JSON document, re-interning every path
// through registry, and re-exports every recorded Environment entry into
// the current process's environment.
func ReadJSON(r io.Reader, registry *vfs.Registry) ([]*Action, error) {
	var doc graphJSON
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}

	for k, v := range doc.Environment {
		if err := os.Setenv(k, v); err != nil {
			return nil, fmt.Errorf("graph: could not re-export environment variable %q: %w", k, err)
		}
	}

	actions := make([]*Action, len(doc.Actions))
	for i, aj := range doc.Actions {
		kind, ok := ParseKind(aj.Type)
		if !ok {
			return nil, fmt.Errorf("graph: unknown action type %q at index %d", aj.Type, i)
		}
		a := &Action{
			Kind:                      kind,
			WorkingDirectory:          aj.WorkingDirectory,
			CommandPath:               aj.CommandPath,
			CommandArguments:          aj.CommandArguments,
			CommandDescription:        aj.CommandDescription,
			StatusDescription:         aj.StatusDescription,
			CanExecuteRemotely:        aj.CanExecuteRemotely,
			CanExecuteRemotelyOnFarmB: aj.CanExecuteRemotelyOnFarmB,
			IsGCCCompiler:             aj.IsGCCCompiler,
			ProducesImportLibrary:     aj.ProducesImportLibrary,
			ShouldLogStatus:           aj.ShouldLogStatus,
			PrerequisiteItems:         registerPaths(registry, aj.PrerequisiteItems),
			ProducedItems:             registerPaths(registry, aj.ProducedItems),
			DeleteItems:               registerPaths(registry, aj.DeleteItems),
		}
		if aj.DependencyListFile != "" {
			item := registry.GetFile(aj.DependencyListFile)
			a.DependencyListFile = &item
		}
		actions[i] = a
	}
	return actions, nil
}

func itemPaths(items []vfs.FileItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Path.String()
	}
	return out
}

func registerPaths(registry *vfs.Registry, paths []string) []vfs.FileItem {
	out := make([]vfs.FileItem, len(paths))
	for i, p := range paths {
		out[i] = registry.GetFile(p)
	}
	return out
}

// diffEnvironment returns the subset of environment that differs from the
// process's current environment -- a delta-only policy that keeps exported
// graphs free of machine-specific noise (PATH, HOME, ...).
func diffEnvironment(environment map[string]string) map[string]string {
	delta := make(map[string]string)
	for k, v := range environment {
		if os.Getenv(k) != v {
			delta[k] = v
		}
	}
	return delta
}
