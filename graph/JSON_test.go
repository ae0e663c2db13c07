package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/outlaybuild/forge/vfs"
)

func TestJSONRoundTripsActionGraph(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	src := reg.GetFile(filepath.Join(dir, "a.c"))
	obj := reg.GetFile(filepath.Join(dir, "a.o"))

	actions := []*Action{{
		Kind:               KindCompile,
		WorkingDirectory:   dir,
		CommandPath:        "/usr/bin/cc",
		CommandArguments:   "-c a.c -o a.o",
		CommandDescription: "Compile a.c",
		PrerequisiteItems:  []vfs.FileItem{src},
		ProducedItems:      []vfs.FileItem{obj},
	}}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, actions, map[string]string{"FORGE_TEST_VAR": "hello"}); err != nil {
		t.Fatal(err)
	}

	decoded, err := ReadJSON(&buf, reg)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 action, got %d", len(decoded))
	}
	if decoded[0].Kind != KindCompile || decoded[0].CommandArguments != "-c a.c -o a.o" {
		t.Fatalf("action did not round-trip: got %+v", decoded[0])
	}
	if len(decoded[0].ProducedItems) != 1 || decoded[0].ProducedItems[0].Path.String() != obj.Path.String() {
		t.Fatalf("produced items did not round-trip: got %+v", decoded[0].ProducedItems)
	}
	if os.Getenv("FORGE_TEST_VAR") != "hello" {
		t.Fatal("expected the recorded environment variable to be re-exported on import")
	}
}

func TestWriteJSONOmitsVariablesMatchingCurrentEnvironment(t *testing.T) {
	os.Setenv("FORGE_TEST_UNCHANGED", "same")
	defer os.Unsetenv("FORGE_TEST_UNCHANGED")

	var buf bytes.Buffer
	err := WriteJSON(&buf, nil, map[string]string{"FORGE_TEST_UNCHANGED": "same", "FORGE_TEST_CHANGED": "different"})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(buf.Bytes(), []byte("FORGE_TEST_UNCHANGED")) {
		t.Fatal("expected an unchanged environment variable to be omitted from the export")
	}
	if !bytes.Contains(buf.Bytes(), []byte("FORGE_TEST_CHANGED")) {
		t.Fatal("expected a changed environment variable to be included in the export")
	}
}
