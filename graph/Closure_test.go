package graph

import (
	"path/filepath"
	"testing"

	"github.com/outlaybuild/forge/vfs"
)

func TestRequestedClosureGathersTransitivePrerequisites(t *testing.T) {
	dir := t.TempDir()
	reg := vfs.NewRegistry()
	srcA := reg.GetFile(filepath.Join(dir, "a.c"))
	objA := reg.GetFile(filepath.Join(dir, "a.o"))
	objB := reg.GetFile(filepath.Join(dir, "b.o"))
	exe := reg.GetFile(filepath.Join(dir, "app"))
	unrelated := reg.GetFile(filepath.Join(dir, "unrelated.o"))

	compileA := &Action{Kind: KindCompile, CommandPath: "cc", CommandArguments: "a.c",
		PrerequisiteItems: []vfs.FileItem{srcA}, ProducedItems: []vfs.FileItem{objA}}
	compileB := &Action{Kind: KindCompile, CommandPath: "cc", CommandArguments: "b.c",
		ProducedItems: []vfs.FileItem{objB}}
	link := &Action{Kind: KindLink, CommandPath: "ld",
		PrerequisiteItems: []vfs.FileItem{objA, objB}, ProducedItems: []vfs.FileItem{exe}}
	other := &Action{Kind: KindCompile, CommandPath: "cc", CommandArguments: "unrelated.c",
		ProducedItems: []vfs.FileItem{unrelated}}

	g, err := Link([]*Action{compileA, compileB, link, other})
	if err != nil {
		t.Fatal(err)
	}

	closure, err := g.RequestedClosure([]string{exe.Path.String()})
	if err != nil {
		t.Fatal(err)
	}
	if len(closure) != 3 {
		t.Fatalf("expected the link and both its compiles in the closure, got %d: %v", len(closure), closure)
	}
	for _, a := range closure {
		if a == other {
			t.Fatal("expected the unrelated action to be excluded from the closure")
		}
	}
}

func TestRequestedClosureErrorsOnUnknownOutput(t *testing.T) {
	g, err := Link(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.RequestedClosure([]string{"/nope"}); err == nil {
		t.Fatal("expected an error requesting an output with no producing action")
	}
}
