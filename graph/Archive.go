package graph

import (
	"fmt"
	"io"

	"github.com/outlaybuild/forge/internal/base"
	"github.com/outlaybuild/forge/vfs"
)

// actionArchiveVersion gates the binary format's fixed field order: kind
// byte, working-directory path, debug-print flag, command path, command
// args, descriptions, five bool flags, the three path-list arrays,
// dependency-list-file. A version mismatch forces a full rebuild rather
// than a partial, possibly-misaligned read.
const actionArchiveVersion int32 = 1

// pathItem adapts a vfs.FileItem to base.Serializable for the path-list
// arrays; only the path round-trips through the archive, re-interning each
// path through the registry on load rather than persisting cached stat
// attributes alongside it.
type pathItem struct {
	registry *vfs.Registry
	item     vfs.FileItem
}

func (p *pathItem) Serialize(ar base.Archive) {
	s := p.item.Path.String()
	ar.String(&s)
	if ar.Loading() {
		p.item = p.registry.GetFile(s)
	}
}

// Serialize round-trips an Action through ar in a fixed field order.
// Callers reading back an Action must supply a populated
// *vfs.Registry as the registry argument so produced/prerequisite/delete items
// re-intern against the same FileItem identities the rest of the run uses.
func (a *Action) Serialize(ar base.Archive, registry *vfs.Registry) {
	kind := byte(a.Kind)
	ar.Byte(&kind)
	if ar.Loading() {
		a.Kind = Kind(kind)
	}

	ar.String(&a.WorkingDirectory)

	debugPrint := a.ShouldLogStatus
	ar.Bool(&debugPrint)
	if ar.Loading() {
		a.ShouldLogStatus = debugPrint
	}

	ar.String(&a.CommandPath)
	ar.String(&a.CommandArguments)
	ar.String(&a.CommandDescription)
	ar.String(&a.StatusDescription)

	ar.Bool(&a.CanExecuteRemotely)
	ar.Bool(&a.CanExecuteRemotelyOnFarmB)
	ar.Bool(&a.IsGCCCompiler)
	ar.Bool(&a.ProducesImportLibrary)
	ar.Bool(&a.ShouldLogStatus)

	serializeItemList(ar, registry, &a.PrerequisiteItems)
	serializeItemList(ar, registry, &a.ProducedItems)
	serializeItemList(ar, registry, &a.DeleteItems)

	hasManifest := a.DependencyListFile != nil
	ar.Bool(&hasManifest)
	if hasManifest {
		var path string
		if !ar.Loading() {
			path = a.DependencyListFile.Path.String()
		}
		ar.String(&path)
		if ar.Loading() {
			item := registry.GetFile(path)
			a.DependencyListFile = &item
		}
	} else if ar.Loading() {
		a.DependencyListFile = nil
	}
}

func serializeItemList(ar base.Archive, registry *vfs.Registry, items *[]vfs.FileItem) {
	n := int32(len(*items))
	ar.Int32(&n)
	if ar.Loading() {
		*items = make([]vfs.FileItem, n)
		for i := range *items {
			p := &pathItem{registry: registry}
			ar.Serializable(p)
			(*items)[i] = p.item
		}
		return
	}
	for _, it := range *items {
		p := &pathItem{registry: registry, item: it}
		ar.Serializable(p)
	}
}

// WriteArchive persists actions to w in a binary format: an Int32 version
// header followed by a length-prefixed array of Actions, each serialized
// field-by-field in the fixed order Serialize implements.
func WriteArchive(w io.Writer, actions []*Action) error {
	ar := base.NewArchiveBinaryWriter(w)
	version := actionArchiveVersion
	ar.Int32(&version)
	n := int32(len(actions))
	ar.Int32(&n)
	for _, a := range actions {
		a.Serialize(ar, nil)
	}
	return ar.Error()
}

// ReadArchive reconstructs actions from r, re-interning every path through
// registry. A version mismatch is reported as an error rather than silently
// producing a partially-decoded graph -- it forces a full rebuild instead.
func ReadArchive(r io.Reader, registry *vfs.Registry) ([]*Action, error) {
	ar := base.NewArchiveBinaryReader(r)
	var version int32
	ar.Int32(&version)
	if ar.Error() != nil {
		return nil, ar.Error()
	}
	if version != actionArchiveVersion {
		return nil, fmt.Errorf("graph: action archive version %d, expected %d, rebuild required", version, actionArchiveVersion)
	}
	var n int32
	ar.Int32(&n)
	if ar.Error() != nil {
		return nil, ar.Error()
	}
	actions := make([]*Action, n)
	for i := range actions {
		a := &Action{}
		a.Serialize(ar, registry)
		actions[i] = a
	}
	if ar.Error() != nil {
		return nil, ar.Error()
	}
	return actions, nil
}
