package cluster

import (
	"github.com/mholt/archiver/v3"

	"github.com/outlaybuild/forge/internal/base"
)

// BundlePrerequisites packs a batch's prerequisite files into a single
// archive for upload to a worker that doesn't share the dispatcher's
// filesystem; the archive format follows destination's extension (e.g.
// ".tar.gz" gives a gzipped tarball).
func BundlePrerequisites(paths []string, destination string) error {
	base.LogVerbose(LogCluster, "bundling %d prerequisite file(s) into %q", len(paths), destination)
	return archiver.Archive(paths, destination)
}

// UnbundlePrerequisites extracts a bundle produced by BundlePrerequisites
// into the worker's local staging directory before it runs the batch.
func UnbundlePrerequisites(bundle, destination string) error {
	return archiver.Unarchive(bundle, destination)
}
