// SPDX-License-Identifier: MPL-2.0

// Package buildgraph holds the virtual build graph: the in-memory view of every
// file the build enumerated under a root directory, plus the import edges
// discovered while compiling them.
//
// The resolver consults the graph before the disk, so a Store is the single
// source of truth for file contents during a build. Import edges are recorded
// for each import a compile resolves and answer incremental questions such as the build
// order and the set of entries affected by a change.
package buildgraph
