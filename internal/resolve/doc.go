// SPDX-License-Identifier: MPL-2.0

// Package resolve turns an import specifier into exactly one concrete
// stylesheet file.
//
// Resolution walks an ordered list of search directories: the importing file's
// own directory first, then each configured load path. In every directory the
// candidates produced by stylesheet.Candidates are checked concurrently; the
// first directory holding exactly one existing candidate wins, a directory
// holding several is an ambiguity error, and later directories are never
// consulted once an earlier one decided.
//
// Existence is answered by a Source, which routes every candidate either to
// the virtual build graph (files under the graph root, served from memory) or
// to the disk.
//
// File organization:
//   - errors.go: sentinel errors and typed resolution errors
//   - source.go: Location union, Graph and FileReader contracts, Source
//   - walker.go: Walker (load-path walk) and its trace mode
package resolve
