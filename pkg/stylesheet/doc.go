// SPDX-License-Identifier: MPL-2.0

// Package stylesheet defines the file naming conventions shared by the
// stylebuild pipeline: which extensions are stylesheet sources, which files are
// partials (import-only, never standalone build targets), how an output file
// name is derived from a source file name, and the ordered list of candidate
// files an import specifier may refer to.
//
// Everything in this package is pure: no function touches the filesystem.
package stylesheet
