// SPDX-License-Identifier: MPL-2.0

// Package compiler defines the contract between the build pipeline and a
// stylesheet compiler. A compiler is an opaque capability: source text and an
// import hook go in, CSS or a positioned *Error comes out.
//
// The import hook is an explicit request/response interface. The compiler calls
// Importer.Import for every non-CSS import it meets, passing the file token of
// the importing source; the pipeline answers with the resolved path and its
// contents, or with the resolution error to report at the import site.
package compiler
