// SPDX-License-Identifier: MPL-2.0

// Package pipeline is the stylesheet stage of the build: it decides what to
// do with every source file, drives the compiler with an import hook backed by
// the resolver, and turns compiler failures into BuildErrors that point at the
// real file, line and column.
//
// Per file the Processor moves through these states:
//
//	Skipped            not selected by the include patterns; passed through
//	Ignored            a partial; produces no output at all
//	EmptyShortCircuit  zero-length source; empty output, compiler never called
//	Compiling          compiler running with a fresh import memo
//	Emitted            compiled output available
//	Failed             compile failed; the Result carries a *BuildError
package pipeline
