// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"context"
	"errors"
	"fmt"
)

// EntryToken is the file token of the top-level source handed to Compile.
// Imported sources use their resolved absolute path as token.
const EntryToken = "stdin"

// ErrCompile is the sentinel error wrapped by Error.
var ErrCompile = errors.New("compile failed")

type (
	// Compiler turns a stylesheet source into CSS.
	Compiler interface {
		Compile(ctx context.Context, req Request) (Result, error)
	}

	// Importer resolves an import on behalf of a Compiler. from is the file
	// token of the source containing the import.
	Importer interface {
		Import(ctx context.Context, specifier, from string) (Import, error)
	}

	// ImporterFunc adapts a function to the Importer interface.
	ImporterFunc func(ctx context.Context, specifier, from string) (Import, error)

	// Request is one top-level compilation.
	Request struct {
		// Source is the entry stylesheet text.
		Source string
		// File is the token of the entry source, normally EntryToken.
		File string
		// Importer answers imports. A nil Importer fails every import.
		Importer Importer
		// Options are forwarded to the compiler verbatim.
		Options Options
		// Indented marks Source as indented syntax, as for a .sass entry.
		Indented bool
	}

	// Result is a successful compilation.
	Result struct {
		CSS string
	}

	// Import is an importer answer. Path becomes the file token of Contents.
	Import struct {
		Path     string
		Contents string
	}

	// Error is a positioned compile failure. File is a token as the compiler
	// saw it: EntryToken, a resolved import path or an unresolved specifier.
	// Line and Column are 1-based; zero means unknown.
	Error struct {
		Message string
		File    string
		Line    int
		Column  int
		// Cause is set when the failure originated in the Importer.
		Cause error
	}
)

// Import calls f(ctx, specifier, from).
func (f ImporterFunc) Import(ctx context.Context, specifier, from string) (Import, error) {
	return f(ctx, specifier, from)
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Unwrap returns ErrCompile and the cause, if any, for errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrCompile, e.Cause}
	}
	return []error{ErrCompile}
}
