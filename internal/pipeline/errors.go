// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"fmt"
	"strings"

	"github.com/invowk/stylebuild/internal/compiler"
)

// UnknownFile is reported when a compile error cannot be attributed to the
// entry or to any import resolved during the compile.
const UnknownFile = "<unknown file>"

type (
	// BuildError is a compile failure attributed to a concrete file.
	BuildError struct {
		// Message is the first line of the compiler message.
		Message string
		// File is the path of the failing file, or UnknownFile.
		File string
		// Contents is the text of File as seen by the compile.
		Contents string
		Line     int
		Column   int
		// Cause is the resolution error behind an import failure, if any.
		Cause error
	}

	// ExcerptLine is one source line of a BuildError excerpt.
	ExcerptLine struct {
		Number  int
		Text    string
		Current bool
	}
)

func (e *BuildError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Unwrap exposes compiler.ErrCompile and the cause to errors.Is and errors.As.
func (e *BuildError) Unwrap() []error {
	if e.Cause != nil {
		return []error{compiler.ErrCompile, e.Cause}
	}
	return []error{compiler.ErrCompile}
}

// Excerpt returns the lines of Contents within radius of the failing line.
// It is empty when the position or the contents are unknown.
func (e *BuildError) Excerpt(radius int) []ExcerptLine {
	if e.Line <= 0 || e.Contents == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(e.Contents, "\r\n", "\n"), "\n")
	if e.Line > len(lines) {
		return nil
	}

	first := max(1, e.Line-radius)
	last := min(len(lines), e.Line+radius)
	out := make([]ExcerptLine, 0, last-first+1)
	for n := first; n <= last; n++ {
		out = append(out, ExcerptLine{Number: n, Text: lines[n-1], Current: n == e.Line})
	}
	return out
}

// translate attributes a raw compiler error. The entry token and the entry
// path map to the entry source; any other token goes through the memo.
func translate(ce *compiler.Error, entryPath, entrySource string, memo *Memo) *BuildError {
	be := &BuildError{
		Message: firstLine(ce.Message),
		Line:    ce.Line,
		Column:  ce.Column,
		Cause:   ce.Cause,
	}

	switch {
	case ce.File == compiler.EntryToken || ce.File == entryPath:
		be.File = entryPath
		be.Contents = entrySource
	default:
		if path, contents, ok := memo.Lookup(ce.File); ok {
			be.File = path
			be.Contents = contents
		} else {
			be.File = UnknownFile
		}
	}
	return be
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
