// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrImportNotFound is the sentinel error wrapped by ImportNotFoundError.
	ErrImportNotFound = errors.New("import not found")
	// ErrImportAmbiguous is the sentinel error wrapped by ImportAmbiguousError.
	ErrImportAmbiguous = errors.New("ambiguous import")
	// ErrIO is the sentinel error wrapped by IOError.
	ErrIO = errors.New("read failed")
)

type (
	// ImportNotFoundError is returned when no candidate of a specifier exists in
	// any search directory.
	ImportNotFoundError struct {
		// Specifier is the import as written.
		Specifier string
		// From is the absolute path of the importing file.
		From string
		// Searched lists the search directories in the order they were tried.
		Searched []string
	}

	// ImportAmbiguousError is returned when two or more candidates of a
	// specifier exist in the same search directory. It is never resolved by
	// precedence; one of the files has to be renamed or removed.
	ImportAmbiguousError struct {
		Specifier string
		From      string
		// Directory is the search directory that held the matches.
		Directory string
		// Matches are the existing candidates, in candidate order.
		Matches []string
	}

	// IOError wraps a read failure other than "does not exist". It aborts the
	// compile of the file being resolved and is never retried.
	IOError struct {
		Path string
		Err  error
	}
)

func (e *ImportNotFoundError) Error() string {
	return fmt.Sprintf("file to import not found or unreadable: %s", e.Specifier)
}

// Unwrap returns ErrImportNotFound for errors.Is.
func (e *ImportNotFoundError) Unwrap() error { return ErrImportNotFound }

func (e *ImportAmbiguousError) Error() string {
	return fmt.Sprintf("it's not clear which file to import for '@import %q' in %s.\nCandidates:\n  %s\nPlease delete or rename all but one of these files.",
		e.Specifier, e.From, strings.Join(e.Matches, "\n  "))
}

// Unwrap returns ErrImportAmbiguous for errors.Is.
func (e *ImportAmbiguousError) Unwrap() error { return ErrImportAmbiguous }

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

// Unwrap returns both ErrIO and the underlying error, so errors.Is matches
// either (e.g. fs.ErrPermission).
func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }
