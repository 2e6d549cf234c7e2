// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath is a user-supplied path. The empty value means "not set";
	// a set value must not be blank.
	FilesystemPath string

	// InvalidFilesystemPathError is returned for a whitespace-only path.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}
)

func (p FilesystemPath) String() string { return string(p) }

// IsSet reports whether p holds a value.
func (p FilesystemPath) IsSet() bool { return p != "" }

// Validate returns an error if p is set but blank.
func (p FilesystemPath) Validate() error {
	if p.IsSet() && strings.TrimSpace(string(p)) == "" {
		return &InvalidFilesystemPathError{Value: p}
	}
	return nil
}

// Resolve returns p as a clean absolute path, joining relative paths onto
// base. An unset path resolves to base.
func (p FilesystemPath) Resolve(base string) string {
	s := string(p)
	if s == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(s) {
		return filepath.Clean(s)
	}
	return filepath.Join(base, s)
}

// Error implements the error interface for InvalidFilesystemPathError.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: must not be blank", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
