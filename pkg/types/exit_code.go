// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitOK means every stylesheet was processed.
	ExitOK ExitCode = 0
	// ExitBuildFailed means at least one stylesheet failed to compile or an
	// import could not be resolved.
	ExitBuildFailed ExitCode = 1
	// ExitSetup means the run stopped before any file was processed, for
	// example because the configuration was invalid.
	ExitSetup ExitCode = 2
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is a process exit status. POSIX limits it to 0-255.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode for errors.Is.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside 0-255.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether c is ExitOK.
func (c ExitCode) IsSuccess() bool { return c == ExitOK }

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
