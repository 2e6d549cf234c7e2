// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/invowk/stylebuild/pkg/types"
)

func TestExitError_Error(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 2}).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q, want %q", got, "exit status 2")
	}

	cause := errors.New("config invalid")
	exitErr := &ExitError{Code: types.ExitSetup, Err: cause}
	if exitErr.Error() != "config invalid" {
		t.Errorf("Error() = %q, want %q", exitErr.Error(), "config invalid")
	}
	if !errors.Is(exitErr, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestExitCodeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want types.ExitCode
	}{
		{"nil", nil, types.ExitOK},
		{"build failure", &ExitError{Code: types.ExitBuildFailed}, types.ExitBuildFailed},
		{"setup failure", &ExitError{Code: types.ExitSetup}, types.ExitSetup},
		{"wrapped", fmt.Errorf("run: %w", &ExitError{Code: types.ExitSetup}), types.ExitSetup},
		{"out of range", &ExitError{Code: 300}, types.ExitBuildFailed},
		{"cobra usage error", errors.New(`unknown flag: --nope`), types.ExitSetup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeOf(tt.err); got != tt.want {
				t.Errorf("exitCodeOf() = %d, want %d", got, tt.want)
			}
		})
	}
}
