// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestExitCode_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "ok", value: ExitOK, wantValid: true},
		{name: "build failed", value: ExitBuildFailed, wantValid: true},
		{name: "setup", value: ExitSetup, wantValid: true},
		{name: "upper bound", value: 255, wantValid: true},
		{name: "negative", value: -1, wantValid: false},
		{name: "too large", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err == nil) != tt.wantValid {
				t.Fatalf("ExitCode(%d).Validate() = %v, wantValid %v", tt.value, err, tt.wantValid)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidExitCode) {
				t.Errorf("error should wrap ErrInvalidExitCode, got %v", err)
			}
			var ece *InvalidExitCodeError
			if !errors.As(err, &ece) || ece.Value != tt.value {
				t.Errorf("errors.As = %+v, want Value %d", ece, tt.value)
			}
		})
	}
}

func TestExitCode_IsSuccess(t *testing.T) {
	t.Parallel()

	if !ExitOK.IsSuccess() {
		t.Error("ExitOK.IsSuccess() = false")
	}
	if ExitBuildFailed.IsSuccess() || ExitSetup.IsSuccess() {
		t.Error("failure codes must not report success")
	}
	if got := ExitSetup.String(); got != "2" {
		t.Errorf("ExitSetup.String() = %q, want 2", got)
	}
}
