// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"testing"
)

func homeVars() []string {
	if runtime.GOOS == "windows" {
		return []string{"USERPROFILE", "APPDATA"}
	}
	return []string{"HOME", "XDG_CONFIG_HOME"}
}

func TestSetHomeDir_SetsAndRestores(t *testing.T) {
	tmpDir := t.TempDir()
	vars := homeVars()

	originals := make(map[string]string, len(vars))
	for _, v := range vars {
		originals[v] = os.Getenv(v)
	}

	cleanup := SetHomeDir(t, tmpDir)

	if got := os.Getenv(vars[0]); got != tmpDir {
		t.Errorf("%s = %q, want %q", vars[0], got, tmpDir)
	}
	if got := os.Getenv(vars[1]); got == originals[vars[1]] && got != tmpDir {
		t.Errorf("%s was not changed", vars[1])
	}

	cleanup()

	for _, v := range vars {
		if got := os.Getenv(v); got != originals[v] {
			t.Errorf("after cleanup %s = %q, want %q", v, got, originals[v])
		}
	}
}

func TestSetHomeDir_WithTCleanup(t *testing.T) {
	tmpDir := t.TempDir()
	envVar := homeVars()[0]
	original := os.Getenv(envVar)

	t.Run("subtest", func(t *testing.T) {
		t.Cleanup(SetHomeDir(t, tmpDir))

		if got := os.Getenv(envVar); got != tmpDir {
			t.Errorf("%s = %q, want %q", envVar, got, tmpDir)
		}
	})

	if got := os.Getenv(envVar); got != original {
		t.Errorf("after subtest, %s = %q, want %q", envVar, got, original)
	}
}
