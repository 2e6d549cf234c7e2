// SPDX-License-Identifier: MPL-2.0

package buildgraph

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invowk/stylebuild/internal/dag"
	"github.com/invowk/stylebuild/internal/testutil"
)

func TestLoad_ReadsSelectedFiles(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"main.scss":              `@import "colors";`,
		"_colors.scss":           "$c: red;",
		"vendor/reset.css":       "* { margin: 0; }",
		"node_modules/x/_y.scss": "ignored",
		".git/HEAD":              "ref",
	})

	m, err := NewMatcher(nil, nil)
	require.NoError(t, err)

	s, err := Load(context.Background(), root, m)
	require.NoError(t, err)

	assert.Equal(t, []string{"_colors.scss", "main.scss", "vendor/reset.css"}, s.Files())

	contents, ok := s.Lookup(context.Background(), "main.scss")
	require.True(t, ok)
	assert.Equal(t, `@import "colors";`, contents)

	st := s.Stats()
	assert.Equal(t, 3, st.Files)
	assert.Equal(t, uint64(len(`@import "colors";`)+len("$c: red;")+len("* { margin: 0; }")), st.Bytes)
}

func TestLoad_IncludePatterns(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"a.scss":    "",
		"b/_c.sass": "",
		"d.css":     "",
		"notes.txt": "",
	})

	m, err := NewMatcher([]string{"**/*.{scss,sass}"}, nil)
	require.NoError(t, err)

	s, err := Load(context.Background(), root, m)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.scss", "b/_c.sass"}, s.Files())
}

func TestNewMatcher_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewMatcher([]string{"[unclosed"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid include pattern")
}

func TestStore_LookupDoesNotRecordDependencies(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	require.NoError(t, err)
	s.Put("main.scss", `@import "a";`)
	s.Put("_a.scss", "")

	contents, ok := s.Lookup(context.Background(), "_a.scss")
	require.True(t, ok)
	assert.Empty(t, contents)
	_, ok = s.Lookup(context.Background(), "missing.scss")
	assert.False(t, ok)

	assert.Empty(t, s.Dependencies("main.scss"))
	assert.Empty(t, s.Affected("_a.scss"))
}

func TestStore_RecordDependency(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	require.NoError(t, err)
	s.Put("main.scss", `@import "a";`)
	s.Put("_a.scss", `@import "b";`)
	s.Put("_b.scss", "")
	s.Put("other.scss", `@import "b";`)

	s.RecordDependency("main.scss", "_a.scss")
	s.RecordDependency("_a.scss", "_b.scss")
	s.RecordDependency("other.scss", "_b.scss")
	s.RecordDependency("main.scss", "main.scss")

	assert.Equal(t, []string{"_a.scss"}, s.Dependencies("main.scss"))
	assert.ElementsMatch(t, []string{"_a.scss", "other.scss", "main.scss"}, s.Affected("_b.scss"))

	order, err := s.BuildOrder()
	require.NoError(t, err)
	assert.Less(t, indexOf(order, "_b.scss"), indexOf(order, "_a.scss"))
	assert.Less(t, indexOf(order, "_a.scss"), indexOf(order, "main.scss"))
	assert.Less(t, indexOf(order, "_b.scss"), indexOf(order, "other.scss"))
}

func TestStore_ResetDependencies(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	require.NoError(t, err)
	s.RecordDependency("main.scss", "_a.scss")
	s.RecordDependency("main.scss", "_b.scss")

	s.ResetDependencies("main.scss")
	assert.Empty(t, s.Dependencies("main.scss"))
	assert.Empty(t, s.Affected("_a.scss"))
}

func TestStore_BuildOrderCycle(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	require.NoError(t, err)
	s.RecordDependency("_a.scss", "_b.scss")
	s.RecordDependency("_b.scss", "_a.scss")

	_, err = s.BuildOrder()
	require.Error(t, err)
	assert.True(t, errors.Is(err, dag.ErrCycle))

	var cycleErr *dag.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.ElementsMatch(t, []string{"_a.scss", "_b.scss"}, cycleErr.Files)
}

func TestStore_RelAndAbs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	abs := s.Abs("sub/_x.scss")
	assert.Equal(t, filepath.Join(root, "sub", "_x.scss"), abs)

	rel, ok := s.Rel(abs)
	require.True(t, ok)
	assert.Equal(t, "sub/_x.scss", rel)

	_, ok = s.Rel(filepath.Join(filepath.Dir(root), "elsewhere.scss"))
	assert.False(t, ok)
}

func TestMatcher_Match(t *testing.T) {
	t.Parallel()

	m, err := NewMatcher([]string{"**/*.scss"}, []string{"legacy/**"})
	require.NoError(t, err)

	tests := []struct {
		rel  string
		want bool
	}{
		{"main.scss", true},
		{"a/b/_c.scss", true},
		{"a/b/c.sass", false},
		{"legacy/old.scss", false},
		{"node_modules/pkg/x.scss", false},
		{"a/.git/x.scss", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, m.Match(tt.rel))
		})
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
