// SPDX-License-Identifier: MPL-2.0

package buildgraph

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnores lists path patterns that are never part of the build graph:
// VCS metadata, dependency caches, editor swap files and OS metadata files.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/.sass-cache/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// Matcher selects slash-separated relative paths with doublestar patterns.
// An empty pattern list matches everything that is not ignored.
type Matcher struct {
	patterns []string
	ignores  []string
}

// NewMatcher validates the patterns eagerly so invalid globs fail at setup
// time rather than silently matching nothing. The default ignores are always
// appended to ignore.
func NewMatcher(patterns, ignore []string) (*Matcher, error) {
	if err := validatePatterns(patterns, "include"); err != nil {
		return nil, err
	}
	if err := validatePatterns(ignore, "ignore"); err != nil {
		return nil, err
	}
	return &Matcher{
		patterns: slices.Clone(patterns),
		ignores:  append(slices.Clone(ignore), defaultIgnores...),
	}, nil
}

// Match reports whether rel is selected.
func (m *Matcher) Match(rel string) bool {
	normalized := filepath.ToSlash(rel)
	if matchAny(m.ignores, normalized) {
		return false
	}
	return len(m.patterns) == 0 || matchAny(m.patterns, normalized)
}

// Patterns returns a copy of the include patterns.
func (m *Matcher) Patterns() []string { return slices.Clone(m.patterns) }

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string { return slices.Clone(defaultIgnores) }

// MatchAny reports whether the slash-separated path matches one of patterns.
// Invalid patterns never match.
func MatchAny(patterns []string, rel string) bool {
	return matchAny(patterns, filepath.ToSlash(rel))
}

func matchAny(patterns []string, normalized string) bool {
	for _, pat := range patterns {
		if matched, matchErr := doublestar.Match(pat, normalized); matchErr == nil && matched {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if _, err := doublestar.Match(pat, ""); err != nil {
			return fmt.Errorf("buildgraph: invalid %s pattern %q: %w", label, pat, err)
		}
	}
	return nil
}
