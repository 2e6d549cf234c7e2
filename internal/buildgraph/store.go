// SPDX-License-Identifier: MPL-2.0

package buildgraph

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/invowk/stylebuild/internal/dag"
	"github.com/invowk/stylebuild/internal/resolve"
)

type (
	// Store is the virtual build graph. Keys are slash-separated paths relative
	// to the root. A Store is safe for concurrent use.
	Store struct {
		root string

		mu    sync.RWMutex
		files map[string]string
		deps  *dag.Graph
	}

	// Stats summarizes the contents of a Store.
	Stats struct {
		Files int
		Bytes uint64
	}
)

// compile-time check
var _ resolve.Graph = (*Store)(nil)

// New creates an empty Store rooted at root. root is made absolute.
func New(root string) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("buildgraph: resolve root: %w", err)
	}
	return &Store{
		root:  absRoot,
		files: make(map[string]string),
		deps:  dag.New(),
	}, nil
}

// Load enumerates every regular file under root selected by m and reads it
// into a new Store. A nil matcher selects every non-ignored file.
func Load(ctx context.Context, root string, m *Matcher) (*Store, error) {
	s, err := New(root)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = &Matcher{ignores: DefaultIgnores()}
	}

	fsys := os.DirFS(s.root)
	var rels []string
	err = doublestar.GlobWalk(fsys, "**", func(rel string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.Match(rel) {
			rels = append(rels, rel)
		}
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("buildgraph: enumerate %s: %w", s.root, err)
	}

	slices.Sort(rels)
	for _, rel := range rels {
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return nil, fmt.Errorf("buildgraph: read %s: %w", rel, err)
		}
		s.Put(rel, string(data))
	}
	return s, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string { return s.root }

// Put adds or replaces a file.
func (s *Store) Put(rel, contents string) {
	rel = cleanRel(rel)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[rel] = contents
	s.deps.AddNode(rel)
}

// Lookup returns the current contents of rel.
func (s *Store) Lookup(_ context.Context, rel string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contents, ok := s.files[cleanRel(rel)]
	return contents, ok
}

// Files returns every file path in lexical order.
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := make([]string, 0, len(s.files))
	for rel := range s.files {
		files = append(files, rel)
	}
	slices.Sort(files)
	return files
}

// Stats returns the number of files and their total size.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{Files: len(s.files)}
	for _, c := range s.files {
		st.Bytes += uint64(len(c))
	}
	return st
}

// Abs returns the absolute filesystem path of rel.
func (s *Store) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(cleanRel(rel)))
}

// Rel converts an absolute path under the root to a graph key.
func (s *Store) Rel(abs string) (string, bool) {
	loc := resolve.NewSource(s, nil).Locate(abs)
	g, ok := loc.(resolve.InGraph)
	if !ok {
		return "", false
	}
	return g.Rel, true
}

// RecordDependency records that entry imports dep. Both become graph nodes.
// Lookups never record edges; callers record the import that resolution
// settled on.
func (s *Store) RecordDependency(entry, dep string) {
	entry, dep = cleanRel(entry), cleanRel(dep)
	if entry == dep {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.AddNode(dep)
	s.deps.AddNode(entry)
	s.deps.AddEdge(dep, entry)
}

// ResetDependencies forgets every import recorded for entry. It is called
// before entry is recompiled.
func (s *Store) ResetDependencies(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.RemoveEdgesTo(cleanRel(entry))
}

// Dependencies returns the files entry directly imports.
func (s *Store) Dependencies(entry string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deps.Dependencies(cleanRel(entry))
}

// Affected returns every file that transitively imports rel.
func (s *Store) Affected(rel string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deps.Descendants(cleanRel(rel))
}

// BuildOrder returns every file ordered so that imports precede importers.
// Import cycles yield a *dag.CycleError.
func (s *Store) BuildOrder() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deps.TopologicalSort()
}

func cleanRel(rel string) string {
	return path.Clean(filepath.ToSlash(rel))
}
