// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"slices"
	"sync"
)

// Memo records the imports resolved during one top-level compile so compile
// errors can be attributed to the right file. It is safe for concurrent use
// and lives exactly as long as the compile. Later records win.
type Memo struct {
	mu       sync.Mutex
	paths    map[string]string
	contents map[string]string
	order    []string
}

// NewMemo creates an empty Memo.
func NewMemo() *Memo {
	return &Memo{
		paths:    make(map[string]string),
		contents: make(map[string]string),
	}
}

// Record remembers that specifier resolved to path with the given contents.
func (m *Memo) Record(specifier, path, contents string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[specifier] = path
	if _, seen := m.contents[path]; !seen {
		m.order = append(m.order, path)
	}
	m.contents[path] = contents
}

// Lookup maps a compiler file token to a path and its remembered contents.
// The token is tried as a specifier first, then as a path.
func (m *Memo) Lookup(token string) (path, contents string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = token
	if p, isSpec := m.paths[token]; isSpec {
		path = p
	}
	contents, ok = m.contents[path]
	if !ok {
		return "", "", false
	}
	return path, contents, true
}

// Paths returns every resolved path in first-resolution order.
func (m *Memo) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order)
}
