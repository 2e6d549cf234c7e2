// SPDX-License-Identifier: MPL-2.0

// Package dag models the import relationships between stylesheet files as a
// directed graph. An edge from A to B means "B imports A", so A has to be
// current before B can be built. The graph answers the two questions an
// incremental build asks: in which order can every file be built, and which
// files are stale once a given file changes.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCycle is wrapped by CycleError.
var ErrCycle = errors.New("import cycle")

type (
	// CycleError indicates that the imports form a cycle, so no build order exists.
	CycleError struct {
		// Files lists the files left with unresolved dependencies, in insertion
		// order. It contains at least the files on the cycle.
		Files []string
	}

	// Graph is a directed graph keyed by file path. It is not safe for
	// concurrent use; callers that share a Graph must synchronize access.
	Graph struct {
		// dependents maps a file to the files that import it.
		dependents map[string][]string
		// dependencies maps a file to the files it imports.
		dependencies map[string][]string
		// nodes keeps insertion order so every query is deterministic.
		nodes   []string
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("import cycle detected: %s", strings.Join(e.Files, " -> "))
}

// Unwrap returns ErrCycle for errors.Is.
func (e *CycleError) Unwrap() error { return ErrCycle }

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		dependents:   make(map[string][]string),
		dependencies: make(map[string][]string),
		nodeSet:      make(map[string]bool),
	}
}

// AddNode adds a file. Adding an existing file is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge records that dependent imports dependency. Both files are added if
// needed; repeating an edge is a no-op.
func (g *Graph) AddEdge(dependency, dependent string) {
	g.AddNode(dependency)
	g.AddNode(dependent)
	if slices.Contains(g.dependents[dependency], dependent) {
		return
	}
	g.dependents[dependency] = append(g.dependents[dependency], dependent)
	g.dependencies[dependent] = append(g.dependencies[dependent], dependency)
}

// RemoveEdgesTo drops every recorded import of dependent. It is used before
// re-recording a file's imports after it was rebuilt.
func (g *Graph) RemoveEdgesTo(dependent string) {
	for _, dep := range g.dependencies[dependent] {
		g.dependents[dep] = slices.DeleteFunc(g.dependents[dep], func(s string) bool { return s == dependent })
	}
	delete(g.dependencies, dependent)
}

// Has reports whether the file is part of the graph.
func (g *Graph) Has(name string) bool {
	return g.nodeSet[name]
}

// Nodes returns all files in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// Dependencies returns the files directly imported by name.
func (g *Graph) Dependencies(name string) []string {
	return slices.Clone(g.dependencies[name])
}

// Dependents returns the files that directly import name.
func (g *Graph) Dependents(name string) []string {
	return slices.Clone(g.dependents[name])
}

// Descendants returns every file that transitively imports name, in
// breadth-first order. name itself is not included, even on a cycle.
func (g *Graph) Descendants(name string) []string {
	seen := map[string]bool{name: true}
	queue := slices.Clone(g.dependents[name])
	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if seen[node] {
			continue
		}
		seen[node] = true
		result = append(result, node)
		queue = append(queue, g.dependents[node]...)
	}
	return result
}

// TopologicalSort returns a build order using Kahn's algorithm: every file
// appears after all files it imports. Files at the same depth keep insertion
// order. A cycle yields a CycleError.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = len(g.dependencies[node])
	}

	queue := make([]string, 0)
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dependent := range g.dependents[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var remaining []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				remaining = append(remaining, node)
			}
		}
		return nil, &CycleError{Files: remaining}
	}

	return result, nil
}
