// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/stylebuild/internal/pipeline"
	"github.com/invowk/stylebuild/internal/resolve"
)

func TestDisplayPath(t *testing.T) {
	t.Parallel()

	base := filepath.FromSlash("/proj")
	tests := []struct {
		name string
		path string
		want string
	}{
		{"under base", filepath.FromSlash("/proj/src/a.scss"), "src/a.scss"},
		{"outside base", filepath.FromSlash("/lib/_x.scss"), filepath.FromSlash("/lib/_x.scss")},
		{"graph key", "src/a.scss", "src/a.scss"},
		{"unknown file", pipeline.UnknownFile, pipeline.UnknownFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !filepath.IsAbs(base) && filepath.IsAbs(tt.path) {
				t.Skip("no rooted paths without a volume on this platform")
			}
			if got := displayPath(base, tt.path); got != tt.want {
				t.Errorf("displayPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestRenderFailure_Excerpt(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	res := pipeline.Result{
		Source: "a.scss",
		State:  pipeline.StateFailed,
		Err: &pipeline.BuildError{
			Message:  `expected "}"`,
			File:     filepath.Join(base, "a.scss"),
			Contents: "a {\n  color: red;\n  b: c\n",
			Line:     3,
			Column:   7,
		},
	}

	out := renderFailure(base, res)
	for _, want := range []string{
		`a.scss:3:7: expected "}"`,
		"2 |   color: red;",
		"3 |   b: c",
		strings.Repeat(" ", 6) + "^",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("renderFailure() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderFailure_AmbiguousListsCandidates(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	amb := &resolve.ImportAmbiguousError{
		Specifier: "x",
		From:      filepath.Join(base, "a.scss"),
		Directory: base,
		Matches:   []string{filepath.Join(base, "_x.scss"), filepath.Join(base, "x.sass")},
	}
	res := pipeline.Result{
		Source: "a.scss",
		State:  pipeline.StateFailed,
		Err:    &pipeline.BuildError{Message: "ambiguous", File: filepath.Join(base, "a.scss"), Line: 1, Column: 1, Cause: amb},
	}

	out := renderFailure(base, res)
	if !strings.Contains(out, "candidates:") || !strings.Contains(out, "- _x.scss") || !strings.Contains(out, "- x.sass") {
		t.Errorf("renderFailure() = %q, want both candidates", out)
	}
}

func TestRenderFailure_PlainError(t *testing.T) {
	t.Parallel()

	res := pipeline.Result{Source: "a.scss", State: pipeline.StateFailed, Err: errors.New("compile a.scss: boom")}
	if out := renderFailure("/proj", res); !strings.Contains(out, "a.scss: compile a.scss: boom") {
		t.Errorf("renderFailure() = %q", out)
	}
}

func TestRenderSummary(t *testing.T) {
	t.Parallel()

	results := []pipeline.Result{
		{Source: "a.scss", State: pipeline.StateEmitted, Output: "a.css", Contents: "a{}"},
		{Source: "_p.scss", State: pipeline.StateIgnored},
		{Source: "b.scss", State: pipeline.StateFailed, Err: errors.New("x")},
		{Source: "notes.txt", State: pipeline.StateSkipped, Output: "notes.txt", Contents: "hello"},
	}

	out := strings.ToLower(renderSummary("/proj", results))
	for _, want := range []string{"a.scss", "a.css", "ignored", "failed", "4 files", "1 compiled, 1 failed", "8 b"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderSummary() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderTrace_MarksGraphCandidates(t *testing.T) {
	t.Parallel()

	base := filepath.Join(string(filepath.Separator), "proj")
	inGraph := filepath.Join(base, "src", "_a.scss")
	onDisk := filepath.Join(string(filepath.Separator), "vendor", "_a.scss")
	traces := []resolve.DirectoryTrace{
		{
			Directory: filepath.Join(base, "src"),
			Candidates: []resolve.Found{
				{Exists: true, Path: inGraph, Location: resolve.InGraph{Rel: "src/_a.scss", Abs: inGraph}},
			},
		},
		{
			Directory: filepath.Dir(onDisk),
			Candidates: []resolve.Found{
				{Path: onDisk, Location: resolve.OnDisk{Abs: onDisk}},
			},
		},
	}

	lines := strings.Split(renderTrace(base, traces), "\n")
	if len(lines) < 4 {
		t.Fatalf("trace = %q", lines)
	}
	if !strings.Contains(lines[1], "+ src/_a.scss (build graph)") {
		t.Errorf("graph candidate = %q", lines[1])
	}
	if strings.Contains(lines[3], "(build graph)") || !strings.Contains(lines[3], "- "+onDisk) {
		t.Errorf("disk candidate = %q", lines[3])
	}
}
