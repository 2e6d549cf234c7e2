// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invowk/stylebuild/internal/buildgraph"
	"github.com/invowk/stylebuild/internal/compiler"
	"github.com/invowk/stylebuild/internal/compiler/builtin"
	"github.com/invowk/stylebuild/internal/resolve"
	"github.com/invowk/stylebuild/internal/testutil"
)

// fakeCompiler counts calls and delegates to fn.
type fakeCompiler struct {
	calls atomic.Int32
	fn    func(ctx context.Context, req compiler.Request) (compiler.Result, error)
}

func (f *fakeCompiler) Compile(ctx context.Context, req compiler.Request) (compiler.Result, error) {
	f.calls.Add(1)
	if f.fn == nil {
		return compiler.Result{CSS: "compiled"}, nil
	}
	return f.fn(ctx, req)
}

func newProcessor(t *testing.T, cfg Config) *Processor {
	t.Helper()
	if cfg.Compiler == nil {
		cfg.Compiler = builtin.New(nil)
	}
	p, err := NewProcessor(cfg)
	require.NoError(t, err)
	return p
}

func TestProcess_EmptySourceShortCircuits(t *testing.T) {
	t.Parallel()

	fc := &fakeCompiler{}
	p := newProcessor(t, Config{Compiler: fc, Root: t.TempDir()})

	res, err := p.Process(context.Background(), SourceFile{Path: "styles/main.scss"})
	require.NoError(t, err)

	assert.Equal(t, StateEmptyShortCircuit, res.State)
	assert.Equal(t, "styles/main.css", res.Output)
	assert.Empty(t, res.Contents)
	assert.Equal(t, int32(0), fc.calls.Load())
	assert.Equal(t, map[string]string{"styles/main.css": ""}, Outputs([]Result{res}))
}

func TestProcess_PartialIsIgnored(t *testing.T) {
	t.Parallel()

	fc := &fakeCompiler{}
	p := newProcessor(t, Config{Compiler: fc, Root: t.TempDir()})

	res, err := p.Process(context.Background(), SourceFile{Path: "_colors.scss", Contents: "$c: red;"})
	require.NoError(t, err)

	assert.Equal(t, StateIgnored, res.State)
	assert.Empty(t, Outputs([]Result{res}))
	assert.Equal(t, int32(0), fc.calls.Load())
}

func TestProcess_UnmatchedFileIsPassedThrough(t *testing.T) {
	t.Parallel()

	fc := &fakeCompiler{}
	p := newProcessor(t, Config{Compiler: fc, Root: t.TempDir()})

	res, err := p.Process(context.Background(), SourceFile{Path: "vendor/reset.css", Contents: "* { margin: 0 }"})
	require.NoError(t, err)

	assert.Equal(t, StateSkipped, res.State)
	assert.Equal(t, map[string]string{"vendor/reset.css": "* { margin: 0 }"}, Outputs([]Result{res}))
	assert.Equal(t, int32(0), fc.calls.Load())
}

func TestProcess_ResolvesPartialNextToEntry(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"a/_foo.scss": ".foo { color: red; }",
	})

	var got compiler.Import
	fc := &fakeCompiler{fn: func(ctx context.Context, req compiler.Request) (compiler.Result, error) {
		imp, err := req.Importer.Import(ctx, "foo", compiler.EntryToken)
		got = imp
		return compiler.Result{CSS: imp.Contents}, err
	}}
	p := newProcessor(t, Config{Compiler: fc, Root: root})

	res, err := p.Process(context.Background(), SourceFile{Path: "a/entry.scss", Contents: `@import "foo";`})
	require.NoError(t, err)

	wantPath := filepath.Join(root, "a", "_foo.scss")
	assert.Equal(t, wantPath, got.Path)
	assert.Equal(t, ".foo { color: red; }", got.Contents)
	assert.Equal(t, StateEmitted, res.State)
	assert.Equal(t, "a/entry.css", res.Output)
	assert.Equal(t, []string{wantPath}, res.Dependencies)
}

func TestProcess_CompilesWithLoadPaths(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"lib/_vars.scss":   "$accent: #09f;",
		"lib/_button.scss": `@import "vars";` + "\n.btn { color: $accent; }",
	})

	p := newProcessor(t, Config{
		Root:      filepath.Join(root, "src"),
		LoadPaths: []string{filepath.Join(root, "lib")},
		Options:   compiler.Options{OutputStyle: compiler.OutputCompact},
	})

	res, err := p.Process(context.Background(), SourceFile{Path: "main.scss", Contents: `@import "button";`})
	require.NoError(t, err)

	assert.Equal(t, ".btn { color: #09f; }\n", res.Contents)
	assert.Equal(t, []string{
		filepath.Join(root, "lib", "_button.scss"),
		filepath.Join(root, "lib", "_vars.scss"),
	}, res.Dependencies)
}

func TestProcess_ErrorInImportCarriesImportContents(t *testing.T) {
	t.Parallel()

	partial := ".b {\n  color: $missing;\n}\n"
	root := testutil.WriteTree(t, t.TempDir(), map[string]string{"_b.scss": partial})
	p := newProcessor(t, Config{Root: root})

	_, err := p.Process(context.Background(), SourceFile{Path: "main.scss", Contents: `@import "b";`})
	require.Error(t, err)

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, filepath.Join(root, "_b.scss"), be.File)
	assert.Equal(t, partial, be.Contents)
	assert.Equal(t, 2, be.Line)
	assert.Equal(t, 10, be.Column)
	assert.Equal(t, "undefined variable: $missing", be.Message)
	assert.ErrorIs(t, err, compiler.ErrCompile)
}

func TestProcess_ErrorInEntry(t *testing.T) {
	t.Parallel()

	src := ".a {\n  color: red;\n"
	p := newProcessor(t, Config{Root: t.TempDir()})

	res, err := p.Process(context.Background(), SourceFile{Path: "main.scss", Contents: src})
	require.Error(t, err)
	assert.Equal(t, StateFailed, res.State)

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, filepath.Join(p.root, "main.scss"), be.File)
	assert.Equal(t, src, be.Contents)
}

func TestProcess_ImportNotFound(t *testing.T) {
	t.Parallel()

	p := newProcessor(t, Config{Root: t.TempDir()})

	_, err := p.Process(context.Background(), SourceFile{Path: "main.scss", Contents: "\n@import \"nope\";"})
	require.Error(t, err)

	var nf *resolve.ImportNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.Specifier)

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 2, be.Line)
	assert.Equal(t, 9, be.Column)
	assert.Contains(t, be.Message, "nope")
}

func TestProcess_AmbiguousImport(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"_x.scss": ".x { a: 1; }",
		"_x.sass": ".x { a: 2; }",
	})
	p := newProcessor(t, Config{Root: root})

	_, err := p.Process(context.Background(), SourceFile{Path: "main.scss", Contents: `@import "x";`})
	require.ErrorIs(t, err, resolve.ErrImportAmbiguous)

	var amb *resolve.ImportAmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Len(t, amb.Matches, 2)

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.NotContains(t, be.Message, "\n")
}

func TestProcess_IndentedSassEntry(t *testing.T) {
	t.Parallel()

	p := newProcessor(t, Config{Root: t.TempDir()})

	res, err := p.Process(context.Background(), SourceFile{Path: "site.sass", Contents: "a\n  b: c\n"})
	require.Error(t, err)
	assert.Equal(t, StateFailed, res.State)

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Message, "indented syntax is not supported")
	assert.Equal(t, 1, be.Line)
}

func TestProcess_UnknownToken(t *testing.T) {
	t.Parallel()

	fc := &fakeCompiler{fn: func(context.Context, compiler.Request) (compiler.Result, error) {
		return compiler.Result{}, &compiler.Error{Message: "bad\nsecond line", File: "elsewhere", Line: 4, Column: 2}
	}}
	p := newProcessor(t, Config{Compiler: fc, Root: t.TempDir()})

	_, err := p.Process(context.Background(), SourceFile{Path: "main.scss", Contents: "x"})

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, UnknownFile, be.File)
	assert.Empty(t, be.Contents)
	assert.Equal(t, "bad", be.Message)
	assert.Equal(t, 4, be.Line)
}

func TestProcess_NonCompileErrorIsWrapped(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	fc := &fakeCompiler{fn: func(context.Context, compiler.Request) (compiler.Result, error) {
		return compiler.Result{}, boom
	}}
	p := newProcessor(t, Config{Compiler: fc, Root: t.TempDir()})

	res, err := p.Process(context.Background(), SourceFile{Path: "main.scss", Contents: "x"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, res.State)
}

func TestProcess_GraphContentsAndDependencies(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"_theme.scss": "$c: stale;",
	})
	store, err := buildgraph.New(root)
	require.NoError(t, err)
	store.Put("_theme.scss", "$c: fresh;")
	store.Put("main.scss", `@import "theme"; .a { color: $c; }`)

	p := newProcessor(t, Config{Graph: store, Options: compiler.Options{OutputStyle: compiler.OutputCompact}})

	res, err := p.Process(context.Background(), SourceFile{Path: "main.scss", Contents: `@import "theme"; .a { color: $c; }`})
	require.NoError(t, err)

	assert.Equal(t, ".a { color: fresh; }\n", res.Contents)
	assert.Equal(t, []string{"_theme.scss"}, store.Dependencies("main.scss"))
	assert.Equal(t, []string{"main.scss"}, store.Affected("_theme.scss"))
}

func TestProcess_AmbiguousImportRecordsNoDependency(t *testing.T) {
	t.Parallel()

	store, err := buildgraph.New(t.TempDir())
	require.NoError(t, err)
	store.Put("_x.scss", ".x { a: 1; }")
	store.Put("_x.sass", ".x { a: 2; }")
	store.Put("_y.scss", ".y { b: 1; }")
	store.Put("main.scss", `@import "y"; @import "x";`)

	p := newProcessor(t, Config{Graph: store})

	_, err = p.Process(context.Background(), SourceFile{Path: "main.scss", Contents: `@import "y"; @import "x";`})
	require.ErrorIs(t, err, resolve.ErrImportAmbiguous)

	assert.Equal(t, []string{"_y.scss"}, store.Dependencies("main.scss"))
	assert.Empty(t, store.Affected("_x.scss"))
	assert.Empty(t, store.Affected("_x.sass"))
}

func TestProcessAll_FailuresAreIsolated(t *testing.T) {
	t.Parallel()

	p := newProcessor(t, Config{Root: t.TempDir(), Concurrency: 2, Options: compiler.Options{OutputStyle: compiler.OutputCompressed}})

	files := []SourceFile{
		{Path: "ok.scss", Contents: ".a { b: c; }"},
		{Path: "bad.scss", Contents: `@import "missing";`},
		{Path: "_partial.scss", Contents: ".p { q: r; }"},
		{Path: "empty.scss"},
		{Path: "logo.svg", Contents: "<svg/>"},
	}
	results := p.ProcessAll(context.Background(), files)
	require.Len(t, results, len(files))

	states := make([]State, len(results))
	for i, r := range results {
		states[i] = r.State
	}
	assert.Equal(t, []State{StateEmitted, StateFailed, StateIgnored, StateEmptyShortCircuit, StateSkipped}, states)

	assert.Equal(t, map[string]string{
		"ok.css":    ".a{b:c}\n",
		"empty.css": "",
		"logo.svg":  "<svg/>",
	}, Outputs(results))

	failed := Failures(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "bad.scss", failed[0].Source)
	assert.ErrorIs(t, failed[0].Err, resolve.ErrImportNotFound)
}

func TestNewProcessor_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewProcessor(Config{})
	require.ErrorIs(t, err, ErrNoCompiler)

	_, err = NewProcessor(Config{Compiler: &fakeCompiler{}, Options: compiler.Options{Linefeed: "nl"}})
	require.ErrorIs(t, err, compiler.ErrInvalidOptions)
}
