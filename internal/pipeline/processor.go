// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/invowk/stylebuild/internal/buildgraph"
	"github.com/invowk/stylebuild/internal/compiler"
	"github.com/invowk/stylebuild/internal/resolve"
	"github.com/invowk/stylebuild/pkg/stylesheet"
)

const (
	// StateSkipped marks a file not selected by the include patterns.
	StateSkipped State = "skipped"
	// StateIgnored marks a partial.
	StateIgnored State = "ignored"
	// StateEmptyShortCircuit marks a zero-length source.
	StateEmptyShortCircuit State = "empty"
	// StateCompiling marks a compile in progress.
	StateCompiling State = "compiling"
	// StateEmitted marks a successful compile.
	StateEmitted State = "emitted"
	// StateFailed marks a failed compile.
	StateFailed State = "failed"
)

// ErrNoCompiler is returned by NewProcessor when no compiler is configured.
var ErrNoCompiler = errors.New("no compiler configured")

type (
	// State is the processing state of one source file.
	State string

	// SourceFile is one file handed to the stage. Path is the build graph key
	// (slash-separated, relative to the root) or an absolute path.
	SourceFile struct {
		Path     string
		Contents string
	}

	// Result is the outcome for one SourceFile.
	Result struct {
		Source string
		State  State
		// Output is the output path; empty for ignored and failed files.
		Output   string
		Contents string
		// Dependencies are the absolute paths of every resolved import.
		Dependencies []string
		Err          error
	}

	// Config configures a Processor.
	Config struct {
		// Compiler is required.
		Compiler compiler.Compiler
		// Options are forwarded to the compiler verbatim.
		Options compiler.Options
		// Include selects the files to compile. Nil selects every file with a
		// recognized stylesheet extension.
		Include *buildgraph.Matcher
		// LoadPaths are absolute directories searched after the importing
		// file's directory.
		LoadPaths []string
		// Graph is the virtual build graph; optional.
		Graph *buildgraph.Store
		// Root anchors relative source paths when Graph is nil.
		Root string
		// Disk overrides the reader used for files outside the graph.
		Disk resolve.FileReader
		// Concurrency bounds ProcessAll; zero means GOMAXPROCS.
		Concurrency int
		Logger      *log.Logger
	}

	// Processor is the top-level driver. It is safe for concurrent use; every
	// compile gets its own memo.
	Processor struct {
		compiler    compiler.Compiler
		options     compiler.Options
		include     *buildgraph.Matcher
		loadPaths   []string
		graph       *buildgraph.Store
		root        string
		disk        resolve.FileReader
		concurrency int
		logger      *log.Logger
	}
)

// String returns the state name.
func (s State) String() string { return string(s) }

// NewProcessor validates cfg and creates a Processor.
func NewProcessor(cfg Config) (*Processor, error) {
	if cfg.Compiler == nil {
		return nil, ErrNoCompiler
	}
	if valid, errs := cfg.Options.IsValid(); !valid {
		return nil, errs[0]
	}

	p := &Processor{
		compiler:    cfg.Compiler,
		options:     cfg.Options,
		include:     cfg.Include,
		loadPaths:   slices.Clone(cfg.LoadPaths),
		graph:       cfg.Graph,
		root:        cfg.Root,
		disk:        cfg.Disk,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
	}
	if p.include == nil {
		m, err := buildgraph.NewMatcher([]string{stylesheet.DefaultInclude}, nil)
		if err != nil {
			return nil, err
		}
		p.include = m
	}
	if p.graph != nil {
		p.root = p.graph.Root()
	}
	if p.concurrency <= 0 {
		p.concurrency = runtime.GOMAXPROCS(0)
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard)
	}
	return p, nil
}

// Process handles one file. A failed compile returns the Result together with
// its *BuildError.
func (p *Processor) Process(ctx context.Context, file SourceFile) (Result, error) {
	res := Result{Source: file.Path}

	switch {
	case !p.include.Match(file.Path):
		res.State = StateSkipped
		res.Output = file.Path
		res.Contents = file.Contents
	case stylesheet.IsPartial(file.Path):
		res.State = StateIgnored
	case file.Contents == "":
		res.State = StateEmptyShortCircuit
		res.Output = stylesheet.OutputPath(file.Path)
	default:
		return p.compile(ctx, file)
	}

	p.logger.Debug("processed", "file", file.Path, "state", res.State)
	return res, nil
}

// ProcessAll handles files concurrently. One file's failure never affects
// the others; every Result carries its own error. Results keep input order.
func (p *Processor) ProcessAll(ctx context.Context, files []SourceFile) []Result {
	results := make([]Result, len(files))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, file := range files {
		g.Go(func() error {
			res, err := p.Process(ctx, file)
			if err != nil {
				res.State = StateFailed
				res.Err = err
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return results
}

func (p *Processor) compile(ctx context.Context, file SourceFile) (Result, error) {
	entryPath := p.entryPath(file.Path)
	p.logger.Debug("processed", "file", file.Path, "state", StateCompiling, "size", humanize.Bytes(uint64(len(file.Contents))))

	memo := NewMemo()
	graph, entryRel := p.graphFor(file.Path)
	walker := resolve.NewWalker(resolve.WalkerOptions{
		LoadPaths: p.loadPaths,
		Checker:   resolve.NewSource(graph, p.disk),
		Logger:    p.logger,
	})

	importer := compiler.ImporterFunc(func(ctx context.Context, specifier, from string) (compiler.Import, error) {
		importing := from
		if from == compiler.EntryToken {
			importing = entryPath
		}
		imp, err := walker.Resolve(ctx, specifier, importing)
		if err != nil {
			return compiler.Import{}, err
		}
		memo.Record(specifier, imp.Path, imp.Contents)
		if entryRel != "" {
			if dep, ok := p.graph.Rel(imp.Path); ok {
				p.graph.RecordDependency(entryRel, dep)
			}
		}
		return compiler.Import{Path: imp.Path, Contents: imp.Contents}, nil
	})

	out, err := p.compiler.Compile(ctx, compiler.Request{
		Source:   file.Contents,
		File:     compiler.EntryToken,
		Importer: importer,
		Options:  p.options,
		Indented: stylesheet.IsIndented(file.Path),
	})
	if err != nil {
		var ce *compiler.Error
		if errors.As(err, &ce) {
			err = translate(ce, entryPath, file.Contents, memo)
		} else {
			err = fmt.Errorf("compile %s: %w", file.Path, err)
		}
		p.logger.Debug("processed", "file", file.Path, "state", StateFailed, "error", err)
		return Result{Source: file.Path, State: StateFailed, Err: err}, err
	}

	res := Result{
		Source:       file.Path,
		State:        StateEmitted,
		Output:       stylesheet.OutputPath(file.Path),
		Contents:     out.CSS,
		Dependencies: memo.Paths(),
	}
	p.logger.Debug("processed", "file", file.Path, "state", res.State, "imports", len(res.Dependencies), "size", humanize.Bytes(uint64(len(out.CSS))))
	return res, nil
}

// graphFor returns the graph consulted while compiling path and the entry's
// graph key, clearing the imports recorded by a previous compile. The key is
// empty for entries outside the graph; the graph is nil without one.
func (p *Processor) graphFor(path string) (resolve.Graph, string) {
	if p.graph == nil {
		return nil, ""
	}
	rel, ok := p.graph.Rel(p.entryPath(path))
	if !ok {
		return p.graph, ""
	}
	p.graph.ResetDependencies(rel)
	return p.graph, rel
}

func (p *Processor) entryPath(path string) string {
	native := filepath.FromSlash(path)
	if filepath.IsAbs(native) {
		return filepath.Clean(native)
	}
	if p.root != "" {
		return filepath.Join(p.root, native)
	}
	if abs, err := filepath.Abs(native); err == nil {
		return abs
	}
	return native
}

// Outputs builds the output mapping of a build: emitted and empty files under
// their output path, skipped files passed through under their own path.
// Ignored and failed files have no entry.
func Outputs(results []Result) map[string]string {
	out := make(map[string]string, len(results))
	for _, r := range results {
		switch r.State {
		case StateSkipped, StateEmitted, StateEmptyShortCircuit:
			out[r.Output] = r.Contents
		}
	}
	return out
}

// Failures returns the results that failed.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.State == StateFailed {
			failed = append(failed, r)
		}
	}
	return failed
}
