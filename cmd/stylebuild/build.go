// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/invowk/stylebuild/internal/buildgraph"
	"github.com/invowk/stylebuild/internal/config"
	"github.com/invowk/stylebuild/internal/issue"
	"github.com/invowk/stylebuild/internal/pipeline"
	"github.com/invowk/stylebuild/pkg/types"
)

// writeConcurrency bounds parallel output writes.
const writeConcurrency = 8

// errNoStylesheets is reported when the include patterns select nothing.
var errNoStylesheets = errors.New("no stylesheets found")

type (
	// projectFlags are the flags shared by every command that reads a project.
	projectFlags struct {
		base      string
		loadPaths []string
	}

	// buildFlags holds the flags of the build command.
	buildFlags struct {
		projectFlags
		out         string
		include     []string
		style       string
		concurrency int
		dryRun      bool
	}

	// project is a loaded configuration together with its build graph and
	// the processor compiling against it.
	project struct {
		cfg       *config.Config
		graph     *buildgraph.Store
		processor *pipeline.Processor
	}
)

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.base, "base", "", "project directory (default is the working directory)")
	cmd.Flags().StringArrayVarP(&f.loadPaths, "load-path", "I", nil, "directory searched for imports, in order (repeatable; replaces configured load paths)")
}

// overrides converts changed flags into configuration overrides. Paths are
// made absolute against the working directory.
func (f *projectFlags) overrides(cmd *cobra.Command, cwd string) map[string]any {
	overrides := make(map[string]any)
	if cmd.Flags().Changed("load-path") {
		paths := make([]string, len(f.loadPaths))
		for i, p := range f.loadPaths {
			paths[i] = absFrom(cwd, p)
		}
		overrides["loadpaths"] = paths
	}
	return overrides
}

func (f *buildFlags) overrides(cmd *cobra.Command, cwd string) map[string]any {
	overrides := f.projectFlags.overrides(cmd, cwd)
	flags := cmd.Flags()
	if flags.Changed("out") {
		overrides["outdir"] = absFrom(cwd, f.out)
	}
	if flags.Changed("include") {
		overrides["include"] = f.include
	}
	if flags.Changed("style") {
		overrides["compiler.outputstyle"] = f.style
	}
	if flags.Changed("concurrency") {
		overrides["concurrency"] = f.concurrency
	}
	return overrides
}

func newBuildCommand(app *App) *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile every stylesheet of the project",
		Long: `Compile every stylesheet of the project into the output directory.

Files matching the include patterns are compiled to .css; partials are
skipped and every other file is copied unchanged. A failing stylesheet does
not stop the others; the command exits with status 1 if any file failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output directory (default is <base>/dist)")
	cmd.Flags().StringArrayVar(&flags.include, "include", nil, "glob selecting the files to compile (repeatable)")
	cmd.Flags().StringVar(&flags.style, "style", "", "output style: nested, expanded, compact or compressed")
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "j", 0, "maximum parallel compiles (default is the number of CPUs)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "compile without writing any output")

	return cmd
}

func runBuild(cmd *cobra.Command, app *App, flags *buildFlags) error {
	ctx := cmd.Context()
	cwd, err := os.Getwd()
	if err != nil {
		return app.fail(cmd, types.ExitSetup, err)
	}

	cfg, err := app.loadConfig(ctx, flags.base, flags.overrides(cmd, cwd))
	if err != nil {
		return app.fail(cmd, types.ExitSetup, err)
	}

	proj, err := openProject(ctx, app, cfg)
	if err != nil {
		return app.fail(cmd, types.ExitSetup, err)
	}

	results, err := proj.compileAll(ctx)
	if err != nil {
		return app.fail(cmd, types.ExitSetup, err)
	}

	if !flags.dryRun {
		if err := writeOutputs(ctx, cfg.OutDir, pipeline.Outputs(results)); err != nil {
			return app.fail(cmd, types.ExitBuildFailed, err)
		}
	}

	fmt.Fprint(app.stdout, renderSummary(cfg.Base, results))

	return app.reportFailures(cmd, cfg.Base, pipeline.Failures(results))
}

// openProject loads the build graph of cfg.Base and prepares a processor.
func openProject(ctx context.Context, app *App, cfg *config.Config) (*project, error) {
	graph, err := loadGraph(ctx, app, cfg)
	if err != nil {
		return nil, err
	}

	include, err := buildgraph.NewMatcher(cfg.Include, nil)
	if err != nil {
		return nil, err
	}

	processor, err := pipeline.NewProcessor(pipeline.Config{
		Compiler:    app.Compiler,
		Options:     cfg.Compiler,
		Include:     include,
		LoadPaths:   cfg.LoadPaths,
		Graph:       graph,
		Concurrency: cfg.Concurrency,
		Logger:      app.logger.WithPrefix("pipeline"),
	})
	if err != nil {
		return nil, err
	}

	return &project{cfg: cfg, graph: graph, processor: processor}, nil
}

// loadGraph reads the build graph of cfg.Base. The output directory and
// configuration files never enter the graph.
func loadGraph(ctx context.Context, app *App, cfg *config.Config) (*buildgraph.Store, error) {
	ignore := []string{config.ProjectFileName, config.DotEnvFileName}
	if rel, err := filepath.Rel(cfg.Base, cfg.OutDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		ignore = append(ignore, filepath.ToSlash(rel)+"/**")
	}
	matcher, err := buildgraph.NewMatcher(nil, ignore)
	if err != nil {
		return nil, err
	}

	graph, err := buildgraph.Load(ctx, cfg.Base, matcher)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read project").
			WithResource(cfg.Base).
			WithSuggestion("Check that the base directory exists and is readable").
			Wrap(err).
			BuildError()
	}
	stats := graph.Stats()
	app.logger.Debug("loaded build graph", "root", graph.Root(), "files", stats.Files, "size", humanize.Bytes(stats.Bytes))
	return graph, nil
}

// compileAll processes every file of the graph. It fails when the include
// patterns select no stylesheet at all.
func (p *project) compileAll(ctx context.Context) ([]pipeline.Result, error) {
	files := p.graph.Files()
	sources := make([]pipeline.SourceFile, 0, len(files))
	for _, rel := range files {
		contents, _ := p.graph.Lookup(ctx, rel)
		sources = append(sources, pipeline.SourceFile{Path: rel, Contents: contents})
	}

	results := p.processor.ProcessAll(ctx, sources)
	if !slices.ContainsFunc(results, compiled) {
		return nil, issue.NewErrorContext().
			WithOperation("find stylesheets").
			WithResource(p.cfg.Base).
			WithSuggestion(fmt.Sprintf("Include patterns in use: %s", strings.Join(p.cfg.Include, ", "))).
			WithSuggestion("Use --base to point at the project directory").
			WithIssue(issue.NoStylesheetsFoundId).
			Wrap(errNoStylesheets).
			BuildError()
	}
	return results, nil
}

// compiled reports whether a result went through the compile step.
func compiled(res pipeline.Result) bool {
	switch res.State {
	case pipeline.StateEmitted, pipeline.StateFailed, pipeline.StateEmptyShortCircuit:
		return true
	default:
		return false
	}
}

// writeOutputs writes the output mapping under outDir.
func writeOutputs(ctx context.Context, outDir string, outputs map[string]string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(writeConcurrency)
	for rel, contents := range outputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(outDir, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			return os.WriteFile(path, []byte(contents), 0o644)
		})
	}
	if err := g.Wait(); err != nil {
		return issue.NewErrorContext().
			WithOperation("write output").
			WithResource(outDir).
			WithSuggestion("Check that the output directory is writable").
			Wrap(err).
			BuildError()
	}
	return nil
}

// reportFailures renders every failed file and, if there was any, returns
// the ExitError for the build.
func (a *App) reportFailures(cmd *cobra.Command, base string, failed []pipeline.Result) error {
	if len(failed) == 0 {
		return nil
	}

	var sb strings.Builder
	errs := make([]error, len(failed))
	for i, res := range failed {
		sb.WriteString(renderFailure(base, res))
		errs[i] = res.Err
	}
	fmt.Fprintf(&sb, "%s %d %s failed to compile\n", ErrorStyle.Render("Error:"), len(failed), plural(len(failed), "file", "files"))

	svcErr := classifyError(failed[0].Err, a.verbose)
	svcErr.Err = errors.Join(errs...)
	svcErr.StyledMessage = sb.String()
	return a.exit(cmd, types.ExitBuildFailed, svcErr)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
