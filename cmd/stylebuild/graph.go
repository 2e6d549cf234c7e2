// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/invowk/stylebuild/internal/issue"
	"github.com/invowk/stylebuild/internal/pipeline"
	"github.com/invowk/stylebuild/pkg/types"
)

type graphFlags struct {
	projectFlags
	affected string
}

func newGraphCommand(app *App) *cobra.Command {
	flags := &graphFlags{}
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the import graph of the project",
		Long: `Compile every stylesheet without writing output and print what each
one imports, followed by a build order in which imports precede their
importers. With --affected, print only the stylesheets that have to be
rebuilt when the given file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, app, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.affected, "affected", "", "print the files that transitively import this file")

	return cmd
}

func runGraph(cmd *cobra.Command, app *App, flags *graphFlags) error {
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

	if flags.affected != "" {
		target := absFrom(cwd, flags.affected)
		rel, ok := proj.graph.Rel(target)
		if !ok {
			return app.fail(cmd, types.ExitSetup, issue.NewErrorContext().
				WithOperation("find affected stylesheets").
				WithResource(target).
				WithSuggestion("Pass a file inside the project directory "+cfg.Base).
				Wrap(fmt.Errorf("%s is outside the build graph", target)).
				BuildError())
		}
		for _, dependent := range proj.graph.Affected(rel) {
			fmt.Fprintln(app.stdout, dependent)
		}
		return nil
	}

	writeImports(app.stdout, cfg.Base, results)

	order, err := proj.graph.BuildOrder()
	if err != nil {
		return app.fail(cmd, types.ExitBuildFailed, err)
	}
	fmt.Fprintln(app.stdout, TitleStyle.Render("Build order:"))
	for i, rel := range order {
		fmt.Fprintf(app.stdout, "%3d. %s\n", i+1, rel)
	}

	return app.reportFailures(cmd, cfg.Base, pipeline.Failures(results))
}

// writeImports lists every compiled entry with the files it imports,
// including files found through load paths outside the project.
func writeImports(w io.Writer, base string, results []pipeline.Result) {
	fmt.Fprintln(w, TitleStyle.Render("Imports:"))
	for _, res := range results {
		if !compiled(res) {
			continue
		}
		fmt.Fprintln(w, PathStyle.Render(res.Source))
		for _, dep := range res.Dependencies {
			fmt.Fprintf(w, "  <- %s\n", displayPath(base, dep))
		}
	}
}
