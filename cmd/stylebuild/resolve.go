// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/stylebuild/internal/resolve"
	"github.com/invowk/stylebuild/pkg/types"
)

type resolveFlags struct {
	projectFlags
	from string
}

func newResolveCommand(app *App) *cobra.Command {
	flags := &resolveFlags{}
	cmd := &cobra.Command{
		Use:   "resolve <specifier>",
		Short: "Explain how an import is resolved",
		Long: `Explain how an @import specifier is resolved for a given file.

Every candidate of every search directory is listed in search order: the
importing file's directory first, then each load path. Candidates under the
project directory are answered by the build graph, as during a build. The first directory
holding exactly one candidate wins; two candidates in one directory make the
import ambiguous.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, app, flags, args[0])
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.from, "from", "", "importing file (required)")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func runResolve(cmd *cobra.Command, app *App, flags *resolveFlags, specifier string) error {
	ctx := cmd.Context()
	cwd, err := os.Getwd()
	if err != nil {
		return app.fail(cmd, types.ExitSetup, err)
	}

	cfg, err := app.loadConfig(ctx, flags.base, flags.overrides(cmd, cwd))
	if err != nil {
		return app.fail(cmd, types.ExitSetup, err)
	}

	graph, err := loadGraph(ctx, app, cfg)
	if err != nil {
		return app.fail(cmd, types.ExitSetup, err)
	}

	from := absFrom(cwd, flags.from)
	walker := resolve.NewWalker(resolve.WalkerOptions{
		LoadPaths: cfg.LoadPaths,
		Checker:   resolve.NewSource(graph, resolve.OSReader()),
		Logger:    app.logger.WithPrefix("resolve"),
	})

	fmt.Fprintf(app.stdout, "%s %s from %s\n", TitleStyle.Render("Resolving"),
		PathStyle.Render(fmt.Sprintf("%q", specifier)), displayPath(cwd, from))

	traces, traceErr := walker.Explain(ctx, specifier, from)
	fmt.Fprint(app.stdout, renderTrace(cwd, traces))

	imp, err := walker.Resolve(ctx, specifier, from)
	if err != nil {
		return app.fail(cmd, types.ExitBuildFailed, err)
	}
	if traceErr != nil {
		return app.fail(cmd, types.ExitBuildFailed, traceErr)
	}

	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Resolved:"), imp.Path)
	return nil
}

// renderTrace lists the candidates of each search directory, marking the
// ones that exist.
func renderTrace(base string, traces []resolve.DirectoryTrace) string {
	var sb strings.Builder
	for i, trace := range traces {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, PathStyle.Render(displayPath(base, trace.Directory)))
		for _, c := range trace.Candidates {
			mark := VerboseStyle.Render("-")
			if c.Exists {
				mark = SuccessStyle.Render("+")
			}
			where := ""
			if _, ok := c.Location.(resolve.InGraph); ok {
				where = VerboseStyle.Render(" (build graph)")
			}
			fmt.Fprintf(&sb, "   %s %s%s\n", mark, displayPath(base, c.Path), where)
		}
	}
	return sb.String()
}
