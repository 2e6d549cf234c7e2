// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/stylebuild/internal/config"
	"github.com/invowk/stylebuild/internal/issue"
	"github.com/invowk/stylebuild/pkg/types"
)

// errConfigExists is returned by config init when the project file exists.
var errConfigExists = errors.New("configuration file already exists")

// newConfigCommand creates the `stylebuild config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	var base string

	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect stylebuild configuration",
		Long: `Inspect stylebuild configuration.

Configuration is read from the first file found of:
  - the --config flag
  - <base>/stylebuild.cue
  - the user config file (see 'stylebuild config path')

STYLEBUILD_* environment variables, also read from a .env file in the
working directory, override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cfgCmd.PersistentFlags().StringVar(&base, "base", "", "project directory (default is the working directory)")

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), base, nil)
			if err != nil {
				return app.fail(cmd, types.ExitSetup, err)
			}
			if format == "" {
				showConfig(app.stdout, cfg)
				return nil
			}
			data, err := config.Marshal(cfg, config.Format(format))
			if err != nil {
				return app.fail(cmd, types.ExitSetup, err)
			}
			_, err = app.stdout.Write(data)
			return err
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", "", "output format: "+formatNames())
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd, app, base)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the default configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(app.stdout, config.GenerateCUE(config.DefaultConfig()))
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create " + config.ProjectFileName + " with the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, app, base, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config) {
	keyStyle := PathStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if cfg.Source != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfg.Source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("base"), valueStyle.Render(cfg.Base))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("outDir"), valueStyle.Render(cfg.OutDir))
	writeList(w, keyStyle.Render("include"), cfg.Include)
	writeList(w, keyStyle.Render(config.KeyLoadPaths), cfg.LoadPaths)

	concurrency := "(number of CPUs)"
	if cfg.Concurrency > 0 {
		concurrency = fmt.Sprint(cfg.Concurrency)
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("concurrency"), valueStyle.Render(concurrency))

	opts := cfg.Compiler
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("compiler"))
	fmt.Fprintf(w, "  outputStyle: %s\n", valueStyle.Render(opts.Style().String()))
	fmt.Fprintf(w, "  indent: %s\n", valueStyle.Render(fmt.Sprintf("%q", opts.Indent())))
	fmt.Fprintf(w, "  linefeed: %s\n", valueStyle.Render(string(opts.Linefeed)))
	fmt.Fprintf(w, "  precision: %s\n", valueStyle.Render(fmt.Sprint(opts.EffectivePrecision())))
	fmt.Fprintf(w, "  sourceComments: %s\n", valueStyle.Render(fmt.Sprint(opts.SourceComments)))
	fmt.Fprintf(w, "  sourceMap: %s\n", valueStyle.Render(fmt.Sprint(opts.SourceMap)))
}

func writeList(w io.Writer, key string, items []string) {
	fmt.Fprintf(w, "%s:\n", key)
	if len(items) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", SuccessStyle.Render(item))
	}
}

func showConfigPath(cmd *cobra.Command, app *App, base string) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return app.fail(cmd, types.ExitSetup, err)
	}
	userFile, err := config.UserConfigPath(cfgDir)
	if err != nil {
		return app.fail(cmd, types.ExitSetup, err)
	}
	projectFile, err := projectFilePath(base)
	if err != nil {
		return app.fail(cmd, types.ExitSetup, err)
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "User config file: %s\n", userFile)
	fmt.Fprintf(app.stdout, "Project config file: %s\n", projectFile)
	return nil
}

func initConfig(cmd *cobra.Command, app *App, base string, force bool) error {
	path, err := projectFilePath(base)
	if err != nil {
		return app.fail(cmd, types.ExitSetup, err)
	}

	if _, statErr := os.Stat(path); statErr == nil && !force {
		return app.fail(cmd, types.ExitSetup, issue.NewErrorContext().
			WithOperation("create configuration").
			WithResource(path).
			WithSuggestion("Use --force to overwrite it").
			WithSuggestion("Use 'stylebuild config show' to inspect the current configuration").
			Wrap(errConfigExists).
			BuildError())
	}

	if err := os.WriteFile(path, []byte(config.GenerateCUE(config.DefaultConfig())), 0o644); err != nil {
		return app.fail(cmd, types.ExitSetup, issue.NewErrorContext().
			WithOperation("create configuration").
			WithResource(path).
			WithSuggestion("Check that the directory exists and is writable").
			Wrap(err).
			BuildError())
	}

	fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func projectFilePath(base string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(absFrom(cwd, base), config.ProjectFileName), nil
}

func formatNames() string {
	formats := config.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}
