// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/invowk/stylebuild/internal/compiler"
	"github.com/invowk/stylebuild/internal/compiler/builtin"
	"github.com/invowk/stylebuild/internal/config"
	"github.com/invowk/stylebuild/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra command handler receives an App reference and reaches
	// configuration and compilation through it.
	App struct {
		Config   ConfigProvider
		Compiler compiler.Compiler
		stdout   io.Writer
		stderr   io.Writer
		logger   *log.Logger

		// Persistent flag values, bound by the root command.
		verbose    bool
		configFile string
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Compiler compiler.Compiler
		Stdout   io.Writer
		Stderr   io.Writer
		Logger   *log.Logger
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Logger == nil {
		deps.Logger = log.NewWithOptions(deps.Stderr, log.Options{
			Prefix: config.AppName,
			Level:  log.WarnLevel,
		})
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Compiler == nil {
		deps.Compiler = builtin.New(deps.Logger.WithPrefix("compiler"))
	}

	return &App{
		Config:   deps.Config,
		Compiler: deps.Compiler,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		logger:   deps.Logger,
	}, nil
}

// loadConfig loads configuration for a project rooted at baseDir (the working
// directory when empty) with the given overrides. Relative paths given on the
// command line are resolved against the working directory before they reach
// the loader.
func (a *App) loadConfig(ctx context.Context, baseDir string, overrides map[string]any) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	opts := config.LoadOptions{
		BaseDir:   types.FilesystemPath(absFrom(cwd, baseDir)),
		EnvFile:   types.FilesystemPath(filepath.Join(cwd, config.DotEnvFileName)),
		Overrides: overrides,
	}
	if a.configFile != "" {
		opts.ConfigFilePath = types.FilesystemPath(absFrom(cwd, a.configFile))
	}
	return a.Config.Load(ctx, opts)
}

// fail renders err on stderr and converts it into an *ExitError with code.
// Cobra's own error and usage output is silenced because the error has
// already been shown.
func (a *App) fail(cmd *cobra.Command, code types.ExitCode, err error) error {
	return a.exit(cmd, code, classifyError(err, a.verbose))
}

// exit renders svcErr and wraps it into an *ExitError with code.
func (a *App) exit(cmd *cobra.Command, code types.ExitCode, svcErr *ServiceError) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	renderServiceError(a.stderr, a.logger, svcErr)
	return &ExitError{Code: code, Err: svcErr}
}

// absFrom resolves p against dir. An empty p yields dir.
func absFrom(dir, p string) string {
	if p == "" {
		return dir
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
