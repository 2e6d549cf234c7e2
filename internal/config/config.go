// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/invowk/stylebuild/internal/cueutil"
	"github.com/invowk/stylebuild/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "stylebuild"
	// ProjectFileName is the per-project configuration file looked up in
	// the base directory.
	ProjectFileName = "stylebuild.cue"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes every environment variable read by the loader.
	EnvPrefix = "STYLEBUILD"
	// DotEnvFileName is the conventional name of the environment file.
	DotEnvFileName = ".env"

	schemaDefinition = "#Config"
)

//go:embed config_schema.cue
var configSchema string

// viperKeys lists every option that has a default and can therefore be set
// from the environment. Viper keys are lower case.
var viperKeys = []string{
	"base",
	"outdir",
	"include",
	"concurrency",
	"compiler.outputstyle",
	"compiler.indenttype",
	"compiler.indentwidth",
	"compiler.linefeed",
	"compiler.precision",
	"compiler.sourcecomments",
	"compiler.sourcemap",
}

// loadPathsOverride is the Overrides key for load paths.
const loadPathsOverride = "loadpaths"

// ConfigDir returns the user configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// UserConfigPath returns the path of the user config file.
func UserConfigPath(configDirPath string) (string, error) {
	dir := configDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without touching
// package-level state other than the config dir override.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	baseDir, err := absDir(opts.BaseDir.String())
	if err != nil {
		return nil, err
	}

	var dotenv map[string]string
	if opts.EnvFile.IsSet() {
		dotenv, err = readDotEnv(opts.EnvFile.Resolve(baseDir))
	}
	if err != nil {
		return nil, err
	}
	env := envLookup(dotenv)

	v := viper.New()
	setDefaults(v, DefaultConfig())

	source, err := findConfigFile(opts, baseDir)
	if err != nil {
		return nil, err
	}
	if source != "" {
		if err := loadCUEIntoViper(v, source); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Values from the .env file apply only where the process environment
	// is silent.
	for _, key := range viperKeys {
		name := envName(key)
		if _, inProcess := os.LookupEnv(name); inProcess {
			continue
		}
		if val, ok := dotenv[name]; ok {
			v.Set(key, val)
		}
	}

	for key, val := range opts.Overrides {
		if key != loadPathsOverride {
			v.Set(key, val)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("decode configuration").
			WithResource(source).
			WithSuggestion("Check the types of " + EnvPrefix + "_* environment variables").
			Wrap(&ConfigurationError{Reason: "cannot be decoded", Err: err}).
			BuildError()
	}
	cfg.Source = source
	cfg.Base = filepathOrDefault(cfg.Base, DefaultBase, baseDir)
	cfg.OutDir = filepathOrDefault(cfg.OutDir, DefaultOutDir, cfg.Base)

	raw := rawLoadPaths(v, opts.Overrides, env)
	if cfg.LoadPaths, err = NormalizeLoadPaths(raw, cfg.Base); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(source).
			WithSuggestion("Set loadPaths to a directory or a list of directories").
			WithSuggestion(`Example: loadPaths: ["node_modules", "vendor/styles"]`).
			WithIssue(issue.InvalidLoadPathsId).
			Wrap(err).
			BuildError()
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(source).
			WithSuggestion("Run 'stylebuild config show' to inspect the effective configuration").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return cfg, nil
}

// findConfigFile picks the file to read: the explicit path, which must
// exist, then the project file, then the user config file. An empty result
// means defaults only.
func findConfigFile(opts LoadOptions, baseDir string) (string, error) {
	if opts.ConfigFilePath.IsSet() {
		path := opts.ConfigFilePath.Resolve(baseDir)
		if !fileExists(path) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'stylebuild config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		return path, nil
	}

	if project := filepath.Join(baseDir, ProjectFileName); fileExists(project) {
		return project, nil
	}

	user, err := UserConfigPath(opts.ConfigDirPath.String())
	if err != nil {
		return "", err
	}
	if fileExists(user) {
		return user, nil
	}
	return "", nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges its
// values into v. The file decodes to a map so Viper keeps its defaults and
// environment precedence.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check that the file is readable").
			Wrap(err).
			BuildError()
	}

	values, err := cueutil.Decode[map[string]any](configSchema, schemaDefinition, data,
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check that the file contains valid CUE syntax").
			WithSuggestion("Verify the configuration values match the expected schema").
			WithSuggestion("Run 'stylebuild config dump' for a complete example").
			WithIssue(schemaIssue(err)).
			Wrap(&ConfigurationError{Reason: "file does not match the schema", Err: err}).
			BuildError()
	}

	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// rawLoadPaths returns the load path option with the highest precedence:
// an override, then STYLEBUILD_LOADPATHS (a path list), then the first
// alias present in the file.
func rawLoadPaths(v *viper.Viper, overrides map[string]any, env func(string) (string, bool)) any {
	if raw, ok := overrides[loadPathsOverride]; ok {
		return raw
	}
	if list, ok := env(envName(loadPathsOverride)); ok {
		return filepath.SplitList(list)
	}
	for _, key := range LoadPathKeys {
		lower := strings.ToLower(key)
		if v.InConfig(lower) {
			return v.Get(lower)
		}
	}
	return nil
}

// schemaIssue picks the catalogued issue for a schema violation.
func schemaIssue(err error) issue.Id {
	var se *cueutil.SchemaError
	if errors.As(err, &se) {
		for _, f := range se.Fields {
			for _, key := range LoadPathKeys {
				if f.Path == key || strings.HasPrefix(f.Path, key+"[") {
					return issue.InvalidLoadPathsId
				}
			}
		}
	}
	return issue.ConfigLoadFailedId
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("base", defaults.Base)
	v.SetDefault("outdir", defaults.OutDir)
	v.SetDefault("include", defaults.Include)
	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetDefault("compiler.outputstyle", string(defaults.Compiler.OutputStyle))
	v.SetDefault("compiler.indenttype", string(defaults.Compiler.IndentType))
	v.SetDefault("compiler.indentwidth", defaults.Compiler.IndentWidth)
	v.SetDefault("compiler.linefeed", string(defaults.Compiler.Linefeed))
	v.SetDefault("compiler.precision", defaults.Compiler.Precision)
	v.SetDefault("compiler.sourcecomments", defaults.Compiler.SourceComments)
	v.SetDefault("compiler.sourcemap", defaults.Compiler.SourceMap)
}

// readDotEnv parses an environment file without modifying the process
// environment. A missing file yields no values.
func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err == nil {
		return values, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return nil, issue.NewErrorContext().
		WithOperation("read environment file").
		WithResource(path).
		WithSuggestion("Use KEY=value lines, one per line").
		Wrap(err).
		BuildError()
}

func envLookup(dotenv map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		if val, ok := os.LookupEnv(name); ok {
			return val, true
		}
		val, ok := dotenv[name]
		return val, ok
	}
}

// envName maps a Viper key to its environment variable.
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func absDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	return abs, nil
}

// filepathOrDefault resolves value against base, substituting def for a
// blank value so validation can report only genuinely bad input.
func filepathOrDefault(value, def, base string) string {
	if value == "" {
		value = def
	}
	if strings.TrimSpace(value) == "" {
		return value
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(base, value)
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
