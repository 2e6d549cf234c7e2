// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/invowk/stylebuild/internal/compiler"
	"github.com/invowk/stylebuild/pkg/stylesheet"
)

const (
	// DefaultBase is the project root used when none is configured.
	DefaultBase = "."
	// DefaultOutDir is the output directory used when none is configured.
	DefaultOutDir = "dist"

	// KeyLoadPaths is the canonical load path option.
	KeyLoadPaths = "loadPaths"
)

// LoadPathKeys lists the accepted spellings of the load path option in
// precedence order.
var LoadPathKeys = []string{KeyLoadPaths, "loadPath", "importPaths"}

// ErrConfiguration is the sentinel error wrapped by ConfigurationError.
var ErrConfiguration = errors.New("invalid configuration")

type (
	// Config is the effective stylebuild configuration. Paths are absolute
	// once returned by a Provider.
	Config struct {
		Base        string           `json:"base" yaml:"base" toml:"base" mapstructure:"base"`
		OutDir      string           `json:"outDir" yaml:"outDir" toml:"outDir" mapstructure:"outdir"`
		Include     []string         `json:"include" yaml:"include" toml:"include" mapstructure:"include"`
		LoadPaths   []string         `json:"loadPaths" yaml:"loadPaths" toml:"loadPaths" mapstructure:"-"`
		Concurrency int              `json:"concurrency" yaml:"concurrency" toml:"concurrency" mapstructure:"concurrency"`
		Compiler    compiler.Options `json:"compiler" yaml:"compiler" toml:"compiler" mapstructure:"compiler"`

		// Source is the file the configuration was read from. It is empty
		// when only defaults and environment variables applied.
		Source string `json:"-" yaml:"-" toml:"-" mapstructure:"-"`
	}

	// ConfigurationError reports an option that cannot be used. It is
	// returned before any stylesheet is read.
	//
	//nolint:revive // ConfigurationError reads better than Error at call sites.
	ConfigurationError struct {
		// Key is the option name as written in configuration files.
		Key string
		// Value is the offending value, if any.
		Value any
		// Reason describes what is wrong.
		Reason string
		// Err is an underlying cause, such as a CUE schema violation.
		Err error
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Base:        DefaultBase,
		OutDir:      DefaultOutDir,
		Include:     []string{stylesheet.DefaultInclude},
		LoadPaths:   nil,
		Concurrency: 0,
		Compiler: compiler.Options{
			OutputStyle: compiler.OutputNested,
			IndentType:  compiler.IndentSpace,
			IndentWidth: compiler.DefaultIndentWidth,
			Linefeed:    compiler.LinefeedLF,
			Precision:   compiler.DefaultPrecision,
		},
	}
}

// IsValid returns whether every option is usable. Each returned error is a
// *ConfigurationError.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Base) == "" {
		errs = append(errs, &ConfigurationError{Key: "base", Value: c.Base, Reason: "must not be blank"})
	}
	if strings.TrimSpace(c.OutDir) == "" {
		errs = append(errs, &ConfigurationError{Key: "outDir", Value: c.OutDir, Reason: "must not be blank"})
	}
	for i, pattern := range c.Include {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, &ConfigurationError{
				Key:    fmt.Sprintf("include[%d]", i),
				Value:  pattern,
				Reason: "is not a valid glob pattern",
			})
		}
	}
	if c.Concurrency < 0 {
		errs = append(errs, &ConfigurationError{Key: "concurrency", Value: c.Concurrency, Reason: "must not be negative"})
	}
	if valid, optErrs := c.Compiler.IsValid(); !valid {
		for _, err := range optErrs {
			errs = append(errs, &ConfigurationError{Key: "compiler", Reason: "has invalid options", Err: err})
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// NormalizeLoadPaths converts a raw load path option into absolute, cleaned
// directories. raw may be a single path, a []string, or a []any holding only
// strings; relative paths are joined onto baseDir. A nil raw yields no
// paths. Any other shape is a *ConfigurationError.
func NormalizeLoadPaths(raw any, baseDir string) ([]string, error) {
	var paths []string
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		paths = []string{v}
	case []string:
		paths = v
	case []any:
		paths = make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &ConfigurationError{
					Key:    fmt.Sprintf("%s[%d]", KeyLoadPaths, i),
					Value:  item,
					Reason: fmt.Sprintf("must be a string, got %T", item),
				}
			}
			paths = append(paths, s)
		}
	default:
		return nil, &ConfigurationError{
			Key:    KeyLoadPaths,
			Value:  raw,
			Reason: fmt.Sprintf("must be a string or a list of strings, got %T", raw),
		}
	}

	out := make([]string, 0, len(paths))
	for i, p := range paths {
		if strings.TrimSpace(p) == "" {
			return nil, &ConfigurationError{
				Key:    fmt.Sprintf("%s[%d]", KeyLoadPaths, i),
				Value:  p,
				Reason: "must not be blank",
			}
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		out = append(out, filepath.Clean(p))
	}
	return out, nil
}

func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration")
	if e.Key != "" {
		sb.WriteString(" option " + e.Key)
	}
	if e.Reason != "" {
		sb.WriteString(" " + e.Reason)
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns ErrConfiguration and the underlying cause, if any.
func (e *ConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}
