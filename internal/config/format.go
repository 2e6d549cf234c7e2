// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// FormatCUE renders the configuration as a stylebuild.cue file.
	FormatCUE Format = "cue"
	// FormatYAML renders the configuration as YAML.
	FormatYAML Format = "yaml"
	// FormatTOML renders the configuration as TOML.
	FormatTOML Format = "toml"
	// FormatJSON renders the configuration as indented JSON.
	FormatJSON Format = "json"
)

// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
var ErrInvalidFormat = errors.New("invalid output format")

type (
	// Format selects how a Config is rendered.
	Format string

	// InvalidFormatError is returned when a Format value is not recognized.
	InvalidFormatError struct {
		Value Format
	}
)

// Formats returns every recognized Format.
func Formats() []Format {
	return []Format{FormatCUE, FormatYAML, FormatTOML, FormatJSON}
}

func (f Format) String() string { return string(f) }

// IsValid returns whether the Format is recognized.
func (f Format) IsValid() (bool, []error) {
	switch f {
	case FormatCUE, FormatYAML, FormatTOML, FormatJSON:
		return true, nil
	default:
		return false, []error{&InvalidFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidFormatError.
func (e *InvalidFormatError) Error() string {
	names := make([]string, 0, 4)
	for _, f := range Formats() {
		names = append(names, f.String())
	}
	return fmt.Sprintf("invalid output format %q (valid: %s)", e.Value, strings.Join(names, ", "))
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// Marshal renders cfg in the requested format.
func Marshal(cfg *Config, format Format) ([]byte, error) {
	if valid, errs := format.IsValid(); !valid {
		return nil, errs[0]
	}

	switch format {
	case FormatYAML:
		return yaml.Marshal(cfg)
	case FormatTOML:
		return toml.Marshal(cfg)
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return []byte(GenerateCUE(cfg)), nil
	}
}

// GenerateCUE renders cfg as a configuration file accepted by the loader.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// stylebuild configuration\n\n")

	fmt.Fprintf(&sb, "base:   %q\n", cfg.Base)
	fmt.Fprintf(&sb, "outDir: %q\n", cfg.OutDir)
	writeCUEList(&sb, "include", cfg.Include)
	writeCUEList(&sb, KeyLoadPaths, cfg.LoadPaths)
	fmt.Fprintf(&sb, "concurrency: %d\n", cfg.Concurrency)

	opts := cfg.Compiler
	sb.WriteString("\ncompiler: {\n")
	fmt.Fprintf(&sb, "\toutputStyle:    %q\n", opts.Style())
	if opts.IndentType != "" {
		fmt.Fprintf(&sb, "\tindentType:     %q\n", opts.IndentType)
	}
	fmt.Fprintf(&sb, "\tindentWidth:    %d\n", opts.IndentWidth)
	if opts.Linefeed != "" {
		fmt.Fprintf(&sb, "\tlinefeed:       %q\n", opts.Linefeed)
	}
	fmt.Fprintf(&sb, "\tprecision:      %d\n", opts.Precision)
	fmt.Fprintf(&sb, "\tsourceComments: %t\n", opts.SourceComments)
	fmt.Fprintf(&sb, "\tsourceMap:      %t\n", opts.SourceMap)
	sb.WriteString("}\n")

	return sb.String()
}

func writeCUEList(sb *strings.Builder, key string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(sb, "%s: []\n", key)
		return
	}
	fmt.Fprintf(sb, "%s: [\n", key)
	for _, item := range items {
		fmt.Fprintf(sb, "\t%q,\n", item)
	}
	sb.WriteString("]\n")
}
