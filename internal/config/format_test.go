// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/invowk/stylebuild/internal/compiler"
	"github.com/invowk/stylebuild/internal/testutil"
)

func sampleConfig(base string) *Config {
	cfg := DefaultConfig()
	cfg.Base = base
	cfg.OutDir = filepath.Join(base, "public")
	cfg.LoadPaths = []string{filepath.Join(base, "lib"), filepath.Join(base, "vendor")}
	cfg.Concurrency = 4
	cfg.Compiler.OutputStyle = compiler.OutputCompressed
	cfg.Compiler.SourceComments = true
	return cfg
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	cfg := sampleConfig(filepath.FromSlash("/srv/site"))

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		data, err := Marshal(cfg, FormatYAML)
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		var got Config
		if err := yaml.Unmarshal(data, &got); err != nil {
			t.Fatalf("yaml.Unmarshal() error: %v", err)
		}
		if got.OutDir != cfg.OutDir || !slices.Equal(got.LoadPaths, cfg.LoadPaths) || got.Compiler != cfg.Compiler {
			t.Errorf("yaml output lost data:\n%s", data)
		}
	})

	t.Run("toml", func(t *testing.T) {
		t.Parallel()

		data, err := Marshal(cfg, FormatTOML)
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		var got Config
		if err := toml.Unmarshal(data, &got); err != nil {
			t.Fatalf("toml.Unmarshal() error: %v", err)
		}
		if got.Concurrency != 4 || got.Compiler.OutputStyle != compiler.OutputCompressed {
			t.Errorf("toml output lost data:\n%s", data)
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		data, err := Marshal(cfg, FormatJSON)
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		var got map[string]any
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("json.Unmarshal() error: %v", err)
		}
		if _, ok := got["outDir"]; !ok {
			t.Errorf("json output should use outDir, got %s", data)
		}
		if _, ok := got["Source"]; ok {
			t.Errorf("json output must not include Source, got %s", data)
		}
	})

	t.Run("cue", func(t *testing.T) {
		t.Parallel()

		data, err := Marshal(cfg, FormatCUE)
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		if string(data) != GenerateCUE(cfg) {
			t.Error("cue format should match GenerateCUE")
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := Marshal(cfg, "xml")
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("expected ErrInvalidFormat, got %v", err)
		}
		if !strings.Contains(err.Error(), "cue, yaml, toml, json") {
			t.Errorf("error should list valid formats, got %q", err)
		}
	})
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	want := sampleConfig(base)
	testutil.MustWriteFile(t, filepath.Join(base, ProjectFileName), GenerateCUE(want))

	got, err := loadIn(t, base, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() of generated config error: %v", err)
	}

	if got.OutDir != want.OutDir {
		t.Errorf("OutDir = %q, want %q", got.OutDir, want.OutDir)
	}
	if !slices.Equal(got.Include, want.Include) {
		t.Errorf("Include = %v, want %v", got.Include, want.Include)
	}
	if !slices.Equal(got.LoadPaths, want.LoadPaths) {
		t.Errorf("LoadPaths = %v, want %v", got.LoadPaths, want.LoadPaths)
	}
	if got.Concurrency != want.Concurrency {
		t.Errorf("Concurrency = %d, want %d", got.Concurrency, want.Concurrency)
	}
	if got.Compiler != want.Compiler {
		t.Errorf("Compiler = %+v, want %+v", got.Compiler, want.Compiler)
	}
}

// TestSchemaMatchesStructs guards against a field added to Config or
// compiler.Options without a schema entry, which the closed #Config
// definition would then reject.
func TestSchemaMatchesStructs(t *testing.T) {
	t.Parallel()

	schema := cuecontext.New().CompileString(configSchema)
	if err := schema.Err(); err != nil {
		t.Fatalf("schema does not compile: %v", err)
	}

	tests := []struct {
		definition string
		typ        reflect.Type
	}{
		{"#Config", reflect.TypeFor[Config]()},
		{"#Compiler", reflect.TypeFor[compiler.Options]()},
	}

	for _, tt := range tests {
		t.Run(tt.definition, func(t *testing.T) {
			t.Parallel()

			def := schema.LookupPath(cue.ParsePath(tt.definition))
			fields := map[string]bool{}
			iter, err := def.Fields(cue.Optional(true))
			if err != nil {
				t.Fatalf("Fields() error: %v", err)
			}
			for iter.Next() {
				fields[strings.TrimSuffix(iter.Selector().String(), "?")] = true
			}

			for i := range tt.typ.NumField() {
				f := tt.typ.Field(i)
				name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
				if name == "" || name == "-" {
					continue
				}
				if !fields[name] {
					t.Errorf("%s.%s (json %q) has no field in %s", tt.typ.Name(), f.Name, name, tt.definition)
				}
			}
		})
	}
}
