// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Settings: {
	name:   string & !=""
	level?: int & >=0 & <=3
	tags?: [...string]
}
`

type settings struct {
	Name  string   `json:"name"`
	Level int      `json:"level"`
	Tags  []string `json:"tags"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    settings
		wantErr string
	}{
		{
			name: "valid",
			data: `name: "a", level: 2, tags: ["x", "y"]`,
			want: settings{Name: "a", Level: 2, Tags: []string{"x", "y"}},
		},
		{
			name:    "out of range",
			data:    `name: "a", level: 7`,
			wantErr: "level",
		},
		{
			name:    "wrong element type",
			data:    `name: "a", tags: ["x", 3]`,
			wantErr: "tags[1]",
		},
		{
			name:    "unknown field",
			data:    `name: "a", colour: "red"`,
			wantErr: "colour",
		},
		{
			name:    "syntax error",
			data:    `name: `,
			wantErr: "settings.cue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode[settings](testSchema, "#Settings", []byte(tt.data), WithFilename("settings.cue"))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tt.want.Name || got.Level != tt.want.Level || strings.Join(got.Tags, ",") != strings.Join(tt.want.Tags, ",") {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecode_SchemaError(t *testing.T) {
	t.Parallel()

	_, err := Decode[map[string]any](testSchema, "#Settings", []byte(`name: "a", level: "high"`), WithFilename("s.cue"))
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("errors.Is(err, ErrSchema) = false for %v", err)
	}
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if se.File != "s.cue" {
		t.Errorf("File = %q, want s.cue", se.File)
	}
	if len(se.Fields) == 0 || se.Fields[0].Path != "level" {
		t.Errorf("Fields = %+v, want first path level", se.Fields)
	}
}

func TestDecode_NonConcrete(t *testing.T) {
	t.Parallel()

	got, err := Decode[map[string]any](testSchema, "#Settings", []byte(`name: "a"`), WithConcrete(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["name"] != "a" {
		t.Errorf("name = %v, want a", got["name"])
	}
}

func TestDecode_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := Decode[map[string]any](testSchema, "#Missing", []byte(`name: "a"`))
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "f.cue"); err != nil {
		t.Errorf("size at limit should pass, got %v", err)
	}

	err := CheckFileSize(make([]byte, 2048), 1024, "f.cue")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if !strings.Contains(err.Error(), "2.0 KiB") || !strings.Contains(err.Error(), "1.0 KiB") {
		t.Errorf("message should use humanized sizes, got %q", err)
	}

	_, err = Decode[map[string]any](testSchema, "#Settings", []byte(`name: "a"`), WithMaxFileSize(4))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Decode should enforce the size cap, got %v", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"base"}, "base"},
		{[]string{"compiler", "precision"}, "compiler.precision"},
		{[]string{"include", "2"}, "include[2]"},
		{[]string{"loadPaths", "0", "x"}, "loadPaths[0].x"},
		{[]string{"0"}, "0"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFormatError_NonCUE(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x.cue") != nil {
		t.Error("FormatError(nil) should be nil")
	}

	base := errors.New("boom")
	err := FormatError(base, "x.cue")
	if !errors.Is(err, base) || !strings.HasPrefix(err.Error(), "x.cue: ") {
		t.Errorf("FormatError(non-CUE) = %v", err)
	}
}

func TestSchemaError_Message(t *testing.T) {
	t.Parallel()

	single := &SchemaError{File: "c.cue", Fields: []FieldError{{Path: "base", Message: "conflicting values"}}}
	if got := single.Error(); got != "c.cue: base: conflicting values" {
		t.Errorf("single = %q", got)
	}

	multi := &SchemaError{File: "c.cue", Fields: []FieldError{{Path: "a", Message: "x"}, {Message: "y"}}}
	want := "c.cue: 2 schema violations:\n  a: x\n  y"
	if got := multi.Error(); got != want {
		t.Errorf("multi = %q, want %q", got, want)
	}
}
