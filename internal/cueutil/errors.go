// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
	"github.com/dustin/go-humanize"
)

var (
	// ErrSchema is returned when a file does not satisfy its schema.
	ErrSchema = errors.New("schema validation failed")

	// ErrFileTooLarge is returned when a file exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file too large")
)

type (
	// FieldError is one schema violation.
	FieldError struct {
		// Path is the JSON-path of the offending field, e.g. "compiler.precision".
		// It is empty for errors that are not tied to a field.
		Path    string
		Message string
	}

	// SchemaError collects every violation found in one file.
	SchemaError struct {
		File   string
		Fields []FieldError
	}

	// FileTooLargeError reports a file rejected by CheckFileSize.
	FileTooLargeError struct {
		File  string
		Size  int64
		Limit int64
	}
)

func (f FieldError) String() string {
	if f.Path == "" {
		return f.Message
	}
	return f.Path + ": " + f.Message
}

func (e *SchemaError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("%s: %s", e.File, e.Fields[0])
	}
	lines := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		lines[i] = f.String()
	}
	return fmt.Sprintf("%s: %d schema violations:\n  %s", e.File, len(e.Fields), strings.Join(lines, "\n  "))
}

// Unwrap returns ErrSchema for errors.Is.
func (e *SchemaError) Unwrap() error { return ErrSchema }

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %s exceeds maximum %s",
		e.File, humanize.IBytes(uint64(e.Size)), humanize.IBytes(uint64(e.Limit)))
}

// Unwrap returns ErrFileTooLarge for errors.Is.
func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// FormatError turns a CUE evaluation error into a *SchemaError whose field
// paths use JSON-path notation ("include[2]" rather than "include.2").
// Errors that carry no CUE detail are wrapped with the file name.
func FormatError(err error, file string) error {
	if err == nil {
		return nil
	}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", file, err)
	}

	fields := make([]FieldError, 0, len(list))
	for _, e := range list {
		path := formatPath(cueerrors.Path(e))
		msg := e.Error()
		if path != "" {
			// CUE repeats the path at the start of some messages.
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}
		fields = append(fields, FieldError{Path: path, Message: msg})
	}
	return &SchemaError{File: file, Fields: fields}
}

// formatPath renders ["include", "2"] as "include[2]".
func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			sb.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize rejects data larger than limit.
func CheckFileSize(data []byte, limit int64, file string) error {
	if size := int64(len(data)); size > limit {
		return &FileTooLargeError{File: file, Size: size, Limit: limit}
	}
	return nil
}
