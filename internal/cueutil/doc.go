// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles user CUE files against an embedded schema
// definition and decodes the result, reporting violations with JSON-path
// style field locations.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	values, err := cueutil.Decode[map[string]any](schema, "#Config", data,
//	    cueutil.WithFilename(path),
//	    cueutil.WithConcrete(false),
//	)
package cueutil
