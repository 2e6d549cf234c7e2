// SPDX-License-Identifier: MPL-2.0

// Package builtin is a self-contained compiler for a practical subset of SCSS.
//
// Supported: @import inlining through the compiler.Importer (plain CSS imports
// are kept verbatim), $variables with !default and !global, #{} interpolation,
// nested style rules with the parent selector &, block at-rules such as
// @media and @supports with bubbling out of style rules, comments, and the
// four classic output styles.
//
// Not supported: mixins, functions, control flow, @use/@forward, nested
// properties and arithmetic. Source maps are never produced.
//
// File organization:
//   - scanner.go: character-level reading with 1-based positions
//   - parser.go: statement parser producing the syntax tree in ast.go
//   - eval.go: variable scoping, import inlining and rule flattening
//   - values.go: substitution and value normalization helpers
//   - emit.go: CSS formatting for each output style
//   - compiler.go: the compiler.Compiler implementation
package builtin
