// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown
// explanations for the failures users most often hit: unresolvable or
// ambiguous imports, compile errors, configuration problems and import
// cycles. Catalog entries are rendered for the terminal with glamour.
package issue
