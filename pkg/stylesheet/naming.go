// SPDX-License-Identifier: MPL-2.0

package stylesheet

import (
	"path/filepath"
	"strings"
)

const (
	// PartialPrefix marks a file as a partial. Partials are only ever pulled in
	// through an import and never produce output of their own.
	PartialPrefix = "_"

	// ExtSCSS is the preferred recognized stylesheet extension.
	ExtSCSS = ".scss"
	// ExtSass is the second recognized stylesheet extension.
	ExtSass = ".sass"
	// ExtCSS is the extension of compiled output files.
	ExtCSS = ".css"

	// DefaultInclude selects every file carrying a recognized extension.
	DefaultInclude = "**/*.{scss,sass}"
)

// Extensions lists the recognized stylesheet extensions in precedence order.
// When an import omits the extension, candidates are generated in this order.
var Extensions = []string{ExtSCSS, ExtSass}

// IsRecognizedExt reports whether ext (including the leading dot) is one of
// the recognized stylesheet extensions. The comparison is case-sensitive, as
// import specifiers are.
func IsRecognizedExt(ext string) bool {
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// HasStylesheetExt reports whether the file name carries a recognized extension.
func HasStylesheetExt(name string) bool {
	return IsRecognizedExt(filepath.Ext(name))
}

// IsIndented reports whether the file name marks indented-syntax source.
func IsIndented(name string) bool {
	return filepath.Ext(name) == ExtSass
}

// IsPartial reports whether the base name of p starts with the partial marker.
func IsPartial(p string) bool {
	return strings.HasPrefix(filepath.Base(filepath.FromSlash(p)), PartialPrefix)
}

// OutputPath derives the compiled output path for a source path by replacing
// its recognized extension with ExtCSS. A path without a recognized extension
// gets ExtCSS appended. Directory components and the separator style of p are
// preserved.
func OutputPath(p string) string {
	ext := pathExt(p)
	if IsRecognizedExt(ext) {
		return strings.TrimSuffix(p, ext) + ExtCSS
	}
	return p + ExtCSS
}

// pathExt is filepath.Ext that also treats '/' as a separator, so slash-separated
// build graph paths behave the same on every platform.
func pathExt(p string) string {
	for i := len(p) - 1; i >= 0 && p[i] != '/' && !filepath.IsPathSeparator(p[i]); i-- {
		if p[i] == '.' {
			return p[i:]
		}
	}
	return ""
}
