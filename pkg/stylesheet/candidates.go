// SPDX-License-Identifier: MPL-2.0

package stylesheet

import (
	"path/filepath"
	"strings"
)

// Candidates returns the ordered list of absolute paths an import specifier
// may refer to when looked up in directory. The order encodes precedence and
// must be tried exactly as returned:
//
//   - partial files are preferred over standalone files of the same name
//   - ExtSCSS is preferred over ExtSass
//
// A specifier whose base name already starts with PartialPrefix yields the
// specifier itself when it carries a recognized extension, and one candidate
// per recognized extension otherwise. Any other specifier yields the
// partial-prefixed sibling before the bare name; without an extension that
// makes four candidates.
//
// directory is expected to be absolute. An absolute specifier ignores
// directory. An empty specifier has no candidates.
func Candidates(specifier, directory string) []string {
	if strings.TrimSpace(specifier) == "" {
		return nil
	}

	spec := filepath.FromSlash(specifier)
	specDir, base := filepath.Split(spec)
	if base == "" {
		return nil
	}

	recognized := IsRecognizedExt(filepath.Ext(base))

	var names []string
	switch {
	case strings.HasPrefix(base, PartialPrefix) && recognized:
		names = []string{base}
	case strings.HasPrefix(base, PartialPrefix):
		names = withExtensions(base)
	case recognized:
		names = []string{PartialPrefix + base, base}
	default:
		names = append(withExtensions(PartialPrefix+base), withExtensions(base)...)
	}

	candidates := make([]string, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, absJoin(directory, filepath.Join(specDir, name)))
	}
	return candidates
}

func withExtensions(name string) []string {
	out := make([]string, 0, len(Extensions))
	for _, ext := range Extensions {
		out = append(out, name+ext)
	}
	return out
}

func absJoin(directory, rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(directory, rel)
}
