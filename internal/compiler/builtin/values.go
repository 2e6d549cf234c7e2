// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"strconv"
	"strings"
)

// splitTopLevel splits s on sep outside strings, parentheses and brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	start, depth := 0, 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// indexTopLevel returns the index of the first c outside strings,
// parentheses and interpolation, or -1.
func indexTopLevel(s string, c byte) int {
	parts := splitTopLevel(s, c)
	if len(parts) == 1 {
		return -1
	}
	return len(parts[0])
}

// collapseSpace replaces runs of whitespace outside strings with one space.
func collapseSpace(s string) string {
	var b strings.Builder
	var quote byte
	space := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote == 0 && isSpace(c) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteByte(c)
		switch {
		case quote != 0 && c == '\\' && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		}
	}
	return b.String()
}

// compressValue removes optional spaces around commas outside strings.
func compressValue(s string) string {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' && i+1 < len(s) {
				b.WriteByte(c)
				i++
				c = s[i]
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ',':
			trimmed := strings.TrimRight(b.String(), " ")
			b.Reset()
			b.WriteString(trimmed)
			b.WriteByte(',')
			for i+1 < len(s) && s[i+1] == ' ' {
				i++
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// roundNumbers rounds every decimal number outside strings and url() to
// precision fractional digits and drops trailing zeros. With stripZero a
// leading "0." becomes ".".
func roundNumbers(s string, precision int, stripZero bool) string {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			b.WriteByte(c)
			continue
		}
		if strings.HasPrefix(s[i:], "url(") {
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				b.WriteString(s[i:])
				break
			}
			b.WriteString(s[i : i+end+1])
			i += end
			continue
		}

		if (isDigit(c) || c == '.' && i+1 < len(s) && isDigit(s[i+1])) && !followsWord(s, i) {
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			if j < len(s) && s[j] == '.' && j+1 < len(s) && isDigit(s[j+1]) {
				j++
				for j < len(s) && isDigit(s[j]) {
					j++
				}
				b.WriteString(formatNumber(s[i:j], precision, stripZero))
			} else {
				b.WriteString(s[i:j])
			}
			i = j - 1
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func formatNumber(lit string, precision int, stripZero bool) string {
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	out := strconv.FormatFloat(v, 'f', precision, 64)
	if strings.Contains(out, ".") {
		out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	}
	if stripZero && strings.HasPrefix(out, "0.") {
		out = out[1:]
	}
	return out
}

// followsWord reports whether the character before i belongs to an
// identifier, a hex color or another number, where digits are not a number
// of their own.
func followsWord(s string, i int) bool {
	if i == 0 {
		return false
	}
	p := s[i-1]
	return isIdentChar(p) && p != '-' || p == '#' || p == '.'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// unquote strips one pair of matching quotes.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// isPlainImport reports whether an import target is left to the browser
// instead of being inlined: url(), a .css file, a remote or protocol-relative
// URL, a target followed by a media query, or an unquoted target.
func isPlainImport(raw string) bool {
	if strings.HasPrefix(raw, "url(") {
		return true
	}
	if raw == "" || (raw[0] != '"' && raw[0] != '\'') {
		return true
	}
	end := strings.IndexByte(raw[1:], raw[0])
	if end < 0 {
		return true
	}
	if strings.TrimSpace(raw[end+2:]) != "" {
		return true
	}
	name := raw[1 : end+1]
	return strings.HasSuffix(name, ".css") ||
		strings.HasPrefix(name, "http://") ||
		strings.HasPrefix(name, "https://") ||
		strings.HasPrefix(name, "//")
}
