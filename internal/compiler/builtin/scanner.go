// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"fmt"
	"strings"

	"github.com/invowk/stylebuild/internal/compiler"
)

type (
	// position is a 1-based line and column.
	position struct {
		line int
		col  int
	}

	scanner struct {
		src  string
		file string
		off  int
		pos  position
	}
)

func newScanner(src, file string) *scanner {
	return &scanner{src: src, file: file, pos: position{line: 1, col: 1}}
}

func (s *scanner) eof() bool { return s.off >= len(s.src) }

func (s *scanner) peek() byte { return s.peekAt(0) }

func (s *scanner) peekAt(n int) byte {
	if s.off+n >= len(s.src) {
		return 0
	}
	return s.src[s.off+n]
}

func (s *scanner) next() byte {
	if s.eof() {
		return 0
	}
	c := s.src[s.off]
	s.off++
	s.pos = advance(s.pos, c)
	return c
}

func (s *scanner) errorf(p position, format string, args ...any) *compiler.Error {
	return &compiler.Error{
		Message: fmt.Sprintf(format, args...),
		File:    s.file,
		Line:    p.line,
		Column:  p.col,
	}
}

// skipTrivia skips whitespace and line comments.
func (s *scanner) skipTrivia() {
	for !s.eof() {
		c := s.peek()
		switch {
		case isSpace(c):
			s.next()
		case c == '/' && s.peekAt(1) == '/':
			for !s.eof() && s.peek() != '\n' {
				s.next()
			}
		default:
			return
		}
	}
}

// readIdent reads a run of identifier characters.
func (s *scanner) readIdent() string {
	start := s.off
	for !s.eof() && isIdentChar(s.peek()) {
		s.next()
	}
	return s.src[start:s.off]
}

// readString reads a quoted string including its quotes. The scanner must be
// positioned on the opening quote.
func (s *scanner) readString() (string, error) {
	start, startPos := s.off, s.pos
	quote := s.next()
	for {
		switch c := s.next(); c {
		case 0:
			return "", s.errorf(startPos, "unterminated string")
		case '\\':
			if s.next() == 0 {
				return "", s.errorf(startPos, "unterminated string")
			}
		case '\n':
			return "", s.errorf(startPos, "unterminated string")
		case quote:
			return s.src[start:s.off], nil
		}
	}
}

// readBlockComment reads a /* */ comment including its delimiters.
func (s *scanner) readBlockComment() (string, error) {
	start, startPos := s.off, s.pos
	s.next()
	s.next()
	for {
		if s.eof() {
			return "", s.errorf(startPos, "unterminated comment")
		}
		if s.peek() == '*' && s.peekAt(1) == '/' {
			s.next()
			s.next()
			return s.src[start:s.off], nil
		}
		s.next()
	}
}

// readUntil reads raw text up to, but not including, the first stop character
// found outside strings, parentheses, brackets and #{} interpolation. Block
// and line comments at the outer level are dropped. It returns the stop
// character, or 0 at end of input.
func (s *scanner) readUntil(stops string) (string, byte, error) {
	var b strings.Builder
	depth := 0
	for !s.eof() {
		c := s.peek()
		switch {
		case c == '"' || c == '\'':
			str, err := s.readString()
			if err != nil {
				return "", 0, err
			}
			b.WriteString(str)
			continue
		case c == '/' && s.peekAt(1) == '*':
			if _, err := s.readBlockComment(); err != nil {
				return "", 0, err
			}
			b.WriteByte(' ')
			continue
		case c == '/' && s.peekAt(1) == '/' && depth == 0:
			for !s.eof() && s.peek() != '\n' {
				s.next()
			}
			continue
		case c == '#' && s.peekAt(1) == '{':
			b.WriteByte(s.next())
			b.WriteByte(s.next())
			depth++
			continue
		case c == '(' || c == '[':
			depth++
		case (c == ')' || c == ']' || c == '}') && depth > 0:
			depth--
			b.WriteByte(s.next())
			continue
		case depth == 0 && strings.IndexByte(stops, c) >= 0:
			return b.String(), c, nil
		}
		b.WriteByte(s.next())
	}
	return b.String(), 0, nil
}

func advance(p position, c byte) position {
	if c == '\n' {
		return position{line: p.line + 1, col: 1}
	}
	return position{line: p.line, col: p.col + 1}
}

// advanceString returns the position reached after reading text from p.
func advanceString(p position, text string) position {
	for i := 0; i < len(text); i++ {
		p = advance(p, text[i])
	}
	return p
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '-' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
