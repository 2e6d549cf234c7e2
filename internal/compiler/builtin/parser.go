// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"strings"

	"github.com/invowk/stylebuild/internal/compiler"
)

// errIndentedSyntax is the message for indented-syntax sources.
const errIndentedSyntax = "indented syntax is not supported; write this file with braces and semicolons"

type parser struct {
	s *scanner
}

// parseSource parses src, first rejecting indented-syntax text when the file
// is marked indented. Indented files written with braces parse as usual.
func parseSource(src, file string, indented bool) ([]node, error) {
	if indented {
		if line, ok := indentedLine(src); ok {
			return nil, &compiler.Error{Message: errIndentedSyntax, File: file, Line: line, Column: 1}
		}
	}
	return parse(src, file)
}

// indentedLine returns the first content line of src when src has no braces
// or semicolons at all.
func indentedLine(src string) (int, bool) {
	if strings.ContainsAny(src, "{;") {
		return 0, false
	}
	for i, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
			continue
		}
		return i + 1, true
	}
	return 0, false
}

// parse parses a complete stylesheet. file is the token reported in errors.
func parse(src, file string) ([]node, error) {
	p := &parser{s: newScanner(src, file)}
	return p.parseStatements(false)
}

// parseStatements parses statements until end of input or, when nested, the
// closing brace of the enclosing block.
func (p *parser) parseStatements(nested bool) ([]node, error) {
	var nodes []node
	for {
		p.s.skipTrivia()
		if p.s.eof() {
			if nested {
				return nil, p.s.errorf(p.s.pos, `expected "}"`)
			}
			return nodes, nil
		}

		var (
			n   node
			err error
		)
		switch c := p.s.peek(); {
		case c == '}':
			if !nested {
				return nil, p.s.errorf(p.s.pos, `unexpected "}"`)
			}
			p.s.next()
			return nodes, nil
		case c == ';':
			p.s.next()
			continue
		case c == '/' && p.s.peekAt(1) == '*':
			n, err = p.parseComment()
		case c == '@':
			n, err = p.parseAtRule()
		case c == '$':
			n, err = p.parseVariable()
		default:
			n, err = p.parseRuleOrDeclaration()
		}
		if err != nil {
			return nil, err
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
}

func (p *parser) parseComment() (node, error) {
	pos := p.s.pos
	text, err := p.s.readBlockComment()
	if err != nil {
		return nil, err
	}
	return &comment{pos: pos, text: text}, nil
}

func (p *parser) parseAtRule() (node, error) {
	pos := p.s.pos
	p.s.next()
	name := p.s.readIdent()
	if name == "" {
		return nil, p.s.errorf(p.s.pos, "expected identifier")
	}
	p.s.skipTrivia()
	preludePos := p.s.pos

	prelude, stop, err := p.s.readUntil("{;}")
	if err != nil {
		return nil, err
	}
	prelude = strings.TrimSpace(prelude)

	if name == "import" {
		if stop == '{' {
			return nil, p.s.errorf(p.s.pos, `expected ";"`)
		}
		if stop == ';' {
			p.s.next()
		}
		return p.importTargets(pos, prelude, preludePos)
	}

	if stop != '{' {
		if stop == ';' {
			p.s.next()
		}
		return &atRule{pos: pos, name: name, prelude: prelude, preludePos: preludePos}, nil
	}

	p.s.next()
	children, err := p.parseStatements(true)
	if err != nil {
		return nil, err
	}
	return &atRule{pos: pos, name: name, prelude: prelude, preludePos: preludePos, block: true, children: children}, nil
}

func (p *parser) importTargets(pos position, prelude string, preludePos position) (node, error) {
	if prelude == "" {
		return nil, p.s.errorf(preludePos, "expected string")
	}
	rule := &importRule{pos: pos}
	offset := 0
	for _, part := range splitTopLevel(prelude, ',') {
		lead := len(part) - len(strings.TrimLeft(part, " \t\r\n\f"))
		target := strings.TrimSpace(part)
		tpos := advanceString(preludePos, prelude[:offset+lead])
		offset += len(part) + 1
		if target == "" {
			return nil, p.s.errorf(tpos, "expected string")
		}
		rule.targets = append(rule.targets, importTarget{pos: tpos, raw: target})
	}
	return rule, nil
}

func (p *parser) parseVariable() (node, error) {
	pos := p.s.pos
	p.s.next()
	name := p.s.readIdent()
	if name == "" {
		return nil, p.s.errorf(p.s.pos, "expected variable name")
	}
	p.s.skipTrivia()
	if p.s.peek() != ':' {
		return nil, p.s.errorf(p.s.pos, `expected ":"`)
	}
	p.s.next()
	p.s.skipTrivia()
	valuePos := p.s.pos

	raw, stop, err := p.s.readUntil(";}")
	if err != nil {
		return nil, err
	}
	if stop == ';' {
		p.s.next()
	}

	decl := &variableDecl{pos: pos, name: name, valuePos: valuePos}
	value := strings.TrimSpace(raw)
	for {
		switch {
		case strings.HasSuffix(value, "!default"):
			decl.isDefault = true
			value = strings.TrimSpace(strings.TrimSuffix(value, "!default"))
			continue
		case strings.HasSuffix(value, "!global"):
			decl.isGlobal = true
			value = strings.TrimSpace(strings.TrimSuffix(value, "!global"))
			continue
		}
		break
	}
	if value == "" {
		return nil, p.s.errorf(valuePos, "expected expression")
	}
	decl.value = value
	return decl, nil
}

func (p *parser) parseRuleOrDeclaration() (node, error) {
	pos := p.s.pos
	text, stop, err := p.s.readUntil("{;}")
	if err != nil {
		return nil, err
	}

	if stop == '{' {
		p.s.next()
		selector := strings.TrimSpace(text)
		if selector == "" {
			return nil, p.s.errorf(pos, "expected selector")
		}
		children, err := p.parseStatements(true)
		if err != nil {
			return nil, err
		}
		return &styleRule{pos: pos, selector: selector, children: children}, nil
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	colon := indexTopLevel(text, ':')
	if colon < 0 {
		return nil, p.s.errorf(p.s.pos, `expected "{"`)
	}
	if stop == ';' {
		p.s.next()
	}

	property := strings.TrimSpace(text[:colon])
	if property == "" {
		return nil, p.s.errorf(pos, "expected property name")
	}
	rest := text[colon+1:]
	lead := len(rest) - len(strings.TrimLeft(rest, " \t\r\n\f"))
	value := strings.TrimSpace(rest)
	if value == "" {
		return nil, p.s.errorf(advanceString(pos, text[:colon+1]), "expected expression")
	}
	return &declaration{
		pos:      pos,
		property: property,
		value:    value,
		valuePos: advanceString(pos, text[:colon+1+lead]),
	}, nil
}
