// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"context"
	"errors"
	"strings"

	"github.com/invowk/stylebuild/internal/compiler"
	"github.com/invowk/stylebuild/pkg/stylesheet"
)

type (
	// cssNode is a node of the flattened output tree.
	cssNode interface {
		isCSS()
	}

	cssRule struct {
		selectors []string
		decls     []cssDecl
		depth     int
		line      int
		file      string
	}

	// cssDecl is a declaration, or a comment when comment is set.
	cssDecl struct {
		property string
		value    string
		comment  bool
	}

	cssAtRule struct {
		name    string
		prelude string
		block   bool
		decls   []cssDecl
		body    []cssNode
		depth   int
	}

	cssComment struct {
		text  string
		depth int
	}

	// frame is the evaluation context of one block.
	frame struct {
		file    string
		parents []string
		rule    *cssRule
		at      *cssAtRule
		out     *[]cssNode
		depth   int
	}

	evaluator struct {
		ctx      context.Context
		importer compiler.Importer
		scopes   []map[string]string
		// stack holds the file tokens currently being imported.
		stack   []string
		imports int
	}
)

func (*cssRule) isCSS()    {}
func (*cssAtRule) isCSS()  {}
func (*cssComment) isCSS() {}

func newEvaluator(ctx context.Context, importer compiler.Importer) *evaluator {
	return &evaluator{
		ctx:      ctx,
		importer: importer,
		scopes:   []map[string]string{{}},
	}
}

// run evaluates the entry stylesheet and returns the flattened tree.
func (e *evaluator) run(nodes []node, file string) ([]cssNode, error) {
	var out []cssNode
	e.stack = append(e.stack, file)
	err := e.evalNodes(nodes, frame{file: file, out: &out})
	return out, err
}

func (e *evaluator) evalNodes(nodes []node, f frame) error {
	for _, n := range nodes {
		if err := e.ctx.Err(); err != nil {
			return err
		}
		var err error
		switch n := n.(type) {
		case *comment:
			e.evalComment(n, f)
		case *variableDecl:
			err = e.evalVariable(n, f)
		case *declaration:
			err = e.evalDeclaration(n, f)
		case *styleRule:
			err = e.evalStyleRule(n, f)
		case *atRule:
			err = e.evalAtRule(n, f)
		case *importRule:
			err = e.evalImport(n, f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *evaluator) evalComment(n *comment, f frame) {
	switch {
	case f.rule != nil:
		f.rule.decls = append(f.rule.decls, cssDecl{value: n.text, comment: true})
	case f.at != nil && len(f.parents) == 0:
		f.at.decls = append(f.at.decls, cssDecl{value: n.text, comment: true})
	default:
		*f.out = append(*f.out, &cssComment{text: n.text, depth: f.depth})
	}
}

func (e *evaluator) evalVariable(n *variableDecl, f frame) error {
	if n.isDefault {
		if _, ok := e.lookup(n.name); ok {
			return nil
		}
	}
	value, err := e.substitute(n.value, n.valuePos, f.file)
	if err != nil {
		return err
	}
	scope := e.scopes[len(e.scopes)-1]
	if n.isGlobal {
		scope = e.scopes[0]
	}
	scope[varKey(n.name)] = value
	return nil
}

func (e *evaluator) evalDeclaration(n *declaration, f frame) error {
	property, err := e.substitute(n.property, n.pos, f.file)
	if err != nil {
		return err
	}
	value, err := e.substitute(n.value, n.valuePos, f.file)
	if err != nil {
		return err
	}
	decl := cssDecl{property: collapseSpace(property), value: collapseSpace(value)}

	switch {
	case f.rule != nil:
		f.rule.decls = append(f.rule.decls, decl)
	case f.at != nil && len(f.parents) == 0:
		f.at.decls = append(f.at.decls, decl)
	default:
		return positioned(f.file, n.pos, "declarations may only be used within style rules")
	}
	return nil
}

func (e *evaluator) evalStyleRule(n *styleRule, f frame) error {
	raw, err := e.substitute(n.selector, n.pos, f.file)
	if err != nil {
		return err
	}
	selectors, err := expandSelectors(f.parents, raw)
	if err != nil {
		return positioned(f.file, n.pos, "%s", err.Error())
	}

	rule := &cssRule{selectors: selectors, depth: f.depth, line: n.pos.line, file: f.file}
	*f.out = append(*f.out, rule)

	e.push()
	defer e.pop()
	return e.evalNodes(n.children, frame{
		file:    f.file,
		parents: selectors,
		rule:    rule,
		out:     f.out,
		depth:   f.depth + 1,
	})
}

func (e *evaluator) evalAtRule(n *atRule, f frame) error {
	prelude, err := e.substitute(n.prelude, n.preludePos, f.file)
	if err != nil {
		return err
	}
	at := &cssAtRule{name: n.name, prelude: collapseSpace(prelude), block: n.block, depth: f.depth}
	*f.out = append(*f.out, at)
	if !n.block {
		return nil
	}

	inner := frame{file: f.file, parents: f.parents, at: at, out: &at.body, depth: f.depth + 1}
	if len(f.parents) > 0 {
		// Declarations directly inside a bubbled at-rule belong to a copy of
		// the enclosing style rule.
		wrapper := &cssRule{selectors: f.parents, depth: f.depth + 1, line: n.pos.line, file: f.file}
		at.body = append(at.body, wrapper)
		inner.rule = wrapper
	}

	e.push()
	defer e.pop()
	return e.evalNodes(n.children, inner)
}

func (e *evaluator) evalImport(n *importRule, f frame) error {
	for _, target := range n.targets {
		raw, err := e.substitute(target.raw, target.pos, f.file)
		if err != nil {
			return err
		}
		if isPlainImport(raw) {
			if f.rule != nil || f.at != nil {
				return positioned(f.file, n.pos, "this at-rule is not allowed here")
			}
			*f.out = append(*f.out, &cssAtRule{name: "import", prelude: collapseSpace(raw), depth: f.depth})
			continue
		}
		if err := e.inline(unquote(raw), target.pos, f); err != nil {
			return err
		}
	}
	return nil
}

// inline resolves specifier through the importer and evaluates the imported
// stylesheet in place, with its resolved path as file token.
func (e *evaluator) inline(specifier string, pos position, f frame) error {
	if e.importer == nil {
		return positioned(f.file, pos, "file to import not found or unreadable: %s", specifier)
	}

	imp, err := e.importer.Import(e.ctx, specifier, f.file)
	if err != nil {
		if ctxErr := e.ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var ce *compiler.Error
		if errors.As(err, &ce) && ce.Line > 0 {
			return err
		}
		cerr := positioned(f.file, pos, "%s", err.Error())
		cerr.Cause = err
		return cerr
	}

	for _, active := range e.stack {
		if active == imp.Path {
			chain := append(append([]string{}, e.stack...), imp.Path)
			return positioned(f.file, pos, "an @import loop has been found: %s", strings.Join(chain, " imports "))
		}
	}

	nodes, err := parseSource(imp.Contents, imp.Path, stylesheet.IsIndented(imp.Path))
	if err != nil {
		return err
	}

	e.imports++
	e.stack = append(e.stack, imp.Path)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	f.file = imp.Path
	return e.evalNodes(nodes, f)
}

// substitute replaces $variables outside strings and #{} interpolations.
// start is the source position of text, used to position errors.
func (e *evaluator) substitute(text string, start position, file string) (string, error) {
	if !strings.ContainsAny(text, "$#") {
		return text, nil
	}

	var b strings.Builder
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]

		if c == '#' && i+1 < len(text) && text[i+1] == '{' {
			end := matchingBrace(text, i+1)
			if end < 0 {
				return "", positioned(file, advanceString(start, text[:i]), `expected "}"`)
			}
			innerStart := advanceString(start, text[:i+2])
			inner, err := e.substitute(text[i+2:end], innerStart, file)
			if err != nil {
				return "", err
			}
			b.WriteString(unquote(strings.TrimSpace(inner)))
			i = end
			continue
		}

		if quote != 0 {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(text) {
				i++
				b.WriteByte(text[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}

		switch {
		case c == '"' || c == '\'':
			quote = c
			b.WriteByte(c)
		case c == '$' && i+1 < len(text) && isIdentStart(text[i+1]):
			j := i + 1
			for j < len(text) && isIdentChar(text[j]) {
				j++
			}
			name := text[i+1 : j]
			value, ok := e.lookup(name)
			if !ok {
				return "", positioned(file, advanceString(start, text[:i]), "undefined variable: $%s", name)
			}
			b.WriteString(value)
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func (e *evaluator) lookup(name string) (string, bool) {
	key := varKey(name)
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][key]; ok {
			return v, true
		}
	}
	return "", false
}

// varKey normalizes a variable name; - and _ are interchangeable.
func varKey(name string) string { return strings.ReplaceAll(name, "_", "-") }

func (e *evaluator) push() { e.scopes = append(e.scopes, map[string]string{}) }
func (e *evaluator) pop()  { e.scopes = e.scopes[:len(e.scopes)-1] }

// expandSelectors resolves a selector list against the parent selectors.
func expandSelectors(parents []string, selector string) ([]string, error) {
	var children []string
	for _, part := range splitTopLevel(selector, ',') {
		if part = collapseSpace(part); part != "" {
			children = append(children, part)
		}
	}
	if len(children) == 0 {
		return nil, errors.New("expected selector")
	}

	if len(parents) == 0 {
		for _, c := range children {
			if strings.Contains(c, "&") {
				return nil, errors.New(`top-level selectors may not contain the parent selector "&"`)
			}
		}
		return children, nil
	}

	out := make([]string, 0, len(parents)*len(children))
	for _, p := range parents {
		for _, c := range children {
			if strings.Contains(c, "&") {
				out = append(out, strings.ReplaceAll(c, "&", p))
			} else {
				out = append(out, p+" "+c)
			}
		}
	}
	return out, nil
}

// matchingBrace returns the index of the brace closing the one at open.
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func positioned(file string, p position, format string, args ...any) *compiler.Error {
	s := scanner{file: file}
	return s.errorf(p, format, args...)
}
