// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"fmt"
	"strings"

	"github.com/invowk/stylebuild/internal/compiler"
)

type emitter struct {
	style     compiler.OutputStyle
	indent    string
	precision int
	comments  bool
	lines     []string
}

// emit formats the flattened tree. Non-empty output always ends with the
// configured linefeed.
func emit(nodes []cssNode, opts compiler.Options) string {
	e := &emitter{
		style:     opts.Style(),
		indent:    opts.Indent(),
		precision: opts.EffectivePrecision(),
		comments:  opts.SourceComments,
	}
	nl := opts.Linefeed.Sequence()

	if e.style == compiler.OutputCompressed {
		var b strings.Builder
		e.compressed(&b, nodes)
		if b.Len() == 0 {
			return ""
		}
		return b.String() + nl
	}

	e.block(nodes, 0, true)
	if len(e.lines) == 0 {
		return ""
	}
	return strings.Join(e.lines, nl) + nl
}

func (e *emitter) block(nodes []cssNode, level int, top bool) {
	for _, n := range nodes {
		if isEmpty(n) {
			continue
		}
		if top && len(e.lines) > 0 && e.separates(n) {
			e.lines = append(e.lines, "")
		}
		switch n := n.(type) {
		case *cssRule:
			e.rule(n, level)
		case *cssAtRule:
			e.atRule(n, level)
		case *cssComment:
			e.add(e.level(level, n.depth), n.text)
		}
	}
}

// separates reports whether a blank line goes before top-level node n.
func (e *emitter) separates(n cssNode) bool {
	if a, ok := n.(*cssAtRule); ok && !a.block {
		return false
	}
	if e.style == compiler.OutputExpanded {
		return true
	}
	switch n := n.(type) {
	case *cssRule:
		return n.depth == 0
	case *cssAtRule:
		return n.depth == 0
	case *cssComment:
		return n.depth == 0
	}
	return false
}

// level returns the indentation level of a node: its source depth in nested
// style, its at-rule nesting otherwise.
func (e *emitter) level(level, depth int) int {
	if e.style == compiler.OutputNested {
		return depth
	}
	return level
}

func (e *emitter) rule(r *cssRule, level int) {
	lvl := e.level(level, r.depth)
	if e.comments {
		e.add(lvl, fmt.Sprintf("/* line %d, %s */", r.line, r.file))
	}
	selector := strings.Join(r.selectors, ", ")

	if e.style == compiler.OutputCompact {
		parts := make([]string, 0, len(r.decls))
		for _, d := range r.decls {
			parts = append(parts, e.decl(d))
		}
		e.add(lvl, selector+" { "+strings.Join(parts, " ")+" }")
		return
	}

	e.add(lvl, selector+" {")
	for _, d := range r.decls {
		e.add(lvl+1, e.decl(d))
	}
	e.close(lvl)
}

func (e *emitter) atRule(a *cssAtRule, level int) {
	lvl := e.level(level, a.depth)
	head := "@" + a.name
	if a.prelude != "" {
		head += " " + a.prelude
	}
	if !a.block {
		e.add(lvl, head+";")
		return
	}

	if e.style == compiler.OutputCompact && len(a.body) == 0 {
		parts := make([]string, 0, len(a.decls))
		for _, d := range a.decls {
			parts = append(parts, e.decl(d))
		}
		e.add(lvl, head+" { "+strings.Join(parts, " ")+" }")
		return
	}

	e.add(lvl, head+" {")
	for _, d := range a.decls {
		e.add(lvl+1, e.decl(d))
	}
	e.block(a.body, level+1, false)
	e.close(lvl)
}

func (e *emitter) decl(d cssDecl) string {
	if d.comment {
		return d.value
	}
	return d.property + ": " + roundNumbers(d.value, e.precision, false) + ";"
}

// close ends a block. Nested style puts the brace on the last line.
func (e *emitter) close(lvl int) {
	if e.style == compiler.OutputNested {
		e.lines[len(e.lines)-1] += " }"
		return
	}
	e.add(lvl, "}")
}

func (e *emitter) add(lvl int, text string) {
	e.lines = append(e.lines, strings.Repeat(e.indent, lvl)+text)
}

func (e *emitter) compressed(b *strings.Builder, nodes []cssNode) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *cssRule:
			decls := e.compressedDecls(n.decls)
			if decls == "" {
				continue
			}
			b.WriteString(strings.Join(n.selectors, ","))
			b.WriteString("{" + decls + "}")
		case *cssAtRule:
			head := "@" + n.name
			if n.prelude != "" {
				head += " " + n.prelude
			}
			if !n.block {
				b.WriteString(head + ";")
				continue
			}
			var body strings.Builder
			body.WriteString(e.compressedDecls(n.decls))
			e.compressed(&body, n.body)
			if body.Len() == 0 {
				continue
			}
			b.WriteString(head + "{" + body.String() + "}")
		case *cssComment:
			if strings.HasPrefix(n.text, "/*!") {
				b.WriteString(n.text)
			}
		}
	}
}

func (e *emitter) compressedDecls(decls []cssDecl) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		switch {
		case d.comment && strings.HasPrefix(d.value, "/*!"):
			parts = append(parts, d.value)
		case d.comment:
		default:
			parts = append(parts, d.property+":"+compressValue(roundNumbers(d.value, e.precision, true)))
		}
	}
	return strings.Join(parts, ";")
}

func isEmpty(n cssNode) bool {
	switch n := n.(type) {
	case *cssRule:
		return len(n.decls) == 0
	case *cssAtRule:
		if !n.block || len(n.decls) > 0 {
			return false
		}
		for _, child := range n.body {
			if !isEmpty(child) {
				return false
			}
		}
		return true
	}
	return false
}
