// SPDX-License-Identifier: MPL-2.0

package builtin

type (
	node interface {
		at() position
	}

	// styleRule is a selector with a block.
	styleRule struct {
		pos      position
		selector string
		children []node
	}

	// declaration is a property: value pair.
	declaration struct {
		pos      position
		property string
		value    string
		valuePos position
	}

	// variableDecl is a $name: value assignment.
	variableDecl struct {
		pos       position
		name      string
		value     string
		valuePos  position
		isDefault bool
		isGlobal  bool
	}

	// atRule is any at-rule other than @import. block is false for statements
	// such as @charset.
	atRule struct {
		pos        position
		name       string
		prelude    string
		preludePos position
		block      bool
		children   []node
	}

	// importRule lists the comma-separated targets of one @import.
	importRule struct {
		pos     position
		targets []importTarget
	}

	importTarget struct {
		pos position
		raw string
	}

	// comment is a preserved /* */ comment.
	comment struct {
		pos  position
		text string
	}
)

func (n *styleRule) at() position    { return n.pos }
func (n *declaration) at() position  { return n.pos }
func (n *variableDecl) at() position { return n.pos }
func (n *atRule) at() position       { return n.pos }
func (n *importRule) at() position   { return n.pos }
func (n *comment) at() position      { return n.pos }
