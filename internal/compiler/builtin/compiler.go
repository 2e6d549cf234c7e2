// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/invowk/stylebuild/internal/compiler"
)

// Compiler implements compiler.Compiler for the supported SCSS subset. It is
// stateless and safe for concurrent use.
type Compiler struct {
	logger *log.Logger
}

var _ compiler.Compiler = (*Compiler)(nil)

// New creates a Compiler. A nil logger discards output.
func New(logger *log.Logger) *Compiler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Compiler{logger: logger}
}

// Compile compiles req.Source. Failures are returned as *compiler.Error.
func (c *Compiler) Compile(ctx context.Context, req compiler.Request) (compiler.Result, error) {
	file := req.File
	if file == "" {
		file = compiler.EntryToken
	}
	if valid, errs := req.Options.IsValid(); !valid {
		return compiler.Result{}, &compiler.Error{Message: errs[0].Error(), File: file, Cause: errs[0]}
	}
	if req.Options.SourceMap {
		c.logger.Debug("source maps are not generated", "file", file)
	}

	nodes, err := parseSource(req.Source, file, req.Indented)
	if err != nil {
		return compiler.Result{}, err
	}

	ev := newEvaluator(ctx, req.Importer)
	tree, err := ev.run(nodes, file)
	if err != nil {
		return compiler.Result{}, err
	}

	css := emit(tree, req.Options)
	c.logger.Debug("compiled stylesheet",
		"file", file,
		"imports", ev.imports,
		"in", humanize.Bytes(uint64(len(req.Source))),
		"out", humanize.Bytes(uint64(len(css))),
	)
	return compiler.Result{CSS: css}, nil
}
