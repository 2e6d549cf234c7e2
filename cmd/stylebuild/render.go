// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/invowk/stylebuild/internal/pipeline"
	"github.com/invowk/stylebuild/internal/resolve"
)

// excerptRadius is the number of lines shown around a failing line.
const excerptRadius = 2

// renderFailure formats one failed file: the positioned message, a source
// excerpt with a column marker and, for ambiguous imports, every match.
func renderFailure(base string, res pipeline.Result) string {
	var sb strings.Builder

	var be *pipeline.BuildError
	if !errors.As(res.Err, &be) {
		fmt.Fprintf(&sb, "%s %s: %v\n", ErrorStyle.Render("✗"), PathStyle.Render(displayPath(base, res.Source)), res.Err)
		return sb.String()
	}

	location := displayPath(base, be.File)
	if be.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d", location, be.Line, be.Column)
	}
	fmt.Fprintf(&sb, "%s %s: %s\n", ErrorStyle.Render("✗"), PathStyle.Render(location), be.Message)

	excerpt := be.Excerpt(excerptRadius)
	width := 1
	if len(excerpt) > 0 {
		width = len(fmt.Sprint(excerpt[len(excerpt)-1].Number))
	}
	for _, line := range excerpt {
		gutter := fmt.Sprintf("%*d |", width, line.Number)
		if line.Current {
			fmt.Fprintf(&sb, "  %s %s %s\n", excerptCurrentStyle.Render(">"), excerptCurrentStyle.Render(gutter), line.Text)
			if be.Column > 0 {
				fmt.Fprintf(&sb, "    %s %s%s\n", excerptGutterStyle.Render(strings.Repeat(" ", width)+" |"),
					strings.Repeat(" ", be.Column-1), caretStyle.Render("^"))
			}
			continue
		}
		fmt.Fprintf(&sb, "    %s %s\n", excerptGutterStyle.Render(gutter), line.Text)
	}

	var amb *resolve.ImportAmbiguousError
	if errors.As(be, &amb) {
		sb.WriteString("  candidates:\n")
		for _, m := range amb.Matches {
			fmt.Fprintf(&sb, "    - %s\n", PathStyle.Render(displayPath(base, m)))
		}
	}
	var nf *resolve.ImportNotFoundError
	if errors.As(be, &nf) && len(nf.Searched) > 0 {
		sb.WriteString("  searched:\n")
		for _, dir := range nf.Searched {
			fmt.Fprintf(&sb, "    - %s\n", displayPath(base, dir))
		}
	}
	return sb.String()
}

// renderSummary renders the per-file outcome of a build as a table.
func renderSummary(base string, results []pipeline.Result) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateRows = false

	tbl.AppendHeader(table.Row{"Source", "State", "Output", "Size"})

	var emitted, failed int
	var written uint64
	for _, res := range results {
		size := ""
		switch res.State {
		case pipeline.StateEmitted, pipeline.StateEmptyShortCircuit, pipeline.StateSkipped:
			written += uint64(len(res.Contents))
			size = humanize.IBytes(uint64(len(res.Contents)))
		}
		switch res.State {
		case pipeline.StateEmitted:
			emitted++
		case pipeline.StateFailed:
			failed++
		}
		tbl.AppendRow(table.Row{displayPath(base, res.Source), stateLabel(res.State), res.Output, size})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d files", len(results)),
		fmt.Sprintf("%d compiled, %d failed", emitted, failed),
		"",
		humanize.IBytes(written),
	})
	return tbl.Render() + "\n"
}

func stateLabel(s pipeline.State) string {
	switch s {
	case pipeline.StateEmitted:
		return SuccessStyle.Render(s.String())
	case pipeline.StateFailed:
		return ErrorStyle.Render(s.String())
	case pipeline.StateSkipped, pipeline.StateIgnored:
		return WarningStyle.Render(s.String())
	default:
		return s.String()
	}
}

// displayPath shortens p relative to base when p lies under it. Graph keys
// are already relative and returned as is.
func displayPath(base, p string) string {
	if p == "" || !filepath.IsAbs(p) || base == "" {
		return p
	}
	rel, err := filepath.Rel(base, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return filepath.ToSlash(rel)
}
