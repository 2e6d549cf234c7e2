// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"io"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/invowk/stylebuild/pkg/stylesheet"
)

type (
	// Import is a resolved import: an absolute path confirmed to exist and the
	// contents observed at resolution time.
	Import struct {
		Path     string
		Contents string
	}

	// Walker resolves import specifiers against the importing file's directory
	// followed by a fixed list of load paths. A Walker is immutable and safe for
	// concurrent use.
	Walker struct {
		loadPaths []string
		checker   Checker
		logger    *log.Logger
	}

	// WalkerOptions configures NewWalker.
	WalkerOptions struct {
		// LoadPaths are absolute directories searched after the importing
		// file's directory, in order.
		LoadPaths []string
		// Checker answers candidate existence. Defaults to a disk-only Source.
		Checker Checker
		Logger  *log.Logger
	}

	// DirectoryTrace records every candidate checked in one search directory.
	DirectoryTrace struct {
		Directory  string
		Candidates []Found
	}
)

// NewWalker creates a Walker. The load path list is copied.
func NewWalker(opts WalkerOptions) *Walker {
	w := &Walker{
		loadPaths: slices.Clone(opts.LoadPaths),
		checker:   opts.Checker,
		logger:    opts.Logger,
	}
	if w.checker == nil {
		w.checker = NewSource(nil, nil)
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	return w
}

// LoadPaths returns a copy of the configured load paths.
func (w *Walker) LoadPaths() []string { return slices.Clone(w.loadPaths) }

// SearchDirs returns the directories searched for imports made by
// importingFile, in the order they are tried.
func (w *Walker) SearchDirs(importingFile string) []string {
	dirs := make([]string, 0, len(w.loadPaths)+1)
	dirs = append(dirs, filepath.Dir(importingFile))
	return append(dirs, w.loadPaths...)
}

// Resolve finds the single file specifier refers to when imported from
// importingFile. The first search directory holding exactly one existing
// candidate wins; two or more candidates in the same directory are an
// *ImportAmbiguousError. When no directory holds a candidate the result is an
// *ImportNotFoundError. Read failures other than absence abort with *IOError.
func (w *Walker) Resolve(ctx context.Context, specifier, importingFile string) (Import, error) {
	dirs := w.SearchDirs(importingFile)
	for _, dir := range dirs {
		found, err := w.checkDir(ctx, specifier, dir)
		if err != nil {
			return Import{}, err
		}

		var matches []Found
		for _, f := range found {
			if f.Exists {
				matches = append(matches, f)
			}
		}

		switch len(matches) {
		case 0:
			continue
		case 1:
			w.logger.Debug("resolved import", "specifier", specifier, "from", importingFile, "path", matches[0].Path)
			return Import{Path: matches[0].Path, Contents: matches[0].Contents}, nil
		default:
			paths := make([]string, len(matches))
			for i, m := range matches {
				paths[i] = m.Path
			}
			return Import{}, &ImportAmbiguousError{
				Specifier: specifier,
				From:      importingFile,
				Directory: dir,
				Matches:   paths,
			}
		}
	}

	w.logger.Debug("import not found", "specifier", specifier, "from", importingFile, "searched", len(dirs))
	return Import{}, &ImportNotFoundError{Specifier: specifier, From: importingFile, Searched: dirs}
}

// Explain checks every candidate in every search directory without stopping
// at the first decision and returns the full trace. Only I/O failures are
// reported as errors; the caller decides what the trace means.
func (w *Walker) Explain(ctx context.Context, specifier, importingFile string) ([]DirectoryTrace, error) {
	dirs := w.SearchDirs(importingFile)
	traces := make([]DirectoryTrace, 0, len(dirs))
	for _, dir := range dirs {
		found, err := w.checkDir(ctx, specifier, dir)
		if err != nil {
			return traces, err
		}
		traces = append(traces, DirectoryTrace{Directory: dir, Candidates: found})
	}
	return traces, nil
}

// checkDir checks all candidates of one directory concurrently. Results keep
// candidate order regardless of completion order.
func (w *Walker) checkDir(ctx context.Context, specifier, dir string) ([]Found, error) {
	candidates := stylesheet.Candidates(specifier, dir)
	found := make([]Found, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, candidate := range candidates {
		g.Go(func() error {
			f, err := w.checker.Check(gctx, candidate)
			if err != nil {
				return err
			}
			found[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}
