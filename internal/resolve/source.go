// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

type (
	// Location says where a candidate path lives. It is decided once per
	// candidate by Source.Locate and is either InGraph or OnDisk.
	Location interface {
		// AbsPath returns the absolute path of the candidate.
		AbsPath() string
		isLocation()
	}

	// InGraph is a candidate under the virtual build graph root.
	InGraph struct {
		// Rel is the slash-separated path relative to the graph root.
		Rel string
		Abs string
	}

	// OnDisk is a candidate outside the graph root, read from the filesystem.
	OnDisk struct {
		Abs string
	}

	// Graph is the lookup capability of the enclosing build system. Lookup
	// returns the current in-memory contents of a buildable file, which may be
	// newer than what is on disk.
	Graph interface {
		Root() string
		Lookup(ctx context.Context, rel string) (contents string, ok bool)
	}

	// FileReader reads whole files from disk. A missing file must be reported
	// with an error matching fs.ErrNotExist.
	FileReader interface {
		ReadFile(name string) ([]byte, error)
	}

	// Checker answers whether an absolute candidate path exists.
	Checker interface {
		Check(ctx context.Context, abs string) (Found, error)
	}

	// Found is the outcome of an existence check. Contents is only meaningful
	// when Exists is true.
	Found struct {
		Exists   bool
		Path     string
		Contents string
		Location Location
	}

	// Source checks candidates against the build graph first and the disk second.
	Source struct {
		graph Graph
		root  string
		disk  FileReader
	}

	osReader struct{}
)

// AbsPath implements Location.
func (l InGraph) AbsPath() string { return l.Abs }

// AbsPath implements Location.
func (l OnDisk) AbsPath() string { return l.Abs }

func (InGraph) isLocation() {}
func (OnDisk) isLocation()  {}

// OSReader returns a FileReader backed by the local filesystem. Reading a
// directory reports fs.ErrNotExist, since a directory is never an import.
func OSReader() FileReader { return osReader{} }

func (osReader) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err == nil {
		return data, nil
	}
	if info, statErr := os.Stat(name); statErr == nil && info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return nil, err
}

// NewSource creates a Source. graph may be nil, in which case every candidate
// is OnDisk. A nil disk reader uses the local filesystem.
func NewSource(graph Graph, disk FileReader) *Source {
	if disk == nil {
		disk = OSReader()
	}
	s := &Source{graph: graph, disk: disk}
	if graph != nil {
		s.root = filepath.Clean(graph.Root())
	}
	return s
}

// Locate classifies an absolute path.
func (s *Source) Locate(abs string) Location {
	abs = filepath.Clean(abs)
	if s.graph == nil {
		return OnDisk{Abs: abs}
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return OnDisk{Abs: abs}
	}
	return InGraph{Rel: filepath.ToSlash(rel), Abs: abs}
}

// Check implements Checker.
func (s *Source) Check(ctx context.Context, abs string) (Found, error) {
	return s.CheckLocation(ctx, s.Locate(abs))
}

// CheckLocation answers existence for an already classified candidate. A graph
// hit never touches the disk; a graph miss falls back to reading the file, as
// the graph only tracks files the build enumerated.
func (s *Source) CheckLocation(ctx context.Context, loc Location) (Found, error) {
	if err := ctx.Err(); err != nil {
		return Found{}, err
	}

	if l, ok := loc.(InGraph); ok {
		if contents, hit := s.graph.Lookup(ctx, l.Rel); hit {
			return Found{Exists: true, Path: l.Abs, Contents: contents, Location: l}, nil
		}
	}

	abs := loc.AbsPath()
	data, err := s.disk.ReadFile(abs)
	switch {
	case err == nil:
		return Found{Exists: true, Path: abs, Contents: string(data), Location: loc}, nil
	case isNotExist(err):
		return Found{Path: abs, Location: loc}, nil
	default:
		return Found{}, &IOError{Path: abs, Err: err}
	}
}

// isNotExist also treats "a path component is a file" and "the candidate is
// a directory" as absence: neither dir/file.scss/_x.scss nor a directory
// named foo.scss is an importable file.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.EISDIR)
}
