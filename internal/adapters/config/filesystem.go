package config

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// FileSystem abstracts filesystem operations for testability.
type FileSystem interface {
	// Stat returns file info for the given path.
	Stat(path string) (fs.FileInfo, error)
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Glob returns the files below root matching a doublestar pattern, as
	// slash-separated paths relative to root.
	Glob(root, pattern string) ([]string, error)
}

// OSFS implements FileSystem using the standard library.
type OSFS struct{}

// NewOSFS creates a new OSFS instance.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// Stat returns file info for the given path.
func (*OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads the entire file at path.
func (*OSFS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- path is discovered by walking up from the working directory
	return os.ReadFile(path)
}

// Glob expands pattern below root.
func (*OSFS) Glob(root, pattern string) ([]string, error) {
	return doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
}

// MapFSAdapter serves a fs.FS as if it were mounted at Root.
type MapFSAdapter struct {
	FS   fs.FS
	Root string
}

// NewMapFSAdapter creates a MapFSAdapter.
func NewMapFSAdapter(root string, fsys fs.FS) *MapFSAdapter {
	return &MapFSAdapter{FS: fsys, Root: root}
}

// Stat returns file info for the given path.
func (m *MapFSAdapter) Stat(path string) (fs.FileInfo, error) {
	rel, err := m.rel(path)
	if err != nil {
		return nil, err
	}
	return fs.Stat(m.FS, rel)
}

// ReadFile reads the entire file at path.
func (m *MapFSAdapter) ReadFile(path string) ([]byte, error) {
	rel, err := m.rel(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(m.FS, rel)
}

// Glob expands pattern below root.
func (m *MapFSAdapter) Glob(root, pattern string) ([]string, error) {
	rel, err := m.rel(root)
	if err != nil {
		return nil, err
	}
	sub, err := fs.Sub(m.FS, rel)
	if err != nil {
		return nil, err
	}
	return doublestar.Glob(sub, pattern, doublestar.WithFilesOnly())
}

// rel maps an absolute path below Root to a fs.FS name.
func (m *MapFSAdapter) rel(path string) (string, error) {
	name, err := filepathRel(m.Root, path)
	if err != nil || !fs.ValidPath(name) {
		return "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return name, nil
}

func filepathRel(root, name string) (string, error) {
	if !filepath.IsAbs(name) {
		return filepath.ToSlash(name), nil
	}
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
