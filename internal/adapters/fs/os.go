// Package fs provides file system adapters: the host file system, an in-memory
// file system for tests, and a digest-checking output writer.
package fs

import (
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
)

var _ ports.FileSystem = (*OSFileSystem)(nil)

// OSFileSystem implements ports.FileSystem on the host file system.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat returns file information for the named file.
func (OSFileSystem) Stat(name string) (iofs.FileInfo, error) {
	return os.Stat(name)
}

// ReadFile reads the named file.
func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec // Paths come from the project graph
}

// WriteFile writes data to the named file, creating parent directories.
func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(name), domain.DirPerm); err != nil {
		return err
	}
	return os.WriteFile(name, data, perm)
}
