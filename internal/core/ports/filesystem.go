// Package ports defines the interfaces between the build engine and its adapters.
package ports

import (
	"io/fs"
	"os"
)

// FileSystem abstracts file access so the cache can run against disk or memory.
// Missing files are reported with errors matching fs.ErrNotExist.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// Stat returns file information for the named file.
	Stat(name string) (fs.FileInfo, error)
	// ReadFile reads the named file.
	ReadFile(name string) ([]byte, error)
	// WriteFile writes data to the named file, creating parent directories.
	WriteFile(name string, data []byte, perm os.FileMode) error
}
