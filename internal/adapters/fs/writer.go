package fs

import (
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/zerr"
)

// OutputWriter writes build outputs below a directory. Content identical to the
// previous write of the same name is not written again.
type OutputWriter struct {
	fs      ports.FileSystem
	dir     string
	mu      sync.Mutex
	digests map[string]uint64
}

// NewOutputWriter creates an OutputWriter rooted at dir.
func NewOutputWriter(fsys ports.FileSystem, dir string) *OutputWriter {
	return &OutputWriter{
		fs:      fsys,
		dir:     dir,
		digests: make(map[string]uint64),
	}
}

// Dir returns the output directory.
func (w *OutputWriter) Dir() string {
	return w.dir
}

// WriteFile writes data to name, a forward-slash path relative to the output directory.
func (w *OutputWriter) WriteFile(name string, data []byte) error {
	digest := xxhash.Sum64(data)

	w.mu.Lock()
	prev, seen := w.digests[name]
	w.mu.Unlock()
	if seen && prev == digest {
		return nil
	}

	target := filepath.Join(w.dir, filepath.FromSlash(name))
	if err := w.fs.WriteFile(target, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrWriteFailed.Error()), "path", target)
	}

	w.mu.Lock()
	w.digests[name] = digest
	w.mu.Unlock()
	return nil
}
