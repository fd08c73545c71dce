package fs

import (
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.trai.ch/bb/internal/core/ports"
)

var _ ports.FileSystem = (*MemoryFileSystem)(nil)

type memFile struct {
	data    []byte
	modTime time.Time
	mode    os.FileMode
}

// MemoryFileSystem is an in-memory ports.FileSystem with controllable modification times.
// Writes without an explicit time advance an internal clock by one second.
type MemoryFileSystem struct {
	mu     sync.Mutex
	files  map[string]*memFile
	clock  time.Time
	writes []string
	reads  map[string]int
}

// NewMemoryFileSystem creates an empty MemoryFileSystem whose clock starts at the given time.
func NewMemoryFileSystem(start time.Time) *MemoryFileSystem {
	return &MemoryFileSystem{
		files: make(map[string]*memFile),
		clock: start,
		reads: make(map[string]int),
	}
}

func clean(name string) string {
	return filepath.Clean(name)
}

// Add stores a file with the current clock time and advances the clock.
func (m *MemoryFileSystem) Add(name string, data string) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	m.files[clean(name)] = &memFile{data: []byte(data), modTime: m.clock, mode: 0o644}
	return m.clock
}

// AddBytes stores binary content with the current clock time and advances the clock.
func (m *MemoryFileSystem) AddBytes(name string, data []byte) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	m.files[clean(name)] = &memFile{data: data, modTime: m.clock, mode: 0o644}
	return m.clock
}

// Touch advances the clock and sets it as the modification time of an existing file.
func (m *MemoryFileSystem) Touch(name string) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	if f, ok := m.files[clean(name)]; ok {
		f.modTime = m.clock
	}
	return m.clock
}

// Remove deletes a file.
func (m *MemoryFileSystem) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, clean(name))
}

// Stat returns file information for the named file.
func (m *MemoryFileSystem) Stat(name string) (iofs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[clean(name)]
	if !ok {
		if m.isDir(clean(name)) {
			return memInfo{name: path.Base(filepath.ToSlash(name)), mode: iofs.ModeDir | 0o755, modTime: m.clock}, nil
		}
		return nil, &iofs.PathError{Op: "stat", Path: name, Err: iofs.ErrNotExist}
	}
	return memInfo{name: path.Base(filepath.ToSlash(name)), size: int64(len(f.data)), mode: f.mode, modTime: f.modTime}, nil
}

func (m *MemoryFileSystem) isDir(name string) bool {
	prefix := name + string(filepath.Separator)
	for k := range m.files {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// ReadFile reads the named file.
func (m *MemoryFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[clean(name)]
	if !ok {
		return nil, &iofs.PathError{Op: "open", Path: name, Err: iofs.ErrNotExist}
	}
	m.reads[clean(name)]++
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out, nil
}

// WriteFile stores data with the current clock time and advances the clock.
func (m *MemoryFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[clean(name)] = &memFile{data: buf, modTime: m.clock, mode: perm}
	m.writes = append(m.writes, clean(name))
	return nil
}

// Writes returns the names passed to WriteFile, in call order.
func (m *MemoryFileSystem) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

// Reads returns how often the named file was read.
func (m *MemoryFileSystem) Reads(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[clean(name)]
}

// Files returns the stored file names in sorted order.
func (m *MemoryFileSystem) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for k := range m.files {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type memInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() os.FileMode  { return i.mode }
func (i memInfo) ModTime() time.Time { return i.modTime }
func (i memInfo) IsDir() bool        { return i.mode.IsDir() }
func (i memInfo) Sys() any           { return nil }
