// Package cache implements the timestamp and content cache of the build engine
// and the dependency freshness computation built on it.
package cache

import (
	"iter"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
)

// Cache maps canonical file keys to cache entries. It is not safe for
// concurrent use; compile passes must be serialized by the caller.
type Cache struct {
	fs       ports.FileSystem
	entries  map[string]*domain.CacheEntry
	visiting map[string]bool
}

// New creates an empty Cache reading through fsys.
func New(fsys ports.FileSystem) *Cache {
	return &Cache{
		fs:       fsys,
		entries:  make(map[string]*domain.CacheEntry),
		visiting: make(map[string]bool),
	}
}

// Key returns the canonical cache key of an absolute path.
func Key(fullName string) string {
	return strings.ToLower(fullName)
}

// Resolve returns name as an absolute, cleaned path, joined onto baseDir when relative.
func Resolve(name, baseDir string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	if baseDir == "" {
		if abs, err := filepath.Abs(name); err == nil {
			return abs
		}
	}
	return filepath.Join(baseDir, name)
}

// Entry returns the entry for name, creating it without probing the file.
func (c *Cache) Entry(name, baseDir string) *domain.CacheEntry {
	full := Resolve(name, baseDir)
	key := Key(full)
	e, ok := c.entries[key]
	if !ok {
		e = domain.NewCacheEntry(key, full)
		c.entries[key] = e
	}
	return e
}

// Lookup returns an existing entry without creating one.
func (c *Cache) Lookup(name, baseDir string) (*domain.CacheEntry, bool) {
	e, ok := c.entries[Key(Resolve(name, baseDir))]
	return e, ok
}

// Stat returns the entry for name with its modification time probed.
// A file is probed at most once until ClearFileTimeModifications.
func (c *Cache) Stat(name, baseDir string) *domain.CacheEntry {
	e := c.Entry(name, baseDir)
	c.probe(e)
	return e
}

func (c *Cache) probe(e *domain.CacheEntry) {
	if e.CurTime.Known() {
		return
	}
	info, err := c.fs.Stat(e.FullName)
	if err != nil || info.IsDir() {
		e.CurTime = domain.TimeAbsent
		return
	}
	e.CurTime = domain.NewModTime(info.ModTime())
}

// Exists reports whether name exists as a regular file.
func (c *Cache) Exists(name, baseDir string) bool {
	return c.Stat(name, baseDir).Exists()
}

// ReadContent returns the entry for name with Text current as of its modification time.
// Text is re-read only when the file changed since the last read. A missing or
// unreadable file leaves TextTime absent.
func (c *Cache) ReadContent(name, baseDir string) *domain.CacheEntry {
	e := c.Stat(name, baseDir)
	if !e.Exists() {
		e.TextTime = domain.TimeAbsent
		return e
	}
	if e.TextTime == e.CurTime {
		return e
	}
	text, err := c.fs.ReadFile(e.FullName)
	if err != nil {
		e.TextTime = domain.TimeAbsent
		return e
	}
	e.Text = text
	e.TextTime = e.CurTime
	return e
}

// Entries yields every entry in key order.
func (c *Cache) Entries() iter.Seq[*domain.CacheEntry] {
	return func(yield func(*domain.CacheEntry) bool) {
		for _, k := range slices.Sorted(maps.Keys(c.entries)) {
			if !yield(c.entries[k]) {
				return
			}
		}
	}
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// ClearFileTimeModifications forgets every probed modification time, so the
// next access re-stats the file. Cached text and parse results stay and are
// reused if the file turns out unchanged.
func (c *Cache) ClearFileTimeModifications() {
	for _, e := range c.entries {
		e.CurTime = domain.TimeUnknown
	}
}

// ForceRebuild invalidates analysis and output times of every entry, so the
// next pass re-analyzes and re-emits everything.
func (c *Cache) ForceRebuild() {
	for _, e := range c.entries {
		e.InfoTime = domain.TimeUnknown
		e.OutputTime = domain.TimeUnknown
	}
}

// ClearMaxTimeForDeps drops the memoized dependency times. Called at the start
// of every freshness scan.
func (c *Cache) ClearMaxTimeForDeps() {
	for _, e := range c.entries {
		e.MaxTimeForDeps = domain.TimeUnknown
	}
	clear(c.visiting)
}
