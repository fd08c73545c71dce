// Package domain contains the core value types of the incremental build cache.
package domain

// CacheEntry is the per-file record of the build cache.
// Each derived artifact carries the time it was computed from; an artifact is
// current only while that time equals the time of the artifact it derives from.
type CacheEntry struct {
	// Key is the canonical lookup key, the lower-cased absolute path.
	Key string
	// FullName is the absolute path with its original casing.
	FullName string

	CurTime ModTime

	Text     []byte
	TextTime ModTime

	Source    *SourceFile
	ParseTime ModTime

	Info     *SourceInfo
	InfoTime ModTime

	MaxTimeForDeps ModTime
	OutputTime     ModTime
}

// NewCacheEntry returns an entry with every time unknown.
func NewCacheEntry(key, fullName string) *CacheEntry {
	return &CacheEntry{
		Key:            key,
		FullName:       fullName,
		CurTime:        TimeUnknown,
		TextTime:       TimeUnknown,
		ParseTime:      TimeUnknown,
		InfoTime:       TimeUnknown,
		MaxTimeForDeps: TimeUnknown,
		OutputTime:     TimeUnknown,
	}
}

// Exists reports whether the last probe found the file.
func (e *CacheEntry) Exists() bool {
	return e.CurTime.Valid()
}

// TextCurrent reports whether Text matches the file on disk as of CurTime.
func (e *CacheEntry) TextCurrent() bool {
	return e.CurTime.Valid() && e.TextTime == e.CurTime
}

// SourceCurrent reports whether Source was parsed from the current Text.
func (e *CacheEntry) SourceCurrent() bool {
	return e.Source != nil && e.TextCurrent() && e.ParseTime == e.TextTime
}

// InfoCurrent reports whether Info was computed from the file as of CurTime.
func (e *CacheEntry) InfoCurrent() bool {
	return e.Info != nil && e.CurTime.Valid() && e.InfoTime == e.CurTime
}
