package domain

import (
	"math"
	"strconv"
	"time"
)

// ModTime is a file modification time in nanoseconds since the Unix epoch.
// Three values below every real time carry special meaning.
type ModTime int64

const (
	// TimeUnknown means the value has not been probed or computed yet.
	TimeUnknown ModTime = math.MinInt64 + iota
	// TimeAbsent means the file was probed and does not exist or could not be read.
	TimeAbsent
	// TimeAlwaysStale poisons a dependency computation: the file must be rebuilt.
	TimeAlwaysStale
)

// NewModTime converts a wall clock time to a ModTime.
func NewModTime(t time.Time) ModTime {
	return ModTime(t.UnixNano())
}

// Valid reports whether t is a real time rather than a marker.
func (t ModTime) Valid() bool {
	return t > TimeAlwaysStale
}

// Stale reports whether t forces a rebuild when seen as a dependency time.
func (t ModTime) Stale() bool {
	return t == TimeAbsent || t == TimeAlwaysStale
}

// Known reports whether t was probed or computed.
func (t ModTime) Known() bool {
	return t != TimeUnknown
}

// Time returns t as a wall clock time. Markers return the zero time.
func (t ModTime) Time() time.Time {
	if !t.Valid() {
		return time.Time{}
	}
	return time.Unix(0, int64(t))
}

func (t ModTime) String() string {
	switch t {
	case TimeUnknown:
		return "unknown"
	case TimeAbsent:
		return "absent"
	case TimeAlwaysStale:
		return "always-stale"
	default:
		return strconv.FormatInt(int64(t), 10)
	}
}
