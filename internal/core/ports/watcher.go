package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of change reported for a path.
type WatchOp uint8

const (
	// OpCreate reports a new file or directory.
	OpCreate WatchOp = iota
	// OpWrite reports modified file contents.
	OpWrite
	// OpRemove reports a deleted path.
	OpRemove
	// OpRename reports a path that was moved away.
	OpRename
)

func (o WatchOp) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	default:
		return "rename"
	}
}

// WatchEvent is a change below the watched project root.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher reports source changes that should trigger a new compile pass.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start watches root and its subdirectories until ctx is done or Stop is called.
	Start(ctx context.Context, root string) error
	// Stop releases the underlying watches and ends the event stream.
	Stop() error
	// Events yields changes in arrival order.
	Events() iter.Seq[WatchEvent]
}
