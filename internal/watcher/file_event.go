package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// FileEvent represents a file system event
type FileEvent struct {
	ID        string
	Path      string
	IsDir     bool
	EventType string
	Timestamp time.Time
}

// EventType constants
const (
	EventCreated  = "created"
	EventModified = "modified"
	EventExisting = "existing"
)

// newFileEvent builds a FileEvent for path with a fresh correlation ID.
func newFileEvent(path string, isDir bool, eventType string) FileEvent {
	return FileEvent{
		ID:        uuid.NewString(),
		Path:      path,
		IsDir:     isDir,
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// eventType maps an fsnotify op to the event types the organizer acts on.
// Chmod counts as a modification: browsers often finish a download by
// touching the file's times or mode. Remove and rename return false.
func eventType(op fsnotify.Op) (string, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return EventCreated, true
	case op.Has(fsnotify.Write), op.Has(fsnotify.Chmod):
		return EventModified, true
	default:
		return "", false
	}
}
