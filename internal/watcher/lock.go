package watcher

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	orgerrors "github.com/obby/download-organizer/internal/errors"
)

// instanceLock keeps two organizers from sorting the same root at once.
type instanceLock struct {
	path string
	lock *flock.Flock
}

func newInstanceLock(path string) *instanceLock {
	return &instanceLock{path: path, lock: flock.New(path)}
}

// acquire takes the lock without blocking.
func (l *instanceLock) acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return orgerrors.NewLockFailed(l.path, fmt.Errorf("ensure lock directory: %w", err))
	}

	ok, err := l.lock.TryLock()
	if err != nil {
		return orgerrors.NewLockFailed(l.path, err)
	}
	if !ok {
		return orgerrors.NewLocked(l.path)
	}
	return nil
}

func (l *instanceLock) release() error {
	return l.lock.Unlock()
}
