package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	orgerrors "github.com/obby/download-organizer/internal/errors"
	"github.com/obby/download-organizer/internal/organizer"
	"github.com/obby/download-organizer/internal/patterns"
)

// State is the lifecycle state of a FileWatcher.
type State int32

const (
	StateStopped State = iota
	StateWatching
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateWatching:
		return "watching"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Mover sorts a single file. *organizer.Mover satisfies it.
type Mover interface {
	Move(ctx context.Context, path string) (organizer.Result, error)
}

// Options configures a FileWatcher.
type Options struct {
	Root         string
	Debounce     time.Duration
	Workers      int
	SweepOnStart bool
	// LockPath enables the single-instance lock when non-empty.
	LockPath string
}

// Summary counts what a watch session did.
type Summary struct {
	Moved   int64
	Skipped int64
	Failed  int64
}

// FileWatcher subscribes to one directory and hands settled files to a Mover.
type FileWatcher struct {
	opts    Options
	mover   Mover
	matcher *patterns.Matcher
	logger  *slog.Logger

	state   atomic.Int32
	running atomic.Bool

	moved   atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

// NewFileWatcher creates a new file watcher. matcher may be nil to process
// every file.
func NewFileWatcher(opts Options, mover Mover, matcher *patterns.Matcher, logger *slog.Logger) (*FileWatcher, error) {
	if mover == nil {
		return nil, errors.New("file watcher requires a mover")
	}
	if !filepath.IsAbs(opts.Root) {
		return nil, orgerrors.NewInvalidConfig(fmt.Sprintf("root must be absolute: %q", opts.Root))
	}
	if opts.Debounce <= 0 {
		return nil, orgerrors.NewInvalidConfig("debounce must be positive")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts.Root = filepath.Clean(opts.Root)

	return &FileWatcher{
		opts:    opts,
		mover:   mover,
		matcher: matcher,
		logger:  logger.With("component", "watcher"),
	}, nil
}

// State reports whether the watcher is currently subscribed.
func (fw *FileWatcher) State() State {
	return State(fw.state.Load())
}

// Summary returns the counters accumulated so far.
func (fw *FileWatcher) Summary() Summary {
	return Summary{
		Moved:   fw.moved.Load(),
		Skipped: fw.skipped.Load(),
		Failed:  fw.failed.Load(),
	}
}

// Run watches the root until ctx is cancelled. On cancellation files still
// waiting on their debounce timer are moved immediately, queued and running
// moves finish, and Run returns nil.
func (fw *FileWatcher) Run(ctx context.Context) error {
	if !fw.running.CompareAndSwap(false, true) {
		return errors.New("file watcher already running")
	}
	defer fw.running.Store(false)

	info, err := os.Stat(fw.opts.Root)
	if err != nil {
		return orgerrors.NewWatch(fw.opts.Root, err)
	}
	if !info.IsDir() {
		return orgerrors.NewWatch(fw.opts.Root, errors.New("not a directory"))
	}

	if fw.opts.LockPath != "" {
		lock := newInstanceLock(fw.opts.LockPath)
		if err := lock.acquire(); err != nil {
			return err
		}
		defer func() {
			if err := lock.release(); err != nil {
				fw.logger.Warn("failed to release instance lock", "lock", fw.opts.LockPath, "error", err)
			}
		}()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return orgerrors.NewWatch(fw.opts.Root, err)
	}
	if err := w.Add(fw.opts.Root); err != nil {
		w.Close()
		return orgerrors.NewWatch(fw.opts.Root, err)
	}

	debouncer := NewDebouncer(fw.opts.Debounce)
	pool := NewWorkerPool(fw.opts.Workers, fw.logger)
	pool.Start(ctx)

	fw.state.Store(int32(StateWatching))
	fw.logger.Info("watching directory",
		"root", fw.opts.Root,
		"debounce", fw.opts.Debounce,
		"workers", fw.opts.Workers,
		"ignore_patterns", fw.ignoreCount(),
	)

	if fw.opts.SweepOnStart {
		n := fw.sweep(ctx, pool)
		fw.logger.Info("initial sweep", "queued", n)
	}

	fw.processEvents(ctx, w, debouncer, pool)

	if err := w.Close(); err != nil {
		fw.logger.Warn("closing fsnotify watcher", "error", err)
	}
	if n := debouncer.Pending(); n > 0 {
		fw.logger.Info("flushing pending files", "count", n)
	}
	debouncer.Flush()
	pool.Stop()
	fw.state.Store(int32(StateStopped))

	s := fw.Summary()
	fw.logger.Info("stopped watching",
		"root", fw.opts.Root,
		"moved", s.Moved,
		"skipped", s.Skipped,
		"failed", s.Failed,
	)
	return nil
}

// processEvents processes events from fsnotify until ctx is done or the
// watcher's channels close.
func (fw *FileWatcher) processEvents(ctx context.Context, w *fsnotify.Watcher, debouncer *Debouncer, pool *WorkerPool) {
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			fw.handleEvent(event, debouncer, pool)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watcher error", "error", err)
		case <-ctx.Done():
			return
		}
	}
}

// handleEvent filters a single fsnotify event and schedules the move.
func (fw *FileWatcher) handleEvent(event fsnotify.Event, debouncer *Debouncer, pool *WorkerPool) {
	kind, ok := eventType(event.Op)
	if !ok {
		return
	}

	isDir := false
	if info, err := os.Stat(event.Name); err == nil {
		isDir = info.IsDir()
	}
	ev := newFileEvent(event.Name, isDir, kind)
	if ev.IsDir {
		return
	}

	if fw.matcher != nil && fw.matcher.IsIgnored(ev.Path) {
		fw.logger.Debug("ignoring file", "path", ev.Path)
		return
	}

	debouncer.Process(ev.Path, func() {
		ev.Timestamp = time.Now()
		fw.submit(pool, ev)
	})
}

// sweep queues every file already sitting in the root. It stops early when
// ctx is cancelled.
func (fw *FileWatcher) sweep(ctx context.Context, pool *WorkerPool) int {
	entries, err := os.ReadDir(fw.opts.Root)
	if err != nil {
		fw.logger.Warn("initial sweep failed", "root", fw.opts.Root, "error", err)
		return 0
	}
	queued := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			fw.logger.Debug("initial sweep interrupted", "queued", queued)
			return queued
		}
		ev := newFileEvent(filepath.Join(fw.opts.Root, entry.Name()), entry.IsDir(), EventExisting)
		if ev.IsDir || !entry.Type().IsRegular() {
			continue
		}
		if fw.matcher != nil && fw.matcher.IsIgnored(ev.Path) {
			continue
		}
		fw.submit(pool, ev)
		queued++
	}
	return queued
}

func (fw *FileWatcher) ignoreCount() int {
	if fw.matcher == nil {
		return 0
	}
	return fw.matcher.Len()
}

func (fw *FileWatcher) submit(pool *WorkerPool, ev FileEvent) {
	if !pool.Submit(fw.moveTask(ev)) {
		fw.logger.Debug("dropping event after shutdown", "event_id", ev.ID, "path", ev.Path)
	}
}

// moveTask wraps a Mover call for the worker pool.
func (fw *FileWatcher) moveTask(ev FileEvent) Task {
	return TaskFunc(func(ctx context.Context) error {
		res, err := fw.mover.Move(ctx, ev.Path)
		if err != nil {
			fw.failed.Add(1)
			return fmt.Errorf("event %s (%s %s): %w", ev.ID, ev.EventType, ev.Path, err)
		}
		if !res.Moved {
			fw.skipped.Add(1)
			fw.logger.Debug("nothing to move", "event_id", ev.ID, "path", ev.Path)
			return nil
		}
		fw.moved.Add(1)
		return nil
	})
}
