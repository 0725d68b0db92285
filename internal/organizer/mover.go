package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	orgerrors "github.com/obby/download-organizer/internal/errors"
)

// Result describes the outcome of a single Move call.
type Result struct {
	Source      string
	Destination string
	Category    string
	Moved       bool
}

// Mover relocates files from the watched root into category folders.
type Mover struct {
	root   string
	table  *Table
	out    io.Writer
	logger *slog.Logger

	// mu serialises the existence check, destination probe and rename.
	mu sync.Mutex
}

// NewMover creates a mover for root. Successful moves are announced on out.
func NewMover(root string, table *Table, out io.Writer, logger *slog.Logger) *Mover {
	if table == nil {
		table = DefaultTable()
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Mover{
		root:   filepath.Clean(root),
		table:  table,
		out:    out,
		logger: logger.With("component", "mover"),
	}
}

// Move sorts the file at path into its category folder. A path that is no
// longer a regular file directly inside the root is skipped without error.
func (m *Mover) Move(ctx context.Context, path string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src := filepath.Clean(path)
	if filepath.Dir(src) != m.root {
		return Result{}, nil
	}

	info, err := os.Lstat(src)
	if err != nil || !info.Mode().IsRegular() {
		return Result{}, nil
	}

	name := filepath.Base(src)
	category := m.table.Classify(name)
	folder := filepath.Join(m.root, category)

	if err := ensureFolder(folder); err != nil {
		return Result{}, err
	}

	dst, err := UniquePath(folder, name)
	if err != nil {
		return Result{}, err
	}

	if err := os.Rename(src, dst); err != nil {
		return Result{}, orgerrors.NewMove(src, dst, err)
	}

	fmt.Fprintf(m.out, "Moved: %s → %s\n", name, dst)
	m.logger.InfoContext(ctx, "file moved",
		"source", src,
		"destination", dst,
		"category", category,
	)

	return Result{Source: src, Destination: dst, Category: category, Moved: true}, nil
}

// ensureFolder creates folder one level deep, tolerating a concurrent creator.
func ensureFolder(folder string) error {
	err := os.Mkdir(folder, 0o755)
	if err == nil || errors.Is(err, fs.ErrExist) {
		info, statErr := os.Stat(folder)
		if statErr != nil {
			return orgerrors.NewCreateFolder(folder, statErr)
		}
		if !info.IsDir() {
			return orgerrors.NewCreateFolder(folder, fmt.Errorf("exists and is not a directory"))
		}
		return nil
	}
	return orgerrors.NewCreateFolder(folder, err)
}
