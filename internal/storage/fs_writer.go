package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSWriter writes pages below a root directory.
type FSWriter struct {
	root string
}

// NewFSWriter returns a writer rooted at dir. The directory is created on demand.
func NewFSWriter(dir string) (*FSWriter, error) {
	if dir == "" {
		return nil, errors.New("output directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	return &FSWriter{root: abs}, nil
}

// Root returns the absolute output directory.
func (w *FSWriter) Root() string { return w.root }

// Write stores data at relPath below the root, creating parent directories.
// Existing files are replaced.
func (w *FSWriter) Write(ctx context.Context, relPath string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := w.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	// #nosec G306 -- site output is meant to be world-readable.
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

// Clean removes everything below the root and recreates it empty.
func (w *FSWriter) Clean() error {
	if w.root == string(filepath.Separator) || filepath.Dir(w.root) == w.root {
		return fmt.Errorf("refusing to clean filesystem root %s", w.root)
	}
	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("clean output directory: %w", err)
	}
	return os.MkdirAll(w.root, 0o750)
}

func (w *FSWriter) resolve(relPath string) (string, error) {
	clean, err := CleanPath(relPath)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, relPath)
	}
	full := filepath.Join(w.root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(w.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes output directory", ErrInvalidPath, relPath)
	}
	return full, nil
}
