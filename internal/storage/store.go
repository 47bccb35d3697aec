// Package storage persists rendered pages.
//
// Writers receive output paths relative to the site root, always with
// forward slashes, and are responsible for creating parent directories.
// Implementations must be safe for concurrent use: pages are written from
// a worker pool.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// Writer persists one output file.
type Writer interface {
	Write(ctx context.Context, relPath string, data []byte) error
}

// ErrInvalidPath reports an output path that is empty, absolute or escapes the root.
var ErrInvalidPath = errors.New("invalid output path")

// CleanPath validates relPath and returns its canonical slash-separated form.
func CleanPath(relPath string) (string, error) {
	if relPath == "" {
		return "", ErrInvalidPath
	}
	p := strings.ReplaceAll(relPath, `\`, "/")
	if strings.HasPrefix(p, "/") {
		return "", ErrInvalidPath
	}
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", ErrInvalidPath
	}
	return p, nil
}
