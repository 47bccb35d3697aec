package source

import (
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/sitesmith/internal/content"
)

// FileSource reads a JSON or YAML document from disk.
type FileSource struct {
	name string
	path string
}

// NewFileSource returns a source reading path; the format follows the extension.
func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

func (s *FileSource) Name() string { return s.name }

func (s *FileSource) Fetch(ctx context.Context) ([]content.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return Decode(data, FormatFor(s.path))
}
