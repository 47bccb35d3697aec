package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/sitesmith/internal/content"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/retry"
)

// GitSource shallow-clones a repository and reads content from a path
// inside it: a Markdown directory, or a JSON/YAML file.
type GitSource struct {
	name    string
	url     string
	branch  string
	token   string
	subPath string
	// depth limits history; zero clones everything.
	depth int
	// workDir holds the clone; a temporary directory is used when empty.
	workDir string
	logger  *slog.Logger
}

func (s *GitSource) Name() string { return s.name }

func (s *GitSource) Fetch(ctx context.Context) ([]content.Record, error) {
	dir, cleanup, err := s.checkoutDir()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	opts := &git.CloneOptions{
		URL:          s.url,
		Depth:        s.depth,
		SingleBranch: true,
	}
	if s.branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.branch)
	}
	if s.token != "" {
		opts.Auth = &http.BasicAuth{Username: "token", Password: s.token}
	}

	s.logger.Debug("Cloning repository", logfields.Source(s.name), logfields.URL(s.url), logfields.Path(dir))
	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository %s: %w", s.url, err)
	}
	if ref, err := repo.Head(); err == nil {
		s.logger.Info("Repository cloned", logfields.Source(s.name), logfields.URL(s.url), slog.String("commit", ref.Hash().String()[:8]))
	}

	target, err := s.target(dir)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("repository path %q: %w", s.subPath, err))
	}
	if info.IsDir() {
		return NewMarkdownSource(s.name, target, s.logger).Fetch(ctx)
	}
	return NewFileSource(s.name, target).Fetch(ctx)
}

func (s *GitSource) checkoutDir() (string, func(), error) {
	if s.workDir == "" {
		dir, err := os.MkdirTemp("", "sitesmith-git-")
		if err != nil {
			return "", nil, fmt.Errorf("create clone directory: %w", err)
		}
		return dir, func() { _ = os.RemoveAll(dir) }, nil
	}
	dir := filepath.Join(s.workDir, s.name)
	if err := os.RemoveAll(dir); err != nil {
		return "", nil, fmt.Errorf("failed to remove existing directory: %w", err)
	}
	if err := os.MkdirAll(s.workDir, 0o750); err != nil {
		return "", nil, fmt.Errorf("create cache directory: %w", err)
	}
	return dir, func() {}, nil
}

// target resolves the configured sub-path inside the clone.
func (s *GitSource) target(dir string) (string, error) {
	sub := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(s.subPath, "/")))
	if sub == ".." || strings.HasPrefix(sub, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("repository path %q escapes the clone", s.subPath)
	}
	return filepath.Join(dir, sub), nil
}
