package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	derrors "git.home.luguber.info/inful/sitesmith/internal/errors"
	"git.home.luguber.info/inful/sitesmith/internal/site"
	"git.home.luguber.info/inful/sitesmith/internal/storage"
)

func quietGlobal() *Global {
	return &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestInitThenBuild(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	root := &CLI{Config: "sitesmith.yaml"}

	require.NoError(t, (&InitCmd{}).Run(quietGlobal(), root))
	for _, p := range []string{"sitesmith.yaml", "theme/base.html", "theme/static/style.css", "data/games.yaml", "content/posts/hello.md"} {
		assert.FileExists(t, filepath.Join(dir, p))
	}

	require.NoError(t, (&BuildCmd{}).Run(quietGlobal(), root))
	for _, p := range []string{
		"index.html",
		"galaga/index.html",
		"tetris/index.html",
		"hello-arcade/index.html",
		"genres/index.html",
		"genres/retro/index.html",
		"tags/welcome/index.html",
		"feed.xml",
		"genres/retro.xml",
		"style.css",
	} {
		assert.FileExists(t, filepath.Join(dir, "public", p))
	}

	page, err := os.ReadFile(filepath.Join(dir, "public", "galaga", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h1>Galaga</h1>")
	assert.Contains(t, string(page), `<a href="/genres/retro/">retro</a>`)
	assert.Contains(t, string(page), "Released 1981")

	post, err := os.ReadFile(filepath.Join(dir, "public", "hello-arcade", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(post), "The first post of the site.")
}

func TestInit_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	root := &CLI{Config: "sitesmith.yaml"}
	require.NoError(t, (&InitCmd{}).Run(quietGlobal(), root))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "theme", "base.html"), []byte("custom"), 0o600))

	require.Error(t, (&InitCmd{}).Run(quietGlobal(), root))
	require.NoError(t, (&InitCmd{Force: true, ConfigOnly: true}).Run(quietGlobal(), root))
	data, err := os.ReadFile(filepath.Join(dir, "theme", "base.html"))
	require.NoError(t, err)
	assert.Equal(t, "custom", string(data))

	require.NoError(t, Scaffold(dir, false, quietGlobal().Logger))
	data, err = os.ReadFile(filepath.Join(dir, "theme", "base.html"))
	require.NoError(t, err)
	assert.Equal(t, "custom", string(data))
}

func TestBuild_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	root := &CLI{Config: "sitesmith.yaml"}
	require.NoError(t, (&InitCmd{}).Run(quietGlobal(), root))

	require.NoError(t, (&BuildCmd{DryRun: true}).Run(quietGlobal(), root))
	assert.NoDirExists(t, filepath.Join(dir, "public"))
}

func TestBuild_MissingConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	err := (&BuildCmd{}).Run(quietGlobal(), &CLI{Config: "nope.yaml"})
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
}

func TestGenerate_MissingTheme(t *testing.T) {
	cfg, err := config.Parse([]byte("theme:\n  dir: /does/not/exist\nsources:\n  - {name: a, type: file, path: a.json}\n"))
	require.NoError(t, err)
	_, err = Generate(context.Background(), cfg, GenerateOptions{Logger: quietGlobal().Logger, Writer: storage.NewMemoryWriter()})
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryTheme))
}

func TestReportError(t *testing.T) {
	assert.NoError(t, ReportError(&site.Report{}))
	err := ReportError(&site.Report{Failures: []site.PageFailure{{Path: "a.html"}}})
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryBuild))
	assert.False(t, derrors.IsFatal(err))
}

func TestSlugCmd(t *testing.T) {
	var buf bytes.Buffer
	cmd := &SlugCmd{Labels: []string{"Pac-Man", "Pac Man", "Ångström"}, out: &buf}
	require.NoError(t, cmd.Run(nil, nil))
	assert.Equal(t, "pac-man\tPac-Man\npac-man-2\tPac Man\nangstrom\tÅngström\n", buf.String())
}

func TestWatchRoots(t *testing.T) {
	cfg := &config.Config{
		Theme: config.ThemeConfig{Dir: "theme"},
		Sources: []config.SourceConfig{
			{Name: "games", Type: config.SourceFile, Path: "data/games.yaml"},
			{Name: "posts", Type: config.SourceMarkdown, Path: "content/posts"},
			{Name: "remote", Type: config.SourceHTTP, URL: "https://example.com/x.json"},
		},
	}
	assert.Equal(t, []string{"theme", "data", "content/posts"}, watchRoots(cfg))
}
