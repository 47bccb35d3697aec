package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	"git.home.luguber.info/inful/sitesmith/internal/content"
	"git.home.luguber.info/inful/sitesmith/internal/retry"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
}

func TestDecode_Shapes(t *testing.T) {
	arr, err := Decode([]byte(`[{"title":"Galaga","year":1981},{"title":"Tetris"}]`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, arr, 2)
	assert.Equal(t, "Galaga", arr[0].Title())
	assert.Equal(t, "1981", content.Format(arr[0]["year"]))

	wrapped, err := Decode([]byte("items:\n  - title: Pong\n    meta: {players: 2}\n"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, wrapped, 1)
	players, ok := content.Lookup(wrapped[0], "meta.players")
	require.True(t, ok)
	assert.Equal(t, 2, players)

	empty, err := Decode([]byte("null"), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecode_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":      `[{`,
		"scalar":      `42`,
		"no items":    `{"posts": []}`,
	} {
		_, err := Decode([]byte(doc), FormatJSON)
		assert.Error(t, err, name)
	}
}

func TestDecode_SkipsNonMappingElements(t *testing.T) {
	recs, err := Decode([]byte(`[{"title":"Galaga"},"a",7,{"title":"Pong"}]`), FormatJSON)
	require.Error(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Galaga", recs[0].Title())
	assert.Equal(t, "Pong", recs[1].Title())

	skipped, ok := Skipped(err)
	require.True(t, ok)
	require.Len(t, skipped, 2)
	assert.Equal(t, 1, skipped[0].Index)
	assert.Equal(t, 2, skipped[1].Index)
	assert.Contains(t, err.Error(), "2 items skipped")
	assert.False(t, retry.IsPermanent(err))

	_, ok = Skipped(errors.New("other"))
	assert.False(t, ok)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "games.yml")
	writeFile(t, path, "- title: Galaga\n  genres: [action, retro]\n")

	src := NewFileSource("games", path)
	assert.Equal(t, "games", src.Name())
	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []any{"action", "retro"}, items[0]["genres"])

	_, err = NewFileSource("missing", filepath.Join(dir, "nope.json")).Fetch(context.Background())
	assert.Error(t, err)
}

func TestMarkdownSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b-post.md"), "---\ntitle: Second\ntags: [go]\n---\nBody *two*.\n")
	writeFile(t, filepath.Join(dir, "a-post.md"), "# Heading Title\n\nFirst body.\n")
	writeFile(t, filepath.Join(dir, "nested", "my_notes.md"), "plain text\n")
	writeFile(t, filepath.Join(dir, "draft.md"), "---\ndraft: true\n---\nhidden\n")
	writeFile(t, filepath.Join(dir, ".hidden", "x.md"), "ignored\n")
	writeFile(t, filepath.Join(dir, "readme.txt"), "ignored\n")

	items, err := NewMarkdownSource("posts", dir, nil).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Heading Title", items[0].Title())
	assert.Equal(t, "a-post.md", items[0][FieldSource])
	assert.Equal(t, "First body.", items[0][FieldSummary])

	assert.Equal(t, "Second", items[1].Title())
	assert.Contains(t, items[1][FieldContent], "<em>two</em>")
	assert.Equal(t, []any{"go"}, items[1]["tags"])

	assert.Equal(t, "My Notes", items[2].Title())
	assert.Equal(t, "nested/my_notes.md", items[2][FieldSource])
}

func TestMarkdownSource_MissingDir(t *testing.T) {
	_, err := NewMarkdownSource("posts", filepath.Join(t.TempDir(), "none"), nil).Fetch(context.Background())
	assert.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/games.json":
			if r.Header.Get("Authorization") != "Bearer t0k" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"items":[{"title":"Galaga"}]}`))
		case "/games.yaml":
			w.Header().Set("Content-Type", "application/x-yaml")
			_, _ = w.Write([]byte("- title: Tetris\n"))
		case "/moved":
			http.Redirect(w, r, "http://elsewhere.invalid/games.json", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	items, err := NewHTTPSource("remote", srv.URL+"/games.json", "t0k", srv.Client()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Galaga", items[0].Title())

	items, err = NewHTTPSource("remote", srv.URL+"/games.yaml", "", nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Tetris", items[0].Title())

	_, err = NewHTTPSource("remote", srv.URL+"/games.json", "", nil).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")

	_, err = NewHTTPSource("remote", srv.URL+"/moved", "", NewHTTPClient(0)).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect to different host blocked")

	_, err = NewHTTPSource("remote", "ftp://example.com/x.json", "", nil).Fetch(context.Background())
	assert.Error(t, err)
}

func TestResponseFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, responseFormat("text/yaml; charset=utf-8", "/x"))
	assert.Equal(t, FormatJSON, responseFormat("application/json", "/x.yaml"))
	assert.Equal(t, FormatYAML, responseFormat("text/plain", "/x.yml"))
	assert.Equal(t, FormatJSON, responseFormat("", "/x"))
}

func TestNew_BuildsAdapters(t *testing.T) {
	cases := []struct {
		cfg  config.SourceConfig
		want string
	}{
		{config.SourceConfig{Name: "f", Type: config.SourceFile, Path: "x.json"}, "*source.FileSource"},
		{config.SourceConfig{Name: "m", Type: config.SourceMarkdown, Path: "content"}, "*source.MarkdownSource"},
		{config.SourceConfig{Name: "h", Type: config.SourceHTTP, URL: "https://example.com", Timeout: "5s"}, "*source.HTTPSource"},
		{config.SourceConfig{Name: "g", Type: config.SourceGit, URL: "https://example.com/r.git"}, "*source.GitSource"},
	}
	for _, c := range cases {
		src, err := New(c.cfg, Options{})
		require.NoError(t, err)
		assert.Equal(t, c.want, typeName(src))
		assert.Equal(t, c.cfg.Name, src.Name())
	}

	_, err := New(config.SourceConfig{Name: "bad", Type: "ftp"}, Options{})
	assert.Error(t, err)
	_, err = New(config.SourceConfig{Name: "bad", Type: config.SourceHTTP, Timeout: "soon"}, Options{})
	assert.Error(t, err)
}

func typeName(v any) string {
	switch v.(type) {
	case *FileSource:
		return "*source.FileSource"
	case *MarkdownSource:
		return "*source.MarkdownSource"
	case *HTTPSource:
		return "*source.HTTPSource"
	case *GitSource:
		return "*source.GitSource"
	}
	return "unknown"
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_WrapsRemoteSourcesWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/flaky.json":
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`[{"title":"Galaga"}]`))
		case "/partial.json":
			calls.Add(1)
			_, _ = w.Write([]byte(`[{"title":"Galaga"},"junk"]`))
		default:
			calls.Add(1)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	opts := Options{Logger: testLogger(), Retry: retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 3)}

	src, err := New(config.SourceConfig{Name: "flaky", Type: config.SourceHTTP, URL: srv.URL + "/flaky.json"}, opts)
	require.NoError(t, err)
	_, isRetrying := src.(*Retrying)
	assert.True(t, isRetrying)
	assert.Equal(t, "flaky", src.Name())

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(0)
	src, err = New(config.SourceConfig{Name: "gone", Type: config.SourceHTTP, URL: srv.URL + "/gone.json"}, opts)
	require.NoError(t, err)
	_, err = src.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, retry.IsPermanent(err))
	assert.Equal(t, int32(1), calls.Load())

	// A document with one bad element is kept, not retried.
	calls.Store(0)
	src, err = New(config.SourceConfig{Name: "partial", Type: config.SourceHTTP, URL: srv.URL + "/partial.json"}, opts)
	require.NoError(t, err)
	items, err = src.Fetch(context.Background())
	require.Error(t, err)
	skipped, ok := Skipped(err)
	require.True(t, ok)
	require.Len(t, skipped, 1)
	require.Len(t, items, 1)
	assert.Equal(t, "Galaga", items[0].Title())
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransientStatus(t *testing.T) {
	assert.True(t, transientStatus(http.StatusBadGateway))
	assert.True(t, transientStatus(http.StatusTooManyRequests))
	assert.True(t, transientStatus(http.StatusRequestTimeout))
	assert.False(t, transientStatus(http.StatusNotFound))
	assert.False(t, transientStatus(http.StatusUnauthorized))
}
