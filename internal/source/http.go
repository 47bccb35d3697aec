package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitesmith/internal/content"
	"git.home.luguber.info/inful/sitesmith/internal/retry"
)

const (
	maxResponseBytes   = 10 * 1024 * 1024
	defaultHTTPTimeout = 30 * time.Second
)

// NewHTTPClient returns a client that follows at most five redirects and
// never leaves the original host.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) == 0 {
				return nil
			}
			if req.URL.Host != via[0].URL.Host {
				return errors.New("redirect to different host blocked")
			}
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
}

// HTTPSource fetches a JSON or YAML document over HTTP.
type HTTPSource struct {
	name   string
	url    string
	token  string
	client *http.Client
}

// NewHTTPSource returns a source fetching rawURL. A non-empty token is sent
// as a bearer credential.
func NewHTTPSource(name, rawURL, token string, client *http.Client) *HTTPSource {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &HTTPSource{name: name, url: rawURL, token: token, client: client}
}

func (s *HTTPSource) Name() string { return s.name }

func (s *HTTPSource) Fetch(ctx context.Context) ([]content.Record, error) {
	u, err := validateURL(s.url)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("fetch %s: HTTP %d", s.url, resp.StatusCode)
		if !transientStatus(resp.StatusCode) {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) > maxResponseBytes {
		return nil, retry.Permanent(errors.New("response too large"))
	}
	recs, err := Decode(data, responseFormat(resp.Header.Get("Content-Type"), u.Path))
	if _, partial := Skipped(err); partial {
		return recs, err
	}
	if err != nil {
		return nil, retry.Permanent(err)
	}
	return recs, nil
}

// transientStatus reports statuses worth retrying: timeouts, throttling and
// server errors.
func transientStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500
}

func responseFormat(contentType, urlPath string) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "yaml"):
		return FormatYAML
	case strings.Contains(ct, "json"):
		return FormatJSON
	}
	return FormatFor(urlPath)
}

func validateURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s", parsed.Scheme)
	}
	return parsed, nil
}
