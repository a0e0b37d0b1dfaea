// Package source provides document fetchers for the recipe assets: one that
// talks HTTP to wherever the asset tree is hosted, one that reads a local
// directory.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.DocumentFetcher = (*HTTPFetcher)(nil)

// maxDocumentBytes caps a single response body.
const maxDocumentBytes = 8 << 20

// HTTPOption configures the HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) { f.http.Timeout = d }
}

// WithHTTPClient replaces the underlying client (tests use httptest's).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.http = c }
}

// HTTPFetcher GETs documents relative to a base URL.
type HTTPFetcher struct {
	base *url.URL
	http *http.Client
	log  *logger.Logger
}

// NewHTTPFetcher creates a fetcher rooted at baseURL. A trailing slash is
// added when missing so relative paths resolve under it.
func NewHTTPFetcher(baseURL string, log *logger.Logger, opts ...HTTPOption) (*HTTPFetcher, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("source: parse base url: %w", err)
	}
	f := &HTTPFetcher{
		base: u,
		http: &http.Client{},
		log:  log,
	}
	for _, o := range opts {
		o(f)
	}
	return f, nil
}

// Fetch GETs path relative to the base URL and returns the body. Any status
// other than 200 is an ErrFetch; 404 additionally matches ErrNotFound.
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: bad path %q: %v", domain.ErrFetch, path, err)
	}
	target := f.base.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	f.log.Debug("source: GET %s", target)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", domain.ErrFetch, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrFetch, target, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: GET %s: %s: %w", domain.ErrFetch, target, resp.Status, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: GET %s: %s", domain.ErrFetch, target, resp.Status)
	}

	f.log.Debug("source: %s -> %d bytes", target, len(body))
	return body, nil
}
