// Package httpfetch is the shared HTTP plumbing every provider builds on:
// a gzip-enabled client with a per-provider timeout, a memory+disk cache in
// front of every fetch, and a single-flight discipline so two concurrent
// callers for the same key never issue two upstream requests (spec §4.4).
package httpfetch

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"docsmcp/internal/cache"
	"docsmcp/internal/docsmcperr"
)

// UserAgent identifies this service to upstream providers.
const UserAgent = "docsmcp/1.0 (+https://github.com/docsmcp)"

// Fetcher performs cached, coalesced HTTP GETs for one provider. It is not
// tied to one payload type: FetchJSON decodes into whatever type the caller
// names, and FetchText returns the raw body.
type Fetcher struct {
	client  *http.Client
	mem     *cache.Memory[[]byte]
	group   singleflight.Group
	timeout time.Duration
}

// Config controls one provider's Fetcher.
type Config struct {
	Timeout time.Duration // 15s for Apple, 30s for others per spec §5
	TTL     time.Duration // memory-cache TTL for raw response bytes
}

// New constructs a Fetcher with a shared gzip-decoding client.
func New(cfg Config) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &gzipTransport{inner: http.DefaultTransport},
		},
		mem:     cache.NewMemory[[]byte](cfg.TTL),
		timeout: timeout,
	}
}

// gzipTransport forces Accept-Encoding: gzip and transparently decodes gzip
// responses so every fetcher gets compression without pulling in a
// third-party HTTP client library just for that.
type gzipTransport struct{ inner http.RoundTripper }

func (t *gzipTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", UserAgent)
	resp, err := t.inner.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return resp, nil // leave body as-is; caller's decode will fail informatively
		}
		resp.Body = &gzipReadCloser{gz: gz, orig: resp.Body}
		resp.Header.Del("Content-Encoding")
	}
	return resp, nil
}

type gzipReadCloser struct {
	gz   *gzip.Reader
	orig io.ReadCloser
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }
func (g *gzipReadCloser) Close() error {
	_ = g.gz.Close()
	return g.orig.Close()
}

// fetchRaw performs the GET, caching the raw bytes by URL.
func (f *Fetcher) fetchRaw(ctx context.Context, url string) ([]byte, error) {
	if b, ok := f.mem.Get(url); ok {
		return b, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, docsmcperr.New(docsmcperr.UpstreamTransport, url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, docsmcperr.New(docsmcperr.UpstreamTransport, url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, docsmcperr.New(docsmcperr.UpstreamTransport, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, docsmcperr.HTTPStatus(url, resp.StatusCode)
	}
	f.mem.Insert(url, body)
	return body, nil
}

// FetchJSON performs a cached GET and decodes the JSON body into v.
func FetchJSON[V any](ctx context.Context, f *Fetcher, url string) (V, error) {
	var out V
	raw, err := f.fetchRaw(ctx, url)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, docsmcperr.New(docsmcperr.ParseFailure, url, err)
	}
	return out, nil
}

// FetchText performs a cached GET and returns the body as a string, for
// providers (Cocoon) whose payload is raw markdown rather than JSON.
func FetchText(ctx context.Context, f *Fetcher, url string) (string, error) {
	raw, err := f.fetchRaw(ctx, url)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SingleFlight wraps fn so that concurrent callers sharing key observe at
// most one execution; the rest block and receive the same result (spec
// §4.4/§5 single-flight discipline). fn is expected to re-check the disk
// cache itself before doing network I/O, per spec §4.4's "after acquiring
// the lock, re-check the disk cache".
func (f *Fetcher) SingleFlight(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	v, err, _ := f.group.Do(key, func() (any, error) {
		return fn(ctx)
	})
	return v, err
}

// Client exposes the underlying http.Client for providers that need to
// build a colly collector sharing the same transport/timeout (see
// internal/httpfetch/htmlscrape.go).
func (f *Fetcher) Client() *http.Client { return f.client }

func (f *Fetcher) Timeout() time.Duration { return f.timeout }
