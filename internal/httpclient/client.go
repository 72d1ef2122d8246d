package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/everstacklabs/blocksmith/internal/cache"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "blocksmith/1.0 (+https://github.com/everstacklabs/blocksmith)"
)

// Client is an HTTP client with caching, rate limiting, and conditional fetch.
// Each request is a single attempt bounded by the client timeout; there are
// no retries.
type Client struct {
	http      *http.Client
	cache     *cache.FileCache
	limiter   *rate.Limiter
	noCache   bool
	userAgent string
}

// Option configures the Client.
type Option func(*Client)

// WithCache enables file-based caching.
func WithCache(c *cache.FileCache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithRateLimit sets requests per second.
func WithRateLimit(rps float64) Option {
	return func(cl *Client) {
		cl.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithNoCache disables caching.
func WithNoCache() Option {
	return func(cl *Client) { cl.noCache = true }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http.Timeout = d
		}
	}
}

// New creates a new HTTP client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response wraps an HTTP response body and metadata.
type Response struct {
	Body       []byte
	StatusCode int
	FromCache  bool
}

// Get performs an HTTP GET with optional caching and conditional fetch.
// Cache entries are keyed by URL and credentials so that responses fetched
// with one API key are never served for another.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	useCache := c.cache != nil && !c.noCache
	key := cache.Key(url, headers["Authorization"])

	var staleEntry *cache.Entry
	if useCache {
		entry, fresh := c.cache.Get(key)
		if fresh {
			return &Response{Body: entry.Body, StatusCode: entry.StatusCode, FromCache: true}, nil
		}
		staleEntry = entry
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if staleEntry != nil {
		if staleEntry.ETag != "" {
			req.Header.Set("If-None-Match", staleEntry.ETag)
		}
		if staleEntry.LastMod != "" {
			req.Header.Set("If-Modified-Since", staleEntry.LastMod)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Not modified: refresh the cache TTL.
	if resp.StatusCode == http.StatusNotModified && staleEntry != nil {
		_ = c.cache.Set(key, staleEntry)
		return &Response{Body: staleEntry.Body, StatusCode: staleEntry.StatusCode, FromCache: true}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP GET %s: status %d: %s", url, resp.StatusCode, truncate(body, 512))
	}

	if useCache {
		_ = c.cache.Set(key, &cache.Entry{
			Body:       body,
			ETag:       resp.Header.Get("ETag"),
			LastMod:    resp.Header.Get("Last-Modified"),
			StatusCode: resp.StatusCode,
		})
	}

	return &Response{Body: body, StatusCode: resp.StatusCode}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
