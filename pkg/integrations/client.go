package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/acknowledge/pkg/cache"
	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/httputil"
	"github.com/matzehuels/acknowledge/pkg/observability"
)

// Client provides shared HTTP functionality for the registry and provider
// API clients. It handles caching, retry logic, and common request headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	headers map[string]string
}

// NewClient creates a Client with the given cache and default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(backend cache.Cache, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   backend,
		headers: headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// Cache returns the client's cache backend.
func (c *Client) Cache() cache.Cache { return c.cache }

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache read is skipped but the result is still stored.
// The fetch function should populate v; on success, v is stored in the cache.
// Undecodable cache entries are treated as misses.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	keyType := keyType(key)
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, keyType)
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.cache.Set(ctx, key, data); err == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	_, err := c.GetWithHeaders(ctx, url, nil, v)
	return err
}

// GetWithHeaders performs an HTTP GET with additional headers merged with
// defaults, JSON-decodes the body into v, and returns the response headers
// (pagination links live there). Request-specific headers override client
// defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) (http.Header, error) {
	resp, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return resp.Header, nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, resp.Header, time.Now()); err != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// checkStatus maps an HTTP status to the error taxonomy. Rate limits are
// returned as [errors.RateLimitedError] wrapped in a retryable error that
// carries the server's wait hint.
func checkStatus(code int, h http.Header, now time.Time) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "credentials rejected (status 401)")
	case code == http.StatusTooManyRequests,
		code == http.StatusForbidden && h.Get("RateLimit-Remaining") == "0":
		wait := RetryAfterHint(h, now)
		return httputil.RetryAfter(&errors.RateLimitedError{RetryAfter: wait}, wait)
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// RetryAfterHint reads the server's requested wait from Retry-After
// (seconds) or RateLimit-Reset / X-RateLimit-Reset (unix seconds).
// Returns zero when no usable hint is present.
func RetryAfterHint(h http.Header, now time.Time) time.Duration {
	if s := strings.TrimSpace(h.Get("Retry-After")); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
		if t, err := http.ParseTime(s); err == nil {
			return positive(t.Sub(now))
		}
	}
	for _, name := range []string{"RateLimit-Reset", "X-RateLimit-Reset"} {
		if s := strings.TrimSpace(h.Get(name)); s != "" {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return positive(time.Unix(n, 0).Sub(now))
			}
		}
	}
	return 0
}

func positive(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// keyType returns the namespace portion of a cache key for metrics labels.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
