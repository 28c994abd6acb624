package integrations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/acknowledge/pkg/cache"
	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/httputil"
)

func TestNewClient(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(c, headers)

	require.NotNil(t, client)
	assert.NotNil(t, client.http)
	assert.Same(t, c, client.Cache())
	assert.Equal(t, "Bearer token", client.headers["Authorization"])
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, nil)
	require.NotNil(t, client.Cache(), "nil cache should fall back to a null cache")
	assert.Nil(t, client.headers)
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(cache.NewNullCache(), nil)
	client.SetHTTPClient(server.Client())

	var resp response
	require.NoError(t, client.Get(context.Background(), server.URL, &resp))
	assert.Equal(t, "hello", resp.Message)
}

func TestClientGetWithHeaders(t *testing.T) {
	var custom, override string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		custom = r.Header.Get("X-Custom")
		override = r.Header.Get("X-Override")
		w.Header().Set("X-Next-Page", "3")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(cache.NewNullCache(), map[string]string{"X-Override": "default"})
	client.SetHTTPClient(server.Client())

	var resp map[string]string
	h, err := client.GetWithHeaders(context.Background(), server.URL,
		map[string]string{"X-Custom": "custom", "X-Override": "overridden"}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "custom", custom)
	assert.Equal(t, "overridden", override)
	assert.Equal(t, "3", h.Get("X-Next-Page"))
}

func TestClientGetStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header map[string]string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "404",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotFound)
			},
		},
		{
			name:   "500 retryable",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				assert.True(t, httputil.IsRetryable(err), "error should be retryable, got %T", err)
				assert.ErrorIs(t, err, ErrNetwork)
			},
		},
		{
			name:   "401 unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.Equal(t, errors.ErrCodeUnauthorized, errors.GetCode(err))
				assert.False(t, httputil.IsRetryable(err), "401 must not be retryable")
			},
		},
		{
			name:   "429 with Retry-After",
			status: http.StatusTooManyRequests,
			header: map[string]string{"Retry-After": "7"},
			check: func(t *testing.T, err error) {
				var rl *errors.RateLimitedError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, 7*time.Second, rl.RetryAfter)

				var re *httputil.RetryableError
				require.ErrorAs(t, err, &re, "rate limit should carry a retry hint")
				assert.Equal(t, 7*time.Second, re.After)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(cache.NewNullCache(), nil)
			client.SetHTTPClient(server.Client())

			var resp map[string]string
			err := client.Get(context.Background(), server.URL, &resp)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClientCached(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	client := NewClient(c, nil)

	type testData struct {
		Value string `json:"value"`
	}

	fetchCount := 0
	fetch := func(v *testData) func() error {
		return func() error {
			fetchCount++
			*v = testData{Value: "fetched"}
			return nil
		}
	}

	var first testData
	require.NoError(t, client.Cached(ctx, "registry:test:key", false, &first, fetch(&first)))

	var second testData
	require.NoError(t, client.Cached(ctx, "registry:test:key", false, &second, fetch(&second)))
	assert.Equal(t, 1, fetchCount)
	assert.Equal(t, "fetched", second.Value)
}

func TestClientCachedRefresh(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	client := NewClient(c, nil)

	fetchCount := 0
	var value string
	fetch := func() error {
		fetchCount++
		value = "fetched"
		return nil
	}

	for range 2 {
		require.NoError(t, client.Cached(ctx, "test-key", true, &value, fetch))
	}
	assert.Equal(t, 2, fetchCount)
	_, ok, _ := c.Get(ctx, "test-key")
	assert.True(t, ok, "refresh should still write the cache")
}

func TestClientCachedCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("{broken")))

	client := NewClient(c, nil)
	fetched := false
	var v map[string]string
	err = client.Cached(ctx, "k", false, &v, func() error {
		fetched = true
		v = map[string]string{"a": "b"}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, fetched, "corrupt entry should be treated as a miss")
}

func TestClientCachedFetchError(t *testing.T) {
	client := NewClient(cache.NewNullCache(), nil)

	fetchCount := 0
	var value string
	err := client.Cached(context.Background(), "k", false, &value, func() error {
		fetchCount++
		return ErrNotFound
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, fetchCount, "non-retryable error should not be retried")
}

func TestRetryAfterHint(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name   string
		header map[string]string
		want   time.Duration
	}{
		{"none", nil, 0},
		{"retry-after seconds", map[string]string{"Retry-After": "30"}, 30 * time.Second},
		{"ratelimit-reset", map[string]string{"RateLimit-Reset": "1700000045"}, 45 * time.Second},
		{"x-ratelimit-reset", map[string]string{"X-RateLimit-Reset": "1700000010"}, 10 * time.Second},
		{"reset in past", map[string]string{"RateLimit-Reset": "1699999000"}, 0},
		{"garbage", map[string]string{"Retry-After": "soon"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.header {
				h.Set(k, v)
			}
			assert.Equal(t, tt.want, RetryAfterHint(h, now))
		})
	}
}

func TestNormalizeRepoURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"https url", "https://github.com/user/repo", "https://github.com/user/repo"},
		{"with .git suffix", "https://github.com/user/repo.git", "https://github.com/user/repo"},
		{"git@ to https", "git@github.com:user/repo", "https://github.com/user/repo"},
		{"git:// to https", "git://github.com/user/repo", "https://github.com/user/repo"},
		{"git+ prefix", "git+https://github.com/user/repo", "https://github.com/user/repo"},
		{"with spaces", "  https://github.com/user/repo  ", "https://github.com/user/repo"},
		{"trailing slash", "https://github.com/user/repo/", "https://github.com/user/repo"},
		{"gitlab ssh", "git@gitlab.com:group/repo.git", "https://gitlab.com/group/repo"},
		{"combined", "git+git@github.com:user/repo.git", "https://github.com/user/repo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRepoURL(tt.input))
		})
	}
}

func TestPathEscape(t *testing.T) {
	assert.Equal(t, "group%2Fsub%2Fproject", PathEscape("group/sub/project"))
}
