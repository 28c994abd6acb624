package crates

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/acknowledge/pkg/buildinfo"
	"github.com/matzehuels/acknowledge/pkg/cache"
	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/integrations"
)

// RegistryName is the registry label used in cache keys.
const RegistryName = "crates"

// Lookup is the cached outcome of a repository lookup. Found is false for
// crates that do not exist or declare no repository; those results are
// cached too so a warm run makes no registry calls.
type Lookup struct {
	Name       string `json:"name"`
	Repository string `json:"repository,omitempty"`
	Found      bool   `json:"found"`
}

// Client provides access to the crates.io registry API.
//
// All methods are safe for concurrent use by multiple goroutines. Requests
// are paced to one per second, as the crates.io crawler policy asks.
type Client struct {
	*integrations.Client
	baseURL string
	keyer   cache.Keyer
	limiter *rate.Limiter
}

// NewClient creates a crates.io client with the given cache backend.
// The client includes the User-Agent header crates.io requires.
func NewClient(backend cache.Cache) *Client {
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}
	return &Client{
		Client:  integrations.NewClient(backend, headers),
		baseURL: "https://crates.io/api/v1",
		keyer:   cache.NewDefaultKeyer(),
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// SetBaseURL points the client at a registry mirror or test server.
// raw is the API root, e.g. "https://crates.io/api/v1".
func (c *Client) SetBaseURL(raw string) { c.baseURL = strings.TrimRight(raw, "/") }

// SetRate changes request pacing. rate.Inf disables it.
func (c *Client) SetRate(limit rate.Limit) { c.limiter.SetLimit(limit) }

// Name returns the registry label.
func (c *Client) Name() string { return RegistryName }

// RepositoryURL returns the repository URL the crate declares on crates.io.
//
// A crate that does not exist, or declares no repository, yields a Lookup
// with Found=false and a nil error. If refresh is true the cache read is
// skipped. Network failures are returned and never cached.
func (c *Client) RepositoryURL(ctx context.Context, name string, refresh bool) (*Lookup, error) {
	if err := errors.ValidateCrateName(name); err != nil {
		return nil, err
	}

	var out Lookup
	err := c.Cached(ctx, c.keyer.RegistryKey(RegistryName, name), refresh, &out, func() error {
		return c.fetch(ctx, name, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) fetch(ctx context.Context, name string, out *Lookup) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var data crateResponse
	err := c.Get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, name), &data)
	if stderrors.Is(err, integrations.ErrNotFound) {
		*out = Lookup{Name: name}
		return nil
	}
	if err != nil {
		return fmt.Errorf("crate %s: %w", name, err)
	}

	repo := data.Crate.Repository
	if repo == "" {
		repo = data.Crate.HomePage
	}
	*out = Lookup{Name: name, Repository: repo, Found: repo != ""}
	return nil
}

type crateResponse struct {
	Crate struct {
		Name       string `json:"name"`
		Repository string `json:"repository"`
		HomePage   string `json:"homepage"`
	} `json:"crate"`
}
