package contrib

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/acknowledge/pkg/cache"
	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/httputil"
	"github.com/matzehuels/acknowledge/pkg/observability"
	"github.com/matzehuels/acknowledge/pkg/source"
)

// Default fetch settings.
const (
	DefaultWorkers     = 8
	DefaultPerProvider = 4
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = time.Second
	DefaultMaxBackoff  = time.Minute
)

// Options controls fetch concurrency and retry behaviour.
// Zero values are replaced by the defaults above.
type Options struct {
	Workers     int           // Repositories fetched concurrently
	PerProvider int           // Requests in flight per provider
	MaxRetries  int           // Retries per page after the first attempt
	BaseBackoff time.Duration // First fallback delay when no reset hint is given
	MaxBackoff  time.Duration // Upper bound on any single wait, hints included
	Refresh     bool          // Skip cache reads (results are still cached)
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.PerProvider <= 0 {
		o.PerProvider = DefaultPerProvider
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = DefaultBaseBackoff
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = DefaultMaxBackoff
	}
	return o
}

// Outcome holds the contributor lists of every repository that was
// retrieved, from the cache or the network.
type Outcome struct {
	Records   map[source.Reference][]Record
	CacheHits int
	Fetched   int
	Failed    int
}

// Fetcher retrieves contributor lists for repository targets.
//
// A Fetcher is safe for concurrent use; each Fetch call has its own
// worker pool.
type Fetcher struct {
	providers map[source.Provider]Provider
	cache     cache.Cache
	keyer     cache.Keyer
	logger    *log.Logger
	warnings  *errors.Warnings
	opts      Options
}

// NewFetcher creates a fetcher over the given providers. A nil cache
// disables caching, a nil keyer uses the default keys, a nil logger
// discards output and a nil warnings log is replaced by a private one.
func NewFetcher(c cache.Cache, keyer cache.Keyer, logger *log.Logger, warnings *errors.Warnings, opts Options, providers ...Provider) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if warnings == nil {
		warnings = &errors.Warnings{}
	}
	f := &Fetcher{
		providers: make(map[source.Provider]Provider, len(providers)),
		cache:     c,
		keyer:     keyer,
		logger:    logger,
		warnings:  warnings,
		opts:      opts.withDefaults(),
	}
	for _, p := range providers {
		f.providers[p.Name()] = p
	}
	return f
}

// Fetch retrieves the contributors of every target.
//
// Repositories that fail are recorded as warnings and left out of the
// outcome. Fetch returns an error only for cancellation and for fatal
// provider errors such as a rejected token; in-flight work is then
// abandoned and nothing further is cached.
func (f *Fetcher) Fetch(ctx context.Context, targets []source.Target) (*Outcome, error) {
	out := &Outcome{Records: make(map[source.Reference][]Record, len(targets))}
	sems := make(map[source.Provider]*semaphore.Weighted, len(f.providers))
	for name := range f.providers {
		sems[name] = semaphore.NewWeighted(int64(f.opts.PerProvider))
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Workers)

	for _, t := range targets {
		ref := t.Ref
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, cached, err := f.fetchRepo(gctx, ref, sems[ref.Provider])
			if err != nil {
				return f.handleError(gctx, ref, err, &mu, out)
			}

			observability.Pipeline().OnRepoFetched(gctx, string(ref.Provider), ref.Path(), len(records), cached)
			mu.Lock()
			defer mu.Unlock()
			out.Records[ref] = records
			if cached {
				out.CacheHits++
			} else {
				out.Fetched++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return out, nil
}

// handleError turns a repository failure into a warning, or returns it when
// it must abort the run.
func (f *Fetcher) handleError(ctx context.Context, ref source.Reference, err error, mu *sync.Mutex, out *Outcome) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.IsFatal(err) {
		f.logger.Error("fetch aborted", "repo", ref, "err", err)
		return err
	}

	if errors.Is(err, errors.ErrCodeRateLimited) {
		f.warnings.Add(errors.ErrCodeRateLimited, ref.String(),
			"still rate limited after %d retries; repository skipped", f.opts.MaxRetries)
	} else {
		f.warnings.AddErr(errors.ErrCodeFetchFailed, ref.String(), err)
	}
	f.logger.Warn("skipping repository", "repo", ref, "err", err)

	mu.Lock()
	out.Failed++
	mu.Unlock()
	return nil
}

// fetchRepo returns the full contributor list of ref, from the cache when
// possible. cached reports whether the cache served it.
func (f *Fetcher) fetchRepo(ctx context.Context, ref source.Reference, sem *semaphore.Weighted) (records []Record, cached bool, err error) {
	p, ok := f.providers[ref.Provider]
	if !ok {
		return nil, false, errors.New(errors.ErrCodeUnsupportedHost, "no client configured for %s", ref.Provider)
	}
	key := f.keyer.ContributorsKey(string(ref.Provider), ref.Owner, ref.Repo)

	if !f.opts.Refresh {
		if data, hit, err := f.cache.Get(ctx, key); err == nil && hit {
			if err := json.Unmarshal(data, &records); err == nil {
				observability.Cache().OnCacheHit(ctx, "contributors")
				f.logger.Debug("cache hit", "repo", ref, "count", len(records))
				return records, true, nil
			}
			f.logger.Debug("discarding unreadable cache entry", "key", key)
		}
		observability.Cache().OnCacheMiss(ctx, "contributors")
	}

	records, err = f.fetchAll(ctx, p, ref, sem)
	if err != nil {
		return nil, false, err
	}

	data, err := json.Marshal(records)
	if err == nil {
		if err := f.cache.Set(ctx, key, data); err != nil {
			f.logger.Debug("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "contributors", len(data))
		}
	}
	f.logger.Info("fetched contributors", "repo", ref, "count", len(records))
	return records, false, nil
}

// fetchAll walks every page of ref, retrying each page under the retry
// policy. Bot accounts are dropped.
func (f *Fetcher) fetchAll(ctx context.Context, p Provider, ref source.Reference, sem *semaphore.Weighted) ([]Record, error) {
	policy := httputil.Policy{
		Attempts: f.opts.MaxRetries + 1,
		Base:     f.opts.BaseBackoff,
		Max:      f.opts.MaxBackoff,
	}

	all := make([]Record, 0)
	for page := 1; ; {
		var (
			records []Record
			next    int
		)
		err := policy.Do(ctx, func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			r, n, err := p.FetchPage(ctx, ref, page)
			sem.Release(1)
			if err != nil {
				if wait, limited := p.RateLimited(err); limited {
					f.logger.Debug("rate limited", "repo", ref, "page", page, "wait", wait)
					observability.Pipeline().OnRateLimited(ctx, string(ref.Provider), ref.Path(), wait)
					return httputil.RetryAfter(err, wait)
				}
				return err
			}
			records, next = r, n
			return nil
		})
		if err != nil {
			return nil, err
		}

		for _, r := range records {
			if !r.IsBot() {
				all = append(all, r)
			}
		}
		if next <= page {
			return all, nil
		}
		page = next
	}
}
