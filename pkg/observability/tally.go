package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Tally counts events across all three hook kinds and forwards each event
// to the hooks that were registered before [Tally.Install].
type Tally struct {
	next struct {
		pipeline PipelineHooks
		cache    CacheHooks
		http     HTTPHooks
	}

	repos, cachedRepos, rateLimited atomic.Int64
	hits, misses, writes            atomic.Int64
	requests, httpErrors            atomic.Int64
}

// TallySnapshot is a point-in-time copy of a [Tally].
type TallySnapshot struct {
	Repositories       int64 `json:"repositories"`
	CachedRepositories int64 `json:"cached_repositories"`
	RateLimited        int64 `json:"rate_limited"`
	CacheHits          int64 `json:"cache_hits"`
	CacheMisses        int64 `json:"cache_misses"`
	CacheWrites        int64 `json:"cache_writes"`
	Requests           int64 `json:"requests"`
	HTTPErrors         int64 `json:"http_errors"`
}

// NewTally returns a Tally that forwards to no-op hooks until installed.
func NewTally() *Tally {
	t := &Tally{}
	t.next.pipeline = NoopPipelineHooks{}
	t.next.cache = NoopCacheHooks{}
	t.next.http = NoopHTTPHooks{}
	return t
}

// Install registers t for every hook kind, chaining to the current hooks.
func (t *Tally) Install() {
	registry.Lock()
	defer registry.Unlock()
	t.next.pipeline, t.next.cache, t.next.http = registry.pipeline, registry.cache, registry.http
	registry.pipeline, registry.cache, registry.http = t, t, t
}

// Snapshot reads the counters.
func (t *Tally) Snapshot() TallySnapshot {
	return TallySnapshot{
		Repositories:       t.repos.Load(),
		CachedRepositories: t.cachedRepos.Load(),
		RateLimited:        t.rateLimited.Load(),
		CacheHits:          t.hits.Load(),
		CacheMisses:        t.misses.Load(),
		CacheWrites:        t.writes.Load(),
		Requests:           t.requests.Load(),
		HTTPErrors:         t.httpErrors.Load(),
	}
}

func (t *Tally) OnStageStart(ctx context.Context, runID, stage string) {
	t.next.pipeline.OnStageStart(ctx, runID, stage)
}

func (t *Tally) OnStageComplete(ctx context.Context, runID, stage string, count int, d time.Duration, err error) {
	t.next.pipeline.OnStageComplete(ctx, runID, stage, count, d, err)
}

func (t *Tally) OnRepoFetched(ctx context.Context, provider, repo string, records int, cached bool) {
	t.repos.Add(1)
	if cached {
		t.cachedRepos.Add(1)
	}
	t.next.pipeline.OnRepoFetched(ctx, provider, repo, records, cached)
}

func (t *Tally) OnRateLimited(ctx context.Context, provider, repo string, wait time.Duration) {
	t.rateLimited.Add(1)
	t.next.pipeline.OnRateLimited(ctx, provider, repo, wait)
}

func (t *Tally) OnCacheHit(ctx context.Context, keyType string) {
	t.hits.Add(1)
	t.next.cache.OnCacheHit(ctx, keyType)
}

func (t *Tally) OnCacheMiss(ctx context.Context, keyType string) {
	t.misses.Add(1)
	t.next.cache.OnCacheMiss(ctx, keyType)
}

func (t *Tally) OnCacheSet(ctx context.Context, keyType string, size int) {
	t.writes.Add(1)
	t.next.cache.OnCacheSet(ctx, keyType, size)
}

func (t *Tally) OnRequest(ctx context.Context, method, host, path string) {
	t.requests.Add(1)
	t.next.http.OnRequest(ctx, method, host, path)
}

func (t *Tally) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	t.next.http.OnResponse(ctx, method, host, path, status, d)
}

func (t *Tally) OnError(ctx context.Context, method, host, path string, err error) {
	t.httpErrors.Add(1)
	t.next.http.OnError(ctx, method, host, path, err)
}

var (
	_ PipelineHooks = (*Tally)(nil)
	_ CacheHooks    = (*Tally)(nil)
	_ HTTPHooks     = (*Tally)(nil)
)
