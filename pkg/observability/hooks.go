// Package observability provides hooks for progress reporting, metrics and
// logging.
//
// Consumers register hooks at startup to receive events about run stages,
// repository fetches, rate-limit refusals, cache operations and outgoing
// HTTP calls. Every hook defaults to a no-op, so libraries call them
// unconditionally. The CLI uses them for its stage spinner and for
// --verbose logging.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnStageStart(ctx, runID, "fetching")
//	// ... fetch contributors ...
//	observability.Pipeline().OnStageComplete(ctx, runID, "fetching", repos, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from an acknowledgement run.
//
// Stages are named after the run states: "resolving", "locating",
// "fetching", "aggregating", "filtering".
type PipelineHooks interface {
	OnStageStart(ctx context.Context, runID, stage string)
	OnStageComplete(ctx context.Context, runID, stage string, count int, duration time.Duration, err error)

	// OnRepoFetched fires once per repository, after the cache or the
	// provider produced its contributor list.
	OnRepoFetched(ctx context.Context, provider, repo string, records int, cached bool)

	// OnRateLimited fires each time a provider refuses a request for quota
	// reasons. wait is the provider's hint, zero when it gave none.
	OnRateLimited(ctx context.Context, provider, repo string, wait time.Duration)
}

// CacheHooks receives cache traffic. keyType is the key's namespace,
// "contributors" or "registry".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives outgoing provider and registry calls. OnError covers
// transport failures only; HTTP error statuses arrive through OnResponse.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks ignores every event. Embed it to implement a subset.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRepoFetched(context.Context, string, string, int, bool)     {}
func (NoopPipelineHooks) OnRateLimited(context.Context, string, string, time.Duration) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var registry = struct {
	sync.RWMutex
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}{
	pipeline: NoopPipelineHooks{},
	cache:    NoopCacheHooks{},
	http:     NoopHTTPHooks{},
}

// SetPipelineHooks replaces the pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h == nil {
		return
	}
	registry.Lock()
	registry.pipeline = h
	registry.Unlock()
}

// SetCacheHooks replaces the cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h == nil {
		return
	}
	registry.Lock()
	registry.cache = h
	registry.Unlock()
}

// SetHTTPHooks replaces the HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h == nil {
		return
	}
	registry.Lock()
	registry.http = h
	registry.Unlock()
}

func Pipeline() PipelineHooks {
	registry.RLock()
	defer registry.RUnlock()
	return registry.pipeline
}

func Cache() CacheHooks {
	registry.RLock()
	defer registry.RUnlock()
	return registry.cache
}

func HTTP() HTTPHooks {
	registry.RLock()
	defer registry.RUnlock()
	return registry.http
}

// Reset restores the no-op hooks.
func Reset() {
	registry.Lock()
	defer registry.Unlock()
	registry.pipeline = NoopPipelineHooks{}
	registry.cache = NoopCacheHooks{}
	registry.http = NoopHTTPHooks{}
}
