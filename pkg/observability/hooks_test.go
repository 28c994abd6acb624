package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stageLog struct {
	NoopPipelineHooks
	mu     sync.Mutex
	stages []string
}

func (s *stageLog) OnStageStart(_ context.Context, _, stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, stage)
}

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, "run-1", "fetching")
	p.OnStageComplete(ctx, "run-1", "fetching", 12, time.Second, nil)
	p.OnRepoFetched(ctx, "github", "serde-rs/serde", 100, true)
	p.OnRateLimited(ctx, "github", "serde-rs/serde", time.Minute)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "contributors")
	c.OnCacheMiss(ctx, "registry")
	c.OnCacheSet(ctx, "contributors", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "crates.io", "/api/v1/crates/serde")
	h.OnResponse(ctx, "GET", "crates.io", "/api/v1/crates/serde", 200, time.Second)
	h.OnError(ctx, "GET", "crates.io", "/api/v1/crates/serde", nil)
}

func TestRegistry(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	require.IsType(t, NoopPipelineHooks{}, Pipeline())

	log := &stageLog{}
	SetPipelineHooks(log)
	SetPipelineHooks(nil)
	Pipeline().OnStageStart(context.Background(), "run", "resolving")
	assert.Equal(t, []string{"resolving"}, log.stages, "nil should not replace registered hooks")

	Reset()
	assert.IsType(t, NoopPipelineHooks{}, Pipeline())
	assert.IsType(t, NoopCacheHooks{}, Cache())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())
}

func TestTally(t *testing.T) {
	t.Cleanup(Reset)
	Reset()
	ctx := context.Background()

	log := &stageLog{}
	SetPipelineHooks(log)

	tally := NewTally()
	tally.Install()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Pipeline().OnRepoFetched(ctx, "github", "o/r", 3, i%2 == 0)
			Cache().OnCacheHit(ctx, "contributors")
		}(i)
	}
	wg.Wait()

	Pipeline().OnStageStart(ctx, "run", "fetching")
	Pipeline().OnRateLimited(ctx, "gitlab", "g/p", time.Second)
	Cache().OnCacheMiss(ctx, "registry")
	Cache().OnCacheSet(ctx, "registry", 10)
	HTTP().OnRequest(ctx, "GET", "crates.io", "/api/v1/crates/serde")
	HTTP().OnError(ctx, "GET", "crates.io", "/api/v1/crates/serde", errors.New("reset"))

	want := TallySnapshot{
		Repositories:       10,
		CachedRepositories: 5,
		RateLimited:        1,
		CacheHits:          10,
		CacheMisses:        1,
		CacheWrites:        1,
		Requests:           1,
		HTTPErrors:         1,
	}
	assert.Equal(t, want, tally.Snapshot())
	assert.Equal(t, []string{"fetching"}, log.stages, "previous hooks should be chained")
}
