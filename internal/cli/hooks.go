package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/acknowledge/pkg/observability"
	"github.com/matzehuels/acknowledge/pkg/pipeline"
)

// logHooks reports pipeline progress at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnStageStart(_ context.Context, runID, stage string) {
	h.logger.Debug("stage started", "run", shortID(runID), "stage", stage)
}

func (h logHooks) OnStageComplete(_ context.Context, runID, stage string, count int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("stage failed", "run", shortID(runID), "stage", stage, "error", err)
		return
	}
	h.logger.Debug("stage complete", "run", shortID(runID), "stage", stage,
		"count", count, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnRepoFetched(_ context.Context, provider, repo string, records int, cached bool) {
	h.logger.Debug("contributors", "provider", provider, "repo", repo, "count", records, "cached", cached)
}

func (h logHooks) OnRateLimited(_ context.Context, provider, repo string, wait time.Duration) {
	h.logger.Debug("rate limited", "provider", provider, "repo", repo, "wait", wait)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h logHooks) OnRequest(context.Context, string, string, string) {}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http", "method", method, "host", host, "path", path,
		"status", status, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http failed", "method", method, "host", host, "path", path, "error", err)
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
	_ observability.HTTPHooks     = logHooks{}
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// stageMessages label pipeline stages for the spinner.
var stageMessages = map[string]string{
	pipeline.StageResolving:   "Reading manifest...",
	pipeline.StageLocating:    "Locating repositories...",
	pipeline.StageFetching:    "Fetching contributors...",
	pipeline.StageAggregating: "Merging contributors...",
	pipeline.StageFiltering:   "Applying threshold...",
}

// spinnerHooks shows the running stage on a spinner.
type spinnerHooks struct {
	observability.NoopPipelineHooks
	spinner *Spinner
}

func (h spinnerHooks) OnStageStart(_ context.Context, _ string, stage string) {
	if msg, ok := stageMessages[stage]; ok {
		h.spinner.Update(msg)
	}
}
