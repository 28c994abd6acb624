package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/acknowledge/pkg/aggregate"
	"github.com/matzehuels/acknowledge/pkg/cache"
	"github.com/matzehuels/acknowledge/pkg/contrib"
	"github.com/matzehuels/acknowledge/pkg/deps"
	"github.com/matzehuels/acknowledge/pkg/deps/rust"
	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/integrations/crates"
	"github.com/matzehuels/acknowledge/pkg/model"
	"github.com/matzehuels/acknowledge/pkg/observability"
	"github.com/matzehuels/acknowledge/pkg/source"
)

// Runner encapsulates run execution with caching.
// Both CLI and API use this to avoid duplicating the engine wiring.
//
// The Runner is stateless except for the cache, logger and clients - it
// doesn't store run results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Registry resolves crates without a declared repository. Nil uses a
	// crates.io client over Cache.
	Registry source.Registry

	// Providers overrides the hosting provider clients. Nil builds GitHub
	// and GitLab clients from the run's tokens.
	Providers []contrib.Provider
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Registry: crates.NewClient(c),
	}
}

// Execute runs the complete resolve → locate → fetch → aggregate → filter
// pipeline.
//
// Configuration errors, unreadable manifests, rejected tokens and
// cancellation are returned as errors. Everything else degrades into
// warnings on the result.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := opts.Logger.With("run", runID[:8])
	warnings := &errors.Warnings{}
	result := &Result{RunID: runID}

	// Stage 1: Resolve
	var descriptors []deps.Descriptor
	err := r.stage(ctx, runID, StageResolving, func() (int, error) {
		var err error
		descriptors, err = resolve(opts)
		return len(descriptors), err
	})
	if err != nil {
		return nil, err
	}
	result.Stats.Dependencies = len(descriptors)
	logger.Info("resolved dependencies", "count", len(descriptors), "breadth", opts.Breadth)

	// Stage 2: Locate
	var targets []source.Target
	err = r.stage(ctx, runID, StageLocating, func() (int, error) {
		locator := source.NewLocator(r.Registry, logger, warnings)
		locator.Refresh = opts.Refresh
		var err error
		targets, err = locator.Locate(ctx, descriptors, opts.ExtraSources)
		return len(targets), err
	})
	if err != nil {
		return nil, fmt.Errorf("locate: %w", err)
	}
	result.Targets = targets
	result.Stats.Repositories = len(targets)
	logger.Info("located repositories", "count", len(targets))

	// Stage 3: Fetch
	var outcome *contrib.Outcome
	err = r.stage(ctx, runID, StageFetching, func() (int, error) {
		fetcher := contrib.NewFetcher(r.Cache, r.Keyer, logger, warnings, contrib.Options{
			Workers:     opts.Workers,
			PerProvider: opts.PerProvider,
			MaxRetries:  opts.MaxRetries,
			BaseBackoff: opts.BaseBackoff,
			MaxBackoff:  opts.MaxBackoff,
			Refresh:     opts.Refresh,
		}, r.providers(opts)...)
		var err error
		outcome, err = fetcher.Fetch(ctx, targets)
		if err != nil {
			return 0, err
		}
		return len(outcome.Records), nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Stats.CacheHits = outcome.CacheHits
	result.Stats.Fetched = outcome.Fetched
	result.Stats.Failed = outcome.Failed
	logger.Info("fetched contributors",
		"repositories", len(outcome.Records),
		"cached", outcome.CacheHits,
		"failed", outcome.Failed)

	// Stage 4: Aggregate
	var merged *aggregate.Result
	_ = r.stage(ctx, runID, StageAggregating, func() (int, error) {
		merged = aggregate.Aggregate(targets, outcome.Records)
		return len(merged.Contributors), nil
	})
	result.Stats.Contributors = len(merged.Contributors)

	// Stage 5: Filter
	_ = r.stage(ctx, runID, StageFiltering, func() (int, error) {
		result.Model = model.Build(merged, model.Options{
			Format:    opts.Format,
			Threshold: opts.ThresholdValue(),
			Mention:   opts.Mention,
		})
		return len(merged.Contributors) - result.Model.Others, nil
	})

	result.Warnings = warnings.Items()
	result.Stats.Duration = time.Since(start)
	logger.Info("run complete",
		"contributors", result.Stats.Contributors,
		"others", result.Model.Others,
		"warnings", len(result.Warnings),
		"duration", result.Stats.Duration)
	return result, nil
}

// stage runs fn between the stage hooks. fn returns the number of items
// the stage produced.
func (r *Runner) stage(ctx context.Context, runID, name string, fn func() (int, error)) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, runID, name)
	start := time.Now()
	n, err := fn()
	hooks.OnStageComplete(ctx, runID, name, n, time.Since(start), err)
	return err
}

func resolve(opts Options) ([]deps.Descriptor, error) {
	parser := rust.CargoToml{}
	var (
		m   *deps.Manifest
		err error
	)
	if opts.Manifest != "" {
		m, err = parser.ParseBytes([]byte(opts.Manifest))
	} else {
		m, err = parser.Parse(opts.ManifestPath)
	}
	if err != nil {
		return nil, err
	}
	return deps.Resolve(m.Entries, opts.Breadth), nil
}

func (r *Runner) providers(opts Options) []contrib.Provider {
	if r.Providers != nil {
		return r.Providers
	}
	return []contrib.Provider{
		contrib.NewGitHub(opts.GitHubToken),
		contrib.NewGitLab(opts.GitLabToken),
	}
}

// applyLogger sets the runner's logger on opts if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
