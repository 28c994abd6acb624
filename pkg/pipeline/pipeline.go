// Package pipeline runs the acknowledgement engine end to end.
//
// This package implements the complete resolve → locate → fetch →
// aggregate → filter run that both the CLI and the HTTP server use. By
// centralizing this logic, both entry points share defaults, validation
// and caching behaviour.
//
// # Stages
//
// A run moves through these states, each reported to the registered
// [observability.PipelineHooks]:
//
//  1. Resolving: parse Cargo.toml and select dependencies by breadth
//  2. Locating: map dependencies to GitHub/GitLab repositories
//  3. Fetching: retrieve contributor lists (the only concurrent stage)
//  4. Aggregating: merge contributors across repositories
//  5. Filtering: apply the threshold and project the output format
//
// Problems with individual dependencies or repositories become warnings on
// the [Result]. A run where every fetch failed still succeeds, with an
// empty model.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ManifestPath: ".",
//	    Format:       model.FormatDepAndNames,
//	    GitHubToken:  os.Getenv("GITHUB_TOKEN"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc, err := render.Markdown(result.Model)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/acknowledge/pkg/contrib"
	"github.com/matzehuels/acknowledge/pkg/deps"
	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/model"
	"github.com/matzehuels/acknowledge/pkg/source"
)

// Stage names reported to pipeline hooks.
const (
	StageResolving   = "resolving"
	StageLocating    = "locating"
	StageFetching    = "fetching"
	StageAggregating = "aggregating"
	StageFiltering   = "filtering"
)

// MaxWorkers bounds Options.Workers.
const MaxWorkers = 64

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options contains all configuration for one run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input: a manifest on disk, or manifest content (API requests)
	ManifestPath string `json:"-"`
	Manifest     string `json:"manifest,omitempty"`

	// Selection and output
	Breadth      deps.Breadth `json:"breadth,omitempty"`
	Format       model.Format `json:"format,omitempty"`
	Threshold    *int         `json:"threshold,omitempty"` // nil selects model.DefaultThreshold
	ExtraSources []string     `json:"extra_sources,omitempty"`
	Mention      bool         `json:"mention,omitempty"`

	// Fetching
	Workers     int           `json:"-"`
	PerProvider int           `json:"-"`
	MaxRetries  int           `json:"-"`
	BaseBackoff time.Duration `json:"-"` // zero selects contrib.DefaultBaseBackoff
	MaxBackoff  time.Duration `json:"-"` // zero selects contrib.DefaultMaxBackoff
	Refresh     bool          `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger      *log.Logger `json:"-"`
	GitHubToken string      `json:"-"`
	GitLabToken string      `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string `json:"run_id"`

	// Model is the filtered, projected contributor data.
	Model *model.Model `json:"model"`

	// Targets are the repositories the run tried to fetch.
	Targets []source.Target `json:"targets"`

	// Warnings lists dependencies and repositories that were skipped.
	Warnings []errors.Warning `json:"warnings"`

	// Stats contains counts and timing.
	Stats Stats `json:"stats"`
}

// Stats contains run statistics.
type Stats struct {
	Dependencies int           `json:"dependencies"`
	Repositories int           `json:"repositories"`
	CacheHits    int           `json:"cache_hits"`
	Fetched      int           `json:"fetched"`
	Failed       int           `json:"failed"`
	Contributors int           `json:"contributors"`
	Duration     time.Duration `json:"duration"`
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Manifest == "" {
		if err := errors.ValidateManifestPath(o.ManifestPath); err != nil {
			return err
		}
	}

	breadth, err := deps.ParseBreadth(string(o.Breadth))
	if err != nil {
		return err
	}
	o.Breadth = breadth

	format, err := model.ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = format

	if o.Threshold == nil {
		t := model.DefaultThreshold
		o.Threshold = &t
	} else if *o.Threshold < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "threshold must not be negative (got %d)", *o.Threshold)
	}

	for _, s := range o.ExtraSources {
		if err := errors.ValidateSourceURL(s); err != nil {
			return err
		}
	}

	if o.Workers <= 0 {
		o.Workers = contrib.DefaultWorkers
	}
	if o.Workers > MaxWorkers {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be at most %d (got %d)", MaxWorkers, o.Workers)
	}
	if o.PerProvider <= 0 {
		o.PerProvider = contrib.DefaultPerProvider
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = contrib.DefaultMaxRetries
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ThresholdValue returns the configured threshold, or the default before
// validation.
func (o *Options) ThresholdValue() int {
	if o.Threshold == nil {
		return model.DefaultThreshold
	}
	return *o.Threshold
}
