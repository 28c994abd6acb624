package source

import (
	"context"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/acknowledge/pkg/deps"
	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/integrations/crates"
)

// Registry looks up the repository a package declares.
// [crates.Client] is the production implementation.
type Registry interface {
	Name() string
	RepositoryURL(ctx context.Context, name string, refresh bool) (*crates.Lookup, error)
}

// Target is one repository to fetch, with the dependencies it serves.
type Target struct {
	Ref          Reference `json:"ref"`
	Dependencies []string  `json:"dependencies"`
}

// Locator resolves dependency descriptors to repository references.
type Locator struct {
	Registry Registry
	Logger   *log.Logger
	Warnings *errors.Warnings
	Refresh  bool // Skip cached registry lookups
}

// NewLocator creates a locator. A nil logger discards output and a nil
// warnings log is replaced by a private one.
func NewLocator(registry Registry, logger *log.Logger, warnings *errors.Warnings) *Locator {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if warnings == nil {
		warnings = &errors.Warnings{}
	}
	return &Locator{Registry: registry, Logger: logger, Warnings: warnings}
}

// Locate maps descriptors and extra sources to a sorted, deduplicated list
// of targets.
//
// Descriptors that cannot be located are dropped with a warning. An
// invalid extra source is a configuration error and fails the call, as do
// fatal registry errors and context cancellation.
func (l *Locator) Locate(ctx context.Context, descriptors []deps.Descriptor, extra []string) ([]Target, error) {
	byRef := make(map[Reference]map[string]bool)
	add := func(ref Reference, label string) {
		if byRef[ref] == nil {
			byRef[ref] = make(map[string]bool)
		}
		byRef[ref][label] = true
	}

	// Registry answers depend only on the crate name; look each name up
	// once. A manifest-declared URL belongs to its own descriptor.
	looked := make(map[string]*Reference)
	for _, d := range descriptors {
		ref, seen := looked[d.Name]
		if d.Repository != "" || !seen {
			var err error
			ref, err = l.locate(ctx, d)
			if err != nil {
				return nil, err
			}
			if d.Repository == "" {
				looked[d.Name] = ref
			}
		}
		if ref != nil {
			add(*ref, d.Name)
		}
	}

	for _, raw := range extra {
		if err := errors.ValidateSourceURL(raw); err != nil {
			return nil, err
		}
		ref, err := ParseURL(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "extra source %q", raw)
		}
		add(ref, ref.Repo)
	}

	targets := make([]Target, 0, len(byRef))
	for ref, names := range byRef {
		t := Target{Ref: ref, Dependencies: make([]string, 0, len(names))}
		for n := range names {
			t.Dependencies = append(t.Dependencies, n)
		}
		sort.Strings(t.Dependencies)
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Ref.Less(targets[j].Ref) })

	l.Logger.Debug("located repositories", "dependencies", len(descriptors), "repositories", len(targets))
	return targets, nil
}

// locate returns the reference for one descriptor, or nil after recording
// a warning when it cannot be determined.
func (l *Locator) locate(ctx context.Context, d deps.Descriptor) (*Reference, error) {
	url := d.Repository
	if url == "" {
		if l.Registry == nil {
			l.Warnings.Add(errors.ErrCodeRepoUnresolved, d.Name, "no repository URL declared")
			return nil, nil
		}
		lookup, err := l.Registry.RepositoryURL(ctx, d.Name, l.Refresh)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.IsFatal(err) && !errors.Is(err, errors.ErrCodeInvalidInput) {
				return nil, err
			}
			l.Logger.Debug("registry lookup failed", "crate", d.Name, "err", err)
			l.Warnings.AddErr(errors.ErrCodeRepoUnresolved, d.Name, err)
			return nil, nil
		}
		if !lookup.Found {
			l.Warnings.Add(errors.ErrCodeRepoUnresolved, d.Name, "no repository declared on %s", l.Registry.Name())
			return nil, nil
		}
		url = lookup.Repository
	}

	ref, err := ParseURL(url)
	if err != nil {
		l.Warnings.AddErr(errors.ErrCodeRepoUnresolved, d.Name, err)
		return nil, nil
	}
	l.Logger.Debug("located repository", "crate", d.Name, "repo", ref)
	return &ref, nil
}
