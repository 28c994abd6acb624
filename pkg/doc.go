// Package pkg provides the libraries behind acknowledge, which credits the
// people who build a Rust project's dependencies.
//
// # Overview
//
// Given a Cargo.toml, acknowledge finds the source repository of every
// selected dependency, fetches each repository's contributor list from
// GitHub or GitLab, merges contributors across repositories, and renders an
// ACKNOWLEDGEMENTS.md. The pkg directory is organized into three areas:
//
//  1. Domain logic: [deps], [source], [contrib], [aggregate], [model]
//  2. Infrastructure: [cache], [httputil], [observability], [errors]
//  3. [integrations] - External API clients (crates.io, GitHub, GitLab)
//
// [pipeline] orchestrates a run and [render] turns its result into markdown.
//
// # Architecture
//
// The data flow of one run:
//
//	Cargo.toml
//	     ↓
//	[deps] + [deps/rust] (parse manifest, select by breadth)
//	     ↓
//	[source] (dependency → repository reference, via crates.io when needed)
//	     ↓
//	[contrib] (concurrent, cached, rate-limit aware contributor fetching)
//	     ↓
//	[aggregate] (merge identities across repositories)
//	     ↓
//	[model] (threshold filter + output projection)
//	     ↓
//	[render] (ACKNOWLEDGEMENTS.md)
//
// # Quick Start
//
//	c, _ := cache.NewFileCache(dir)
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ManifestPath: "Cargo.toml",
//	    Format:       model.FormatNameAndCount,
//	    GitHubToken:  os.Getenv("GITHUB_TOKEN"),
//	})
//	if err != nil {
//	    return err
//	}
//	doc, err := render.Markdown(result.Model)
//
// # Caching
//
// [cache] stores registry lookups and complete contributor lists behind one
// interface with file, bbolt, Redis, MongoDB, in-memory LRU and no-op
// backends. A second run over an unchanged manifest makes no network calls.
//
// # Errors
//
// [errors] defines coded errors. Configuration problems, unreadable
// manifests and rejected tokens abort a run; everything else becomes a
// warning on the result and the run continues.
//
// [deps]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/deps
// [source]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/source
// [contrib]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/contrib
// [aggregate]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/aggregate
// [model]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/model
// [cache]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/errors
// [integrations]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/integrations
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/acknowledge/pkg/render
package pkg
