// Package model filters aggregated contributors and projects them into
// the output shape a document is rendered from.
//
// # Filtering
//
// A contributor is kept when their total reaches [Options.Threshold], or
// when they are the only contributor of some repository. Everyone else is
// counted in [Model.Others]. Dependencies left without contributors are
// dropped.
//
// # Formats
//
//   - name-and-count: contributors by total, descending
//   - dep-and-names: dependencies by name, each with its contributors
//   - name-and-deps: contributors by number of dependencies, descending,
//     each with their dependencies
//
// All three are projections of the same filtered data; [Build] fills only
// the view its format selects.
package model
