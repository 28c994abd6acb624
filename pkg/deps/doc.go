// Package deps turns a project's manifest into the flat set of dependencies
// whose contributors are acknowledged.
//
// # Overview
//
// Resolution has two layers:
//
//  1. Manifest parsing ([ManifestParser]): reads a project descriptor such as
//     Cargo.toml into raw [Entry] values, one per declared dependency edge.
//  2. Resolution ([Resolve]): a pure transformation that filters entries by
//     [Breadth] and deduplicates them into [Descriptor] values.
//
// # Breadth
//
// Breadth levels are monotonic; each includes everything the previous does:
//
//   - non-opt: normal dependencies
//   - all: normal and optional dependencies
//   - build-and-dev: normal, optional, build and dev dependencies
//
// # Deduplication
//
// Descriptors are identified by (name, version). A dependency declared
// through several kinds keeps the least restrictive one, in the order
// normal, optional, build, dev, so that an incidental optional edge never
// hides a dependency the project really uses.
//
// # Supported Manifests
//
//   - [rust]: Cargo.toml, including workspaces
//
// [rust]: github.com/matzehuels/acknowledge/pkg/deps/rust
package deps
