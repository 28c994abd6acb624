// Package rust reads dependency entries from Cargo manifests.
//
// # Manifest Parsing
//
//	m, err := rust.CargoToml{}.Parse("path/to/project")
//	descriptors := deps.Resolve(m.Entries, deps.BreadthAll)
//
// A directory resolves to its Cargo.toml. The parser reads:
//
//   - [dependencies], [dev-dependencies], [build-dependencies]
//   - the same tables under [target.'cfg(...)']
//   - [workspace.dependencies], and `workspace = true` inheritance
//   - every [workspace] member (glob patterns allowed, exclude honoured)
//
// Renamed dependencies (`package = "..."`) are reported under their
// registry name. Path dependencies are local and skipped. Git dependencies
// carry their URL as the entry's Repository, so no registry lookup is
// needed for them.
//
// Unreadable or malformed manifests fail with INVALID_MANIFEST.
package rust
