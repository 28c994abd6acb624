// Package integrations provides HTTP clients for the registry and hosting
// provider APIs.
//
// # Overview
//
// Each external service has its own subpackage:
//
//   - [crates]: crates.io, for a crate's declared repository URL
//   - [github]: GitHub contributor lists
//   - [gitlab]: GitLab contributor lists
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality: default headers,
// JSON decoding, status mapping and cached lookups via [cache.Cache].
//
// Status codes map onto the error taxonomy:
//
//   - 404: [ErrNotFound]
//   - 401: UNAUTHORIZED (fatal for the run)
//   - 429: rate limited, retryable after the server's hint ([RetryAfterHint])
//   - 5xx and transport failures: [ErrNetwork], retryable
//
// [crates]: github.com/matzehuels/acknowledge/pkg/integrations/crates
// [github]: github.com/matzehuels/acknowledge/pkg/integrations/github
// [gitlab]: github.com/matzehuels/acknowledge/pkg/integrations/gitlab
// [cache.Cache]: github.com/matzehuels/acknowledge/pkg/cache.Cache
package integrations
