// Package contrib fetches repository contributor lists from hosting
// providers, under rate limits and with caching.
//
// # Providers
//
// A [Provider] adapts one hosting API: it fetches a page of contributors
// and recognises that API's rate-limit errors. [GitHub] and [GitLab] wrap
// the clients in pkg/integrations. Adding a provider needs no change to the
// [Fetcher].
//
// # Fetching
//
// [Fetcher.Fetch] processes each repository once:
//
//   - a well-formed cache entry is used without network calls
//   - otherwise every page is fetched, retrying rate-limited and transient
//     failures with backoff (the provider's reset hint when present)
//   - the complete list is cached; partial lists never are
//
// Repositories that still fail are dropped with a RATE_LIMITED or
// FETCH_FAILED warning. A rejected token (UNAUTHORIZED) aborts the whole
// fetch.
//
// # Concurrency
//
// Repositories are fetched by at most [Options.Workers] goroutines, and at
// most [Options.PerProvider] requests are in flight per provider.
package contrib
