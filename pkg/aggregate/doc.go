// Package aggregate merges per-repository contributor records into one
// entry per person.
//
// # Identity
//
// Records are keyed by [IdentityKey]: the login, trimmed and lowercased.
// Records linked to a provider account merge on that key. A record without
// a profile URL (a GitLab commit author) joins an account's entry only when
// its login matches one of that account's logins exactly; otherwise it
// keeps an entry of its own, keyed by its exact login.
//
// # Determinism
//
// [Aggregate] sorts its input before merging, so the result does not
// depend on the order in which repositories finished fetching.
package aggregate
