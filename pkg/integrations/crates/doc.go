// Package crates provides an HTTP client for the crates.io API.
//
// # Overview
//
// The client answers one question: which source repository does a crate
// declare? The answer feeds repository location when a Cargo manifest does
// not carry a git URL itself.
//
// # Usage
//
//	client := crates.NewClient(backend)
//	lookup, err := client.RepositoryURL(ctx, "serde", false)
//	if err != nil {
//	    return err
//	}
//	if lookup.Found {
//	    fmt.Println(lookup.Repository)
//	}
//
// # Caching
//
// Lookups are cached under "registry:crates:<name>" with no expiry,
// including negative results. Pass refresh=true to bypass the cache read.
//
// # Politeness
//
// crates.io asks crawlers to send an identifying User-Agent and stay under
// one request per second; the client does both.
package crates
