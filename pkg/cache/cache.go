// Package cache provides the byte-oriented store used by every
// network-facing component to avoid repeating registry and provider calls.
//
// # Backends
//
//   - [FileCache]: one JSON file per key under ~/.cache/acknowledge (default)
//   - [BoltCache]: a single bbolt database file
//   - [RedisCache]: a shared Redis instance
//   - [MongoCache]: a shared MongoDB collection
//   - [NullCache]: stores nothing (--no-cache)
//
// [NewLRU] fronts any backend with a bounded in-memory tier, which the HTTP
// server uses to keep hot repositories out of the backing store.
//
// # Expiry
//
// Entries never expire. Each entry records when it was written, but
// staleness is resolved only by [Cache.Clear], exposed to users as
// `acknowledge cache clear`.
//
// # Corruption
//
// Backends report unreadable entries as misses, never as errors, so a
// damaged cache degrades to a re-fetch.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a persistent key→bytes store.
//
// Implementations must be safe for concurrent use with distinct keys.
type Cache interface {
	// Get returns the stored bytes for key. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, overwriting any previous entry.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry and reports how many were removed.
	Clear(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// entry is the on-disk envelope shared by the file and bolt backends.
type entry struct {
	Data      []byte    `json:"data"`
	WrittenAt time.Time `json:"written_at"`
}

func encodeEntry(data []byte) ([]byte, error) {
	return json.Marshal(entry{Data: data, WrittenAt: time.Now().UTC()})
}

// decodeEntry unwraps raw into its payload. ok is false when raw is not a
// well-formed entry.
func decodeEntry(raw []byte) (data []byte, ok bool) {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.WrittenAt.IsZero() {
		return nil, false
	}
	return e.Data, true
}
