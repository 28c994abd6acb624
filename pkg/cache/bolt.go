package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("entries")

// BoltCache stores entries in a single bbolt database file.
type BoltCache struct {
	db *bolt.DB
}

// NewBoltCache opens (or creates) the database at path.
func NewBoltCache(path string) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltCache{db: db}, nil
}

// Get retrieves a value from the cache.
func (c *BoltCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var ok bool
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(boltBucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		// raw is only valid inside the transaction
		if d, valid := decodeEntry(raw); valid {
			data = append([]byte(nil), d...)
			ok = true
		}
		return nil
	})
	return data, ok, err
}

// Set stores a value in the cache.
func (c *BoltCache) Set(ctx context.Context, key string, data []byte) error {
	raw, err := encodeEntry(data)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), raw)
	})
}

// Delete removes a value from the cache.
func (c *BoltCache) Delete(ctx context.Context, key string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
}

// Clear drops and recreates the entries bucket.
func (c *BoltCache) Clear(ctx context.Context) (int, error) {
	count := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket(boltBucket).ForEach(func(_, _ []byte) error {
			count++
			return nil
		})
		if err != nil {
			return err
		}
		if err := tx.DeleteBucket(boltBucket); err != nil {
			return err
		}
		_, err = tx.CreateBucket(boltBucket)
		return err
	})
	return count, err
}

// Close closes the database file.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

var _ Cache = (*BoltCache)(nil)
