package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a [MongoCache].
type MongoConfig struct {
	URI        string
	Database   string // default "acknowledge"
	Collection string // default "cache"
}

// MongoCache stores entries as documents keyed by cache key.
type MongoCache struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	WrittenAt time.Time `bson:"written_at"`
}

// NewMongoCache connects to MongoDB and verifies the connection.
func NewMongoCache(ctx context.Context, cfg MongoConfig) (*MongoCache, error) {
	if cfg.Database == "" {
		cfg.Database = "acknowledge"
	}
	if cfg.Collection == "" {
		cfg.Collection = "cache"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoCache{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get retrieves a value from the cache.
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e mongoEntry
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e.Data, true, nil
}

// Set upserts a value.
func (c *MongoCache) Set(ctx context.Context, key string, data []byte) error {
	e := mongoEntry{Key: key, Data: data, WrittenAt: time.Now().UTC()}
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
	return err
}

// Delete removes a value from the cache.
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	_, err := c.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Clear removes every document in the cache collection.
func (c *MongoCache) Clear(ctx context.Context) (int, error) {
	res, err := c.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

// Close disconnects the client.
func (c *MongoCache) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

var _ Cache = (*MongoCache)(nil)
