package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"go-inventory-ledger/internal/logging"
)

// Catalog caches rendered product listings. Invalidate drops every entry at
// once; the ledger calls it whenever the product set changes.
//
// Get pins the catalog version it read into the returned Entry and Set writes
// under that version, so a page built before an invalidation can never be
// stored as current.
type Catalog interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, entry Entry, value []byte) error
	Invalidate(ctx context.Context) error
}

// Entry is the result of a lookup. Key is the versioned storage key.
type Entry struct {
	Key   string
	Value []byte
	Hit   bool
}

// RedisClient holds the Redis client connection
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ Catalog = (*RedisClient)(nil)

// NewRedisClient initializes and returns a new Redis client
func NewRedisClient(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisClient, error) {
	if addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pong, err := client.Ping(pingCtx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logging.WithContext(ctx).WithField("ping", pong).Info("Successfully connected to Redis")

	return &RedisClient{client: client, ttl: ttl, prefix: "catalog"}, nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *RedisClient) versionKey() string {
	return c.prefix + ":version"
}

// key scopes entries by the current catalog version, so bumping the version
// orphans every older entry until its TTL runs out.
func (c *RedisClient) key(ctx context.Context, key string) (string, error) {
	version, err := c.client.Get(ctx, c.versionKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:v%d:%s", c.prefix, version, key), nil
}

func (c *RedisClient) Get(ctx context.Context, key string) (Entry, error) {
	k, err := c.key(ctx, key)
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{Key: k}
	b, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return entry, nil
	}
	if err != nil {
		return Entry{}, err
	}
	entry.Value, entry.Hit = b, true
	return entry, nil
}

func (c *RedisClient) Set(ctx context.Context, entry Entry, value []byte) error {
	if entry.Key == "" {
		return nil
	}
	return c.client.Set(ctx, entry.Key, value, c.ttl).Err()
}

func (c *RedisClient) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.versionKey()).Err()
}

// Nop is used when no Redis is configured. It never hits.
type Nop struct{}

func (Nop) Get(context.Context, string) (Entry, error) { return Entry{}, nil }
func (Nop) Set(context.Context, Entry, []byte) error   { return nil }
func (Nop) Invalidate(context.Context) error           { return nil }
