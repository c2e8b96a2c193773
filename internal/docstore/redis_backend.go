package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces collection keys.
const DefaultRedisPrefix = "clanhall:docstore:"

// RedisBackend stores each collection under <prefix><collection>.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

var _ Backend = (*RedisBackend)(nil)

func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) Read(ctx context.Context, collection string) ([]byte, error) {
	raw, err := b.client.Get(ctx, b.prefix+collection).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMissing
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", collection, err)
	}
	return raw, nil
}

func (b *RedisBackend) Write(ctx context.Context, collection string, data []byte) error {
	if err := b.client.Set(ctx, b.prefix+collection, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", collection, err)
	}
	return nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close leaves the shared client open; its owner closes it.
func (b *RedisBackend) Close() error {
	return nil
}
