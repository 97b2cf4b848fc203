package api

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupeKeyPrefix = "idem"

// RedisDeduper remembers export Idempotency-Key values per project so a
// retried export request does not create a second gist.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper keeps each claimed key for ttl.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (r *RedisDeduper) key(scope, key string) string {
	return strings.Join([]string{dedupeKeyPrefix, scope, key}, ":")
}

// Add claims key within scope. False means an export with the same key was
// already accepted and has not expired.
func (r *RedisDeduper) Add(ctx context.Context, scope, key string) (bool, error) {
	return r.client.SetNX(ctx, r.key(scope, key), time.Now().UTC().Unix(), r.ttl).Result()
}

// Remove releases a claimed key after the export failed.
func (r *RedisDeduper) Remove(ctx context.Context, scope, key string) error {
	return r.client.Del(ctx, r.key(scope, key)).Err()
}
