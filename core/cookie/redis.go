package cookie

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces jar keys inside a shared Redis database.
const DefaultRedisPrefix = "cookie:"

// RedisJar keeps cookies in Redis so several processes can share one jar.
// Max-age is mapped onto the key TTL.
type RedisJar struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisJar creates a Redis backed jar. An empty prefix falls back to DefaultRedisPrefix.
func NewRedisJar(rdb redis.UniversalClient, prefix string) *RedisJar {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisJar{rdb: rdb, prefix: prefix}
}

// Get retrieves a cookie value.
func (j *RedisJar) Get(ctx context.Context, name string) (string, error) {
	value, err := j.rdb.Get(ctx, j.key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores the cookie value with a TTL derived from the max-age option.
func (j *RedisJar) Set(ctx context.Context, name, value string, opts ...Option) error {
	if name == "" {
		return ErrEmptyName
	}

	options := applyOptions(Options{}, opts)
	if options.MaxAge < 0 {
		return j.Delete(ctx, name)
	}

	var ttl time.Duration
	if options.MaxAge > 0 {
		ttl = time.Duration(options.MaxAge) * time.Second
	}
	return j.rdb.Set(ctx, j.key(name), value, ttl).Err()
}

// Delete removes the cookie. If it does not exist, this is a no-op.
func (j *RedisJar) Delete(ctx context.Context, name string, _ ...Option) error {
	if name == "" {
		return ErrEmptyName
	}
	return j.rdb.Del(ctx, j.key(name)).Err()
}

func (j *RedisJar) key(name string) string {
	return j.prefix + name
}
