package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPattern = "console-cases:dataset:*"

// RedisCache shares fetched datasets between processes through Redis
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisCache connects to redisURL and verifies the connection
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	if redisURL == "" {
		return nil, errors.New("redis URL is empty")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl, timeout: 2 * time.Second}, nil
}

// Get retrieves a value; connection errors count as a miss
func (rc *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()

	val, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores a value with the given ttl (or the cache default)
func (rc *RedisCache) Set(key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()

	if err := rc.client.Set(ctx, key, value, rc.effectiveTTL(ttl)).Err(); err != nil {
		return fmt.Errorf("failed to cache dataset: %w", err)
	}
	return nil
}

// Delete removes a value
func (rc *RedisCache) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()

	if err := rc.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cached dataset: %w", err)
	}
	return nil
}

// Clear removes every dataset key owned by this application
func (rc *RedisCache) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	iter := rc.client.Scan(ctx, 0, redisKeyPattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := rc.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached datasets: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

func (rc *RedisCache) effectiveTTL(ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return rc.ttl
}
