package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Cache stores fetched dataset bodies keyed by source URL.
// Session-local additions never go through a Cache.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
	Close() error
}

// Options selects and configures a cache backend
type Options struct {
	// Backend is one of "none", "memory", "redis", "sqlite"
	Backend string
	TTL     time.Duration
	// RedisURL is used by the redis backend
	RedisURL string
	// Path is the sqlite database file used by the sqlite backend
	Path   string
	Logger *log.Logger
}

// Key derives the cache key for a dataset URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "console-cases:dataset:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by opts. Remote and disk backends sit behind
// an in-memory layer; a redis backend that cannot be reached degrades to the
// memory layer alone, the same way the event bus fell back to a null bus.
func New(opts Options) (Cache, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", "none", "off":
		return NullCache{}, nil
	case "memory":
		return NewMemoryCache(opts.TTL, 10*time.Minute), nil
	case "redis":
		rc, err := NewRedisCache(opts.RedisURL, opts.TTL)
		if err != nil {
			opts.Logger.Printf("redis cache unavailable, using memory only: %v", err)
			return NewMemoryCache(opts.TTL, 10*time.Minute), nil
		}
		return NewLayeredCache(NewMemoryCache(opts.TTL, 10*time.Minute), rc), nil
	case "sqlite":
		sc, err := NewSQLiteCache(opts.Path, opts.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		return NewLayeredCache(NewMemoryCache(opts.TTL, 10*time.Minute), sc), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (use none, memory, redis or sqlite)", opts.Backend)
	}
}

// NullCache never stores anything
type NullCache struct{}

func (NullCache) Get(string) ([]byte, bool)               { return nil, false }
func (NullCache) Set(string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(string) error                     { return nil }
func (NullCache) Clear() error                            { return nil }
func (NullCache) Close() error                            { return nil }
