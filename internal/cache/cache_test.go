package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIsStableAndPrefixed(t *testing.T) {
	a := Key("https://example.com/cases.json")
	b := Key("https://example.com/cases.json")
	c := Key("https://example.com/other.json")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^console-cases:dataset:v1:[0-9a-f]{64}$`, a)
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("a", []byte("1"), time.Minute))
	require.NoError(t, c.Clear())
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestSQLiteCacheExpiry(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("k", []byte(`[]`), 0))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte(`[]`), got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire after the default ttl")

	var count int
	require.NoError(t, c.db.QueryRow(`SELECT COUNT(*) FROM dataset_cache`).Scan(&count))
	assert.Equal(t, 0, count, "expired row should be deleted on read")
}

func TestSQLiteCacheClear(t *testing.T) {
	c, err := NewSQLiteCache(":memory:", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("a", []byte("1"), 0))
	require.NoError(t, c.Set("b", []byte("2"), 0))
	require.NoError(t, c.Clear())

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestLayeredCachePromotesRemoteHits(t *testing.T) {
	mem := NewMemoryCache(time.Minute, time.Minute)
	remote := NewMemoryCache(time.Minute, time.Minute)
	l := NewLayeredCache(mem, remote)

	require.NoError(t, remote.Set("k", []byte("v"), 0))
	got, ok := l.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	_, ok = mem.Get("k")
	assert.True(t, ok, "remote hit should be promoted to memory")

	require.NoError(t, l.Delete("k"))
	_, ok = remote.Get("k")
	assert.False(t, ok)
}

func TestNewSelectsBackend(t *testing.T) {
	c, err := New(Options{Backend: "none"})
	require.NoError(t, err)
	assert.IsType(t, NullCache{}, c)

	c, err = New(Options{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = New(Options{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &LayeredCache{}, c)
	require.NoError(t, c.Close())

	// an unreachable redis degrades to the memory layer
	c, err = New(Options{Backend: "redis", RedisURL: "redis://127.0.0.1:1/0"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	_, err = New(Options{Backend: "bogus"})
	assert.Error(t, err)
}
