package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SQLiteCache keeps fetched datasets on disk between runs
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteCache opens (and migrates) the cache database at dbPath
func NewSQLiteCache(dbPath string, ttl time.Duration) (*SQLiteCache, error) {
	if dbPath == "" {
		dbPath = "./cache/console-cases-cache.db"
	}
	// Ensure target directory exists (e.g., ./data)
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open(sqliteDriver, sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	c := &SQLiteCache{db: db, ttl: ttl, now: time.Now}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS dataset_cache (
			key TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dataset_cache_expires_at ON dataset_cache(expires_at)`,
	}
	for _, migration := range migrations {
		if _, err := c.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

// Get retrieves a value; expired rows are removed and reported as a miss
func (c *SQLiteCache) Get(key string) ([]byte, bool) {
	var body []byte
	var expiresAt int64
	err := c.db.QueryRow(`SELECT body, expires_at FROM dataset_cache WHERE key = ?`, key).Scan(&body, &expiresAt)
	if err != nil {
		return nil, false
	}
	if c.now().UnixNano() >= expiresAt {
		_, _ = c.db.Exec(`DELETE FROM dataset_cache WHERE key = ?`, key)
		return nil, false
	}
	return body, true
}

// Set stores a value with the given ttl (or the cache default)
func (c *SQLiteCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()
	_, err := c.db.Exec(`INSERT OR REPLACE INTO dataset_cache (key, body, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		key, value, now.Add(ttl).UnixNano(), now.Unix())
	if err != nil {
		return fmt.Errorf("failed to cache dataset: %w", err)
	}
	return nil
}

// Delete removes a value
func (c *SQLiteCache) Delete(key string) error {
	if _, err := c.db.Exec(`DELETE FROM dataset_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cached dataset: %w", err)
	}
	return nil
}

// Clear removes every cached dataset
func (c *SQLiteCache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM dataset_cache`); err != nil {
		return fmt.Errorf("failed to clear dataset cache: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
