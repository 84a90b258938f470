// Package sqlite provides a durable on-device cache medium backed by an
// embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	cache_key  TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Cache implements ports.Cache over a single SQLite table. Values survive
// process restarts; the ttl argument is ignored.
type Cache struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the cache database at path. Use ":memory:"
// for a throwaway database.
func Open(path string) (*Cache, error) {
	dbx, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	dbx.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := dbx.ExecContext(ctx, schema); err != nil {
		_ = dbx.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}
	return &Cache{db: dbx}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Ping reports whether the database is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := c.db.GetContext(ctx, &value, `SELECT value FROM cache_entries WHERE cache_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (cache_key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (c *Cache) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := c.db.SelectContext(ctx, &keys,
		`SELECT cache_key FROM cache_entries WHERE substr(cache_key, 1, length(?)) = ? ORDER BY cache_key`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache keys: %w", err)
	}
	return keys, nil
}

var _ ports.Cache = (*Cache)(nil)
