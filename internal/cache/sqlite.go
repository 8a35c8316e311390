package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kjstillabower/krishivani/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS dataset_cache (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	stored_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
)`

// SQLiteCache implements Cache on a local SQLite file so cached datasets survive restarts.
// Rows are kept past expiry for stale reads and pruned once older than the retention.
type SQLiteCache struct {
	db        *sql.DB
	retention time.Duration
	now       func() time.Time
}

// NewSQLiteCache opens (or creates) the database at path. ":memory:" is accepted for tests.
func NewSQLiteCache(path string, retention time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite cache schema: %w", err)
	}
	return &SQLiteCache{db: db, retention: retention, now: time.Now}, nil
}

// Get implements Cache.Get.
func (c *SQLiteCache) Get(ctx context.Context, key string) (models.WeatherDataset, bool, error) {
	var (
		payload   []byte
		expiresAt int64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT payload, expires_at FROM dataset_cache WHERE key = ?", key,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WeatherDataset{}, false, nil
	}
	if err != nil {
		return models.WeatherDataset{}, false, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	if c.now().UnixNano() > expiresAt {
		return models.WeatherDataset{}, false, nil
	}
	return decodeDataset(payload)
}

// Set implements Cache.Set and prunes rows older than the retention.
func (c *SQLiteCache) Set(ctx context.Context, key string, value models.WeatherDataset, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	now := c.now()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO dataset_cache (key, payload, stored_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			stored_at = excluded.stored_at,
			expires_at = excluded.expires_at`,
		key, payload, now.UnixNano(), now.Add(ttl).UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}

	cutoff := now.Add(-c.retention)
	if _, err := c.db.ExecContext(ctx,
		"DELETE FROM dataset_cache WHERE expires_at < ? AND stored_at < ?",
		now.UnixNano(), cutoff.UnixNano(),
	); err != nil {
		return fmt.Errorf("sqlite prune: %w", err)
	}
	return nil
}

// GetStale implements Cache.GetStale.
func (c *SQLiteCache) GetStale(ctx context.Context, key string, maxAge time.Duration) (models.WeatherDataset, bool, error) {
	var payload []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT payload FROM dataset_cache WHERE key = ? AND stored_at >= ?",
		key, c.now().Add(-maxAge).UnixNano(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WeatherDataset{}, false, nil
	}
	if err != nil {
		return models.WeatherDataset{}, false, fmt.Errorf("sqlite get stale %s: %w", key, err)
	}
	return decodeDataset(payload)
}

func decodeDataset(payload []byte) (models.WeatherDataset, bool, error) {
	var ds models.WeatherDataset
	if err := json.Unmarshal(payload, &ds); err != nil {
		return models.WeatherDataset{}, false, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, true, nil
}

// Ping checks the database connection. Used for health checks.
func (c *SQLiteCache) Ping() error {
	return c.db.Ping()
}

// Close closes the database. Call during shutdown.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
