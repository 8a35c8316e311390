package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteCache(t *testing.T, retention time.Duration) (*SQLiteCache, *stepClock) {
	t.Helper()
	c, err := NewSQLiteCache(":memory:", retention)
	if err != nil {
		t.Fatalf("NewSQLiteCache() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	clock := newClock()
	c.now = clock.now
	return c, clock
}

// TestSQLiteCache_GetSet verifies a stored dataset round-trips through SQLite.
func TestSQLiteCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestSQLiteCache(t, time.Hour)

	if err := c.Set(ctx, hydKey, sampleDataset(33.2), 10*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := c.Get(ctx, hydKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got.Current.Location != "Hyderabad" || got.Current.Temperature != 33.2 {
		t.Errorf("Get() current = %+v", got.Current)
	}
	if len(got.Forecast) != 1 || got.Forecast[0].PrecipProbability != 0.4 {
		t.Errorf("Get() forecast = %+v", got.Forecast)
	}
	if !got.FetchedAt.Equal(sampleDataset(0).FetchedAt) {
		t.Errorf("Get() FetchedAt = %v", got.FetchedAt)
	}
}

// TestSQLiteCache_Overwrite verifies Set replaces an existing row.
func TestSQLiteCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestSQLiteCache(t, time.Hour)

	_ = c.Set(ctx, hydKey, sampleDataset(20), time.Minute)
	_ = c.Set(ctx, hydKey, sampleDataset(25), time.Minute)

	got, ok, err := c.Get(ctx, hydKey)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if got.Current.Temperature != 25 {
		t.Errorf("Get() temperature = %v, want 25", got.Current.Temperature)
	}
}

// TestSQLiteCache_ExpiryAndStale verifies expired rows miss on Get but serve GetStale.
func TestSQLiteCache_ExpiryAndStale(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestSQLiteCache(t, time.Hour)

	_ = c.Set(ctx, hydKey, sampleDataset(30), 10*time.Minute)
	clock.advance(20 * time.Minute)

	if _, ok, err := c.Get(ctx, hydKey); err != nil || ok {
		t.Errorf("Get() = %v, %v, want miss", ok, err)
	}
	if _, ok, err := c.GetStale(ctx, hydKey, 30*time.Minute); err != nil || !ok {
		t.Errorf("GetStale(30m) = %v, %v, want hit", ok, err)
	}
	if _, ok, err := c.GetStale(ctx, hydKey, 10*time.Minute); err != nil || ok {
		t.Errorf("GetStale(10m) = %v, %v, want miss", ok, err)
	}
}

// TestSQLiteCache_PrunesBeyondRetention verifies Set deletes expired rows older than the retention.
func TestSQLiteCache_PrunesBeyondRetention(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestSQLiteCache(t, time.Hour)

	_ = c.Set(ctx, "old", sampleDataset(20), time.Minute)
	clock.advance(2 * time.Hour)
	_ = c.Set(ctx, hydKey, sampleDataset(30), time.Minute)

	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM dataset_cache").Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 1 {
		t.Errorf("rows = %d, want 1 after prune", n)
	}
}

// TestSQLiteCache_PersistsAcrossReopen verifies datasets survive closing the database file.
func TestSQLiteCache_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := NewSQLiteCache(path, time.Hour)
	if err != nil {
		t.Fatalf("NewSQLiteCache() error = %v", err)
	}
	if err := c.Set(ctx, hydKey, sampleDataset(28), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	c.Close()

	reopened, err := NewSQLiteCache(path, time.Hour)
	if err != nil {
		t.Fatalf("NewSQLiteCache() reopen error = %v", err)
	}
	defer reopened.Close()
	if err := reopened.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	got, ok, err := reopened.Get(ctx, hydKey)
	if err != nil || !ok {
		t.Fatalf("Get() after reopen = %v, %v", ok, err)
	}
	if got.Current.Temperature != 28 {
		t.Errorf("Get() temperature = %v, want 28", got.Current.Temperature)
	}
}
