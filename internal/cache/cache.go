package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kjstillabower/krishivani/internal/models"
)

// Cache defines the interface for weather dataset caching implementations.
// Keys are rounded coordinate keys (models.Coordinates.Key).
type Cache interface {
	// Get returns the dataset if present and not expired.
	Get(ctx context.Context, key string) (models.WeatherDataset, bool, error)
	// Set stores the dataset for ttl.
	Set(ctx context.Context, key string, value models.WeatherDataset, ttl time.Duration) error
	// GetStale returns the last stored dataset, expired or not, when it was stored
	// no more than maxAge ago. Used as a fallback when the upstream fails.
	GetStale(ctx context.Context, key string, maxAge time.Duration) (models.WeatherDataset, bool, error)
}

// InMemoryCache implements Cache using a mutex-protected map with TTL-based expiration.
// Expired entries stay readable through GetStale until they are older than the
// retention passed to NewInMemoryCache.
type InMemoryCache struct {
	mu        sync.Mutex
	data      map[string]cacheEntry
	retention time.Duration
	now       func() time.Time
}

type cacheEntry struct {
	value     models.WeatherDataset
	storedAt  time.Time
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache. retention bounds how long expired
// entries are kept for stale reads; zero drops them on expiry.
func NewInMemoryCache(retention time.Duration) *InMemoryCache {
	return &InMemoryCache{
		data:      make(map[string]cacheEntry),
		retention: retention,
		now:       time.Now,
	}
}

// Get retrieves the dataset for key if present and not expired.
func (c *InMemoryCache) Get(ctx context.Context, key string) (models.WeatherDataset, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.WeatherDataset{}, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok {
		return models.WeatherDataset{}, false, nil
	}
	now := c.now()
	if now.After(entry.expiresAt) {
		if now.Sub(entry.storedAt) > c.retention {
			delete(c.data, key)
		}
		return models.WeatherDataset{}, false, nil
	}
	return entry.value, true, nil
}

// Set stores the dataset with the given TTL.
func (c *InMemoryCache) Set(ctx context.Context, key string, value models.WeatherDataset, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.data[key] = cacheEntry{
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}
	return nil
}

// GetStale returns the entry for key regardless of expiry if it is at most maxAge old.
func (c *InMemoryCache) GetStale(ctx context.Context, key string, maxAge time.Duration) (models.WeatherDataset, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.WeatherDataset{}, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok || c.now().Sub(entry.storedAt) > maxAge {
		return models.WeatherDataset{}, false, nil
	}
	return entry.value, true, nil
}

// Len reports the number of stored entries, expired ones included.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
