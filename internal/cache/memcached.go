package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/kjstillabower/krishivani/internal/models"
)

const (
	keyPrefix      = "krishivani:dataset:"
	staleKeyPrefix = "krishivani:stale:"
	// maxRelativeExp is the largest expiration memcached treats as relative seconds.
	maxRelativeExp = 30 * 24 * 60 * 60
)

// MemcachedCache implements Cache using memcached. Each Set writes the fresh entry
// with the requested TTL and a stale copy that lives for the configured retention.
type MemcachedCache struct {
	client    *memcache.Client
	retention time.Duration
	now       func() time.Time
}

// storedDataset is the memcached payload; StoredAt drives GetStale age checks.
type storedDataset struct {
	Dataset  models.WeatherDataset `json:"dataset"`
	StoredAt time.Time             `json:"storedAt"`
}

// NewMemcachedCache creates a MemcachedCache. addrs is a comma-separated list
// (e.g. "localhost:11211" or "host1:11211,host2:11211"). timeout and maxIdleConns
// configure the client; both use package defaults if zero.
func NewMemcachedCache(addrs string, timeout time.Duration, maxIdleConns int, retention time.Duration) (*MemcachedCache, error) {
	servers := parseAddrs(addrs)
	if len(servers) == 0 {
		servers = []string{"localhost:11211"}
	}
	client := memcache.New(servers...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	if maxIdleConns > 0 {
		client.MaxIdleConns = maxIdleConns
	}
	return &MemcachedCache{client: client, retention: retention, now: time.Now}, nil
}

func parseAddrs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Get implements Cache.Get. Returns false, nil on cache miss; false, err on error.
func (c *MemcachedCache) Get(ctx context.Context, key string) (models.WeatherDataset, bool, error) {
	if ctx.Err() != nil {
		return models.WeatherDataset{}, false, ctx.Err()
	}
	stored, ok, err := c.load(keyPrefix + key)
	if err != nil || !ok {
		return models.WeatherDataset{}, false, err
	}
	return stored.Dataset, true, nil
}

// Set implements Cache.Set.
func (c *MemcachedCache) Set(ctx context.Context, key string, value models.WeatherDataset, ttl time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	raw, err := json.Marshal(storedDataset{Dataset: value, StoredAt: c.now()})
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := c.client.Set(&memcache.Item{
		Key:        keyPrefix + key,
		Value:      raw,
		Expiration: expirationSeconds(ttl),
	}); err != nil {
		return err
	}
	if c.retention <= 0 {
		return nil
	}
	return c.client.Set(&memcache.Item{
		Key:        staleKeyPrefix + key,
		Value:      raw,
		Expiration: expirationSeconds(c.retention),
	})
}

// GetStale implements Cache.GetStale from the long-lived stale copy.
func (c *MemcachedCache) GetStale(ctx context.Context, key string, maxAge time.Duration) (models.WeatherDataset, bool, error) {
	if ctx.Err() != nil {
		return models.WeatherDataset{}, false, ctx.Err()
	}
	stored, ok, err := c.load(staleKeyPrefix + key)
	if err != nil || !ok {
		return models.WeatherDataset{}, false, err
	}
	if c.now().Sub(stored.StoredAt) > maxAge {
		return models.WeatherDataset{}, false, nil
	}
	return stored.Dataset, true, nil
}

func (c *MemcachedCache) load(key string) (storedDataset, bool, error) {
	item, err := c.client.Get(key)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return storedDataset{}, false, nil
		}
		return storedDataset{}, false, err
	}
	var stored storedDataset
	if err := json.Unmarshal(item.Value, &stored); err != nil {
		return storedDataset{}, false, fmt.Errorf("decode dataset: %w", err)
	}
	return stored, true, nil
}

// expirationSeconds converts ttl to a memcached relative expiration, falling back to 1h
// for values memcached would misread.
func expirationSeconds(ttl time.Duration) int32 {
	sec := int64(ttl.Seconds())
	if sec <= 0 || sec > maxRelativeExp {
		return 3600
	}
	return int32(sec)
}

// Ping checks if memcached is reachable. Used for health checks.
func (c *MemcachedCache) Ping() error {
	return c.client.Ping()
}

// Close closes the memcached client connections. Call during shutdown.
func (c *MemcachedCache) Close() error {
	return c.client.Close()
}
