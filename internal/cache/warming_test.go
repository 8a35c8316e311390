package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kjstillabower/krishivani/internal/models"
	"github.com/kjstillabower/krishivani/internal/observability"
)

type mockDatasetFetcher struct {
	mu      sync.Mutex
	fetched []string
	failKey string
}

func (m *mockDatasetFetcher) GetDataset(ctx context.Context, coords models.Coordinates) (models.WeatherDataset, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, coords.Key())
	m.mu.Unlock()
	if coords.Key() == m.failKey {
		return models.WeatherDataset{}, errors.New("api down")
	}
	return sampleDataset(30), nil
}

var tracked = []models.Coordinates{
	{Latitude: 17.385, Longitude: 78.4867},
	{Latitude: 13.0827, Longitude: 80.2707},
}

func TestCacheWarmer_Warm_Success(t *testing.T) {
	fetcher := &mockDatasetFetcher{}
	warmer := NewCacheWarmer(fetcher, nil)
	before := testutil.ToFloat64(observability.CacheWarmingTotal)

	if err := warmer.Warm(context.Background(), tracked); err != nil {
		t.Fatalf("Warm() error = %v, want nil", err)
	}
	if len(fetcher.fetched) != 2 {
		t.Errorf("fetched %d coordinates, want 2", len(fetcher.fetched))
	}
	if got := testutil.ToFloat64(observability.CacheWarmingTotal) - before; got != 1 {
		t.Errorf("cacheWarmingTotal delta = %v, want 1", got)
	}
}

func TestCacheWarmer_Warm_EmptyLocations(t *testing.T) {
	warmer := NewCacheWarmer(&mockDatasetFetcher{}, nil)

	if err := warmer.Warm(context.Background(), nil); err != nil {
		t.Fatalf("Warm() with nil coordinates error = %v, want nil", err)
	}
}

func TestCacheWarmer_Warm_FetcherError(t *testing.T) {
	fetcher := &mockDatasetFetcher{failKey: "13.08,80.27"}
	warmer := NewCacheWarmer(fetcher, nil)
	before := testutil.ToFloat64(observability.CacheWarmingErrorsTotal)

	err := warmer.Warm(context.Background(), tracked)
	if err == nil {
		t.Fatal("Warm() error = nil, want non-nil")
	}
	if !strings.Contains(err.Error(), "warm 13.08,80.27: api down") {
		t.Errorf("Warm() error = %q, want failing coordinate named", err)
	}
	if len(fetcher.fetched) != 2 {
		t.Errorf("fetched %d coordinates, want 2 (failure must not stop others)", len(fetcher.fetched))
	}
	if got := testutil.ToFloat64(observability.CacheWarmingErrorsTotal) - before; got != 1 {
		t.Errorf("cacheWarmingErrorsTotal delta = %v, want 1", got)
	}
}

func TestCacheWarmer_WarmPeriodic_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &mockDatasetFetcher{}
	warmer := NewCacheWarmer(fetcher, nil)

	cancel()
	if err := warmer.WarmPeriodic(ctx, tracked[:1], time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("WarmPeriodic() error = %v, want context.Canceled", err)
	}
	if len(fetcher.fetched) != 1 {
		t.Errorf("fetched %d, want initial warm only", len(fetcher.fetched))
	}
}
