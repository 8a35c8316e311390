package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/krishivani/internal/models"
	"github.com/kjstillabower/krishivani/internal/observability"
)

// DatasetFetcher is implemented by the service layer; fetching through it populates the cache.
// Declared here to avoid a circular dependency on the service package.
type DatasetFetcher interface {
	GetDataset(ctx context.Context, coords models.Coordinates) (models.WeatherDataset, error)
}

// CacheWarmer prefetches datasets for a list of tracked coordinates.
type CacheWarmer struct {
	fetcher DatasetFetcher
	logger  *zap.Logger
}

// NewCacheWarmer creates a CacheWarmer. A nil logger disables logging.
func NewCacheWarmer(fetcher DatasetFetcher, logger *zap.Logger) *CacheWarmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheWarmer{fetcher: fetcher, logger: logger}
}

// Warm fetches every coordinate concurrently. Returns the joined per-coordinate errors.
func (w *CacheWarmer) Warm(ctx context.Context, coords []models.Coordinates) error {
	start := time.Now()
	observability.CacheWarmingTotal.Inc()
	w.logger.Info("warming cache", zap.Int("locations", len(coords)))

	var wg sync.WaitGroup
	errCh := make(chan error, len(coords))
	for _, c := range coords {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := w.fetcher.GetDataset(ctx, c); err != nil {
				errCh <- fmt.Errorf("warm %s: %w", c.Key(), err)
			}
		}()
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	duration := time.Since(start).Seconds()
	observability.CacheWarmingDurationSeconds.Observe(duration)
	w.logger.Info("cache warming complete",
		zap.Int("locations", len(coords)),
		zap.Int("errors", len(errs)),
		zap.Float64("duration_seconds", duration),
	)
	if len(errs) > 0 {
		observability.CacheWarmingErrorsTotal.Inc()
		return fmt.Errorf("cache warming: %w", errors.Join(errs...))
	}
	return nil
}

// WarmPeriodic runs an initial Warm, then refreshes at interval until ctx is done.
func (w *CacheWarmer) WarmPeriodic(ctx context.Context, coords []models.Coordinates, interval time.Duration) error {
	if err := w.Warm(ctx, coords); err != nil {
		w.logger.Warn("initial cache warm failed", zap.Error(err))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Warm(ctx, coords); err != nil {
				w.logger.Warn("periodic cache warm failed", zap.Error(err))
			}
		}
	}
}
