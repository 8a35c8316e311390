package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/krishivani/internal/cache"
	"github.com/kjstillabower/krishivani/internal/client"
	"github.com/kjstillabower/krishivani/internal/models"
	"github.com/kjstillabower/krishivani/internal/observability"
)

// Options configures a WeatherService.
type Options struct {
	// TTL is how long a fetched dataset is served from cache.
	TTL time.Duration
	// StaleTTL is the maximum age of a cached dataset served after an upstream failure.
	// Zero disables the stale fallback.
	StaleTTL time.Duration
	// CoalesceTimeout bounds how long a caller waits on a shared upstream fetch.
	// Zero disables coalescing.
	CoalesceTimeout time.Duration
	// FetchTimeout bounds a single upstream dataset fetch, retries included.
	FetchTimeout time.Duration
}

// WeatherService orchestrates dataset retrieval using the cache-aside pattern with
// upstream fallback, and assembles reports and narration on top of it.
type WeatherService struct {
	client    client.WeatherClient
	cache     cache.Cache
	opts      Options
	misses    *missTracker
	coalescer *requestCoalescer
	reports   *Reporter
}

// NewWeatherService wires the client and cache. reports may be nil when only
// GetDataset is used (for example by the cache warmer in tests).
func NewWeatherService(c client.WeatherClient, ch cache.Cache, reports *Reporter, opts Options) *WeatherService {
	var coalescer *requestCoalescer
	if opts.CoalesceTimeout > 0 {
		coalescer = newRequestCoalescer(opts.CoalesceTimeout)
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	return &WeatherService{
		client:    c,
		cache:     ch,
		opts:      opts,
		misses:    newMissTracker(),
		coalescer: coalescer,
		reports:   reports,
	}
}

// GetDataset returns the dataset for coords: cache first, then the upstream, then (on
// upstream failure) a stale cached copy marked Stale. Cache errors never fail the request.
func (s *WeatherService) GetDataset(ctx context.Context, coords models.Coordinates) (models.WeatherDataset, error) {
	key := coords.Key()
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)
	observability.RecordDatasetQuery(key)

	getStart := time.Now()
	cached, ok, err := s.cache.Get(ctx, key)
	getDuration := time.Since(getStart).Seconds()
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get", categorizeCacheError(err)).Inc()
		observability.CacheOperationDurationSeconds.WithLabelValues("get", "error").Observe(getDuration)
		logger.Warn("cache get failed", zap.String("location", key), zap.Error(err))
	} else if ok {
		observability.CacheOperationDurationSeconds.WithLabelValues("get", "success").Observe(getDuration)
		observability.CacheHitsTotal.WithLabelValues("dataset").Inc()
		logger.Debug("dataset served", zap.String("location", key), zap.Bool("cached", true), zap.Duration("duration", time.Since(start)))
		return cached, nil
	}

	concurrent, resolved := s.misses.begin(key)
	defer resolved()
	if concurrent > 1 {
		observability.CacheStampedeDetectedTotal.Inc()
	}
	logger.Debug("cache miss, fetching upstream", zap.String("location", key), zap.Int("concurrent_misses", concurrent))

	data, upstreamErr := s.fetch(ctx, coords)
	if upstreamErr != nil {
		if stale, ok := s.staleFallback(ctx, key, logger); ok {
			return stale, nil
		}
		return models.WeatherDataset{}, fmt.Errorf("fetch dataset for %s: %w", key, upstreamErr)
	}

	setStart := time.Now()
	if setErr := s.cache.Set(ctx, key, data, s.opts.TTL); setErr != nil {
		observability.CacheErrorsTotal.WithLabelValues("set", categorizeCacheError(setErr)).Inc()
		observability.CacheOperationDurationSeconds.WithLabelValues("set", "error").Observe(time.Since(setStart).Seconds())
		logger.Warn("cache set failed", zap.String("location", key), zap.Error(setErr))
	} else {
		observability.CacheOperationDurationSeconds.WithLabelValues("set", "success").Observe(time.Since(setStart).Seconds())
	}
	logger.Debug("dataset served", zap.String("location", key), zap.Bool("cached", false), zap.Duration("duration", time.Since(start)))
	return data, nil
}

// fetch calls the upstream, through the coalescer when enabled. The coalesced fetch is
// detached from the first caller's cancellation so later joiners still get a result.
func (s *WeatherService) fetch(ctx context.Context, coords models.Coordinates) (models.WeatherDataset, error) {
	if s.coalescer == nil {
		return s.client.FetchDataset(ctx, coords)
	}
	fetchCtx := context.WithoutCancel(ctx)
	data, joined, err := s.coalescer.GetOrDo(ctx, coords.Key(), func() (models.WeatherDataset, error) {
		ctx, cancel := context.WithTimeout(fetchCtx, s.opts.FetchTimeout)
		defer cancel()
		return s.client.FetchDataset(ctx, coords)
	})
	if joined && err == nil {
		observability.RequestCoalescingHitsTotal.Inc()
	}
	return data, err
}

func (s *WeatherService) staleFallback(ctx context.Context, key string, logger *zap.Logger) (models.WeatherDataset, bool) {
	if s.opts.StaleTTL <= 0 {
		return models.WeatherDataset{}, false
	}
	// The request context may already be done; the stale read should still be attempted.
	stale, ok, err := s.cache.GetStale(context.WithoutCancel(ctx), key, s.opts.StaleTTL)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get_stale", categorizeCacheError(err)).Inc()
		return models.WeatherDataset{}, false
	}
	if !ok {
		return models.WeatherDataset{}, false
	}
	observability.StaleCacheServesTotal.Inc()
	stale.Stale = true
	logger.Info("serving stale cache", zap.String("location", key), zap.Time("fetched_at", stale.FetchedAt))
	return stale, true
}

// categorizeCacheError returns a stable label for cache error metrics.
func categorizeCacheError(err error) string {
	switch {
	case err == nil:
		return "unknown"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "network"):
		return "connection"
	case strings.Contains(msg, "decode"), strings.Contains(msg, "encode"):
		return "codec"
	}
	return "unknown"
}
