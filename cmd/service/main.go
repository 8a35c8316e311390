package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/krishivani/internal/advisory"
	"github.com/kjstillabower/krishivani/internal/cache"
	"github.com/kjstillabower/krishivani/internal/circuitbreaker"
	"github.com/kjstillabower/krishivani/internal/client"
	"github.com/kjstillabower/krishivani/internal/config"
	httphandler "github.com/kjstillabower/krishivani/internal/http"
	"github.com/kjstillabower/krishivani/internal/language"
	"github.com/kjstillabower/krishivani/internal/location"
	"github.com/kjstillabower/krishivani/internal/narration"
	"github.com/kjstillabower/krishivani/internal/observability"
	"github.com/kjstillabower/krishivani/internal/service"
	"github.com/kjstillabower/krishivani/internal/speech"
	"github.com/kjstillabower/krishivani/internal/traffic"
)

// speechPerRune paces the log speech engine so an utterance stays Speaking for a while.
const speechPerRune = 60 * time.Millisecond

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	weatherClient, err := newWeatherClient(cfg, logger)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}

	store, err := newCache(cfg)
	if err != nil {
		logger.Fatal("dataset cache", zap.Error(err), zap.String("backend", cfg.CacheBackend))
	}
	logger.Info("cache backend", zap.String("backend", cfg.CacheBackend))

	engine := speech.NewLogEngine(logger.Named("speech"), speechPerRune)
	session := speech.NewSession(engine, logger)
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := session.Init(initCtx); err != nil {
		logger.Error("speech disabled", zap.Error(err))
	}
	initCancel()
	catalog := language.ProbeAvailability(session.ProbeLanguage)
	logger.Info("speech languages probed",
		zap.Int("available", len(catalog.Languages())),
		zap.String("default", catalog.Default().Code))

	reporter := service.NewReporter(
		advisory.NewEngine(cfg.Location),
		narration.NewComposer(cfg.Location),
		catalog,
		cfg.Location,
		cfg.MaxDays,
	)
	weatherService := service.NewWeatherService(weatherClient, store.Cache, reporter, service.Options{
		TTL:             cfg.CacheTTL,
		StaleTTL:        cfg.StaleCacheTTL,
		CoalesceTimeout: cfg.CoalesceTimeout,
		FetchTimeout:    cfg.RequestTimeout,
	})

	tracker := traffic.NewTracker(cfg.DegradedWindow)
	handler := httphandler.NewHandler(httphandler.Deps{
		Service: weatherService,
		Client:  weatherClient,
		Speech:  session,
		Locator: location.NewStaticProvider(cfg.DefaultCoordinates),
		Traffic: tracker,
		Health: &httphandler.HealthConfig{
			DegradedWindow:      cfg.DegradedWindow,
			DegradedErrorPct:    cfg.DegradedErrorPct,
			DegradedMinRequests: cfg.DegradedMinRequests,
			CachePing:           store.Ping,
		},
		Logger:  logger,
		MaxDays: cfg.MaxDays,
	})

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	router := httphandler.NewRouter(handler, logger, httphandler.RouterConfig{
		Limiter:        limiter,
		RequestTimeout: cfg.RequestTimeout,
	})

	warmCtx, stopWarming := context.WithCancel(context.Background())
	defer stopWarming()
	if len(cfg.TrackedCoordinates) > 0 {
		keys := make([]string, len(cfg.TrackedCoordinates))
		for i, c := range cfg.TrackedCoordinates {
			keys[i] = c.Key()
		}
		observability.SetTrackedLocations(keys)
		startWarming(warmCtx, cache.NewCacheWarmer(weatherService, logger), cfg, logger)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	handler.SetShuttingDown(true)
	stopWarming()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := httphandler.WaitForInFlight(shutdownCtx, 50*time.Millisecond); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}
	if err := session.Stop(); err != nil {
		logger.Warn("speech stop", zap.Error(err))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	if err := store.Close(); err != nil {
		logger.Error("cache close", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// newWeatherClient builds the upstream client with the optional circuit breaker and outgoing limiter.
func newWeatherClient(cfg *config.Config, logger *zap.Logger) (*client.OpenWeatherClient, error) {
	c, err := client.NewOpenWeatherClientWithRetry(
		cfg.WeatherAPIKey,
		cfg.WeatherAPIURL,
		cfg.WeatherAPITimeout,
		cfg.RetryAttempts,
		cfg.RetryBaseDelay,
		cfg.RetryMaxDelay,
	)
	if err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerEnabled {
		c.SetCircuitBreaker(circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: cfg.CircuitBreakerFailureThreshold,
			SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
			Timeout:          cfg.CircuitBreakerTimeout,
			Component:        "weather_api",
			OnStateChange: func(component string, from, to circuitbreaker.State) {
				observability.RecordCircuitBreakerTransition(component, from.String(), to.String(), int(to))
				logger.Warn("circuit breaker transition",
					zap.String("component", component),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}))
		logger.Info("circuit breaker enabled",
			zap.Int("failure_threshold", cfg.CircuitBreakerFailureThreshold),
			zap.Duration("timeout", cfg.CircuitBreakerTimeout))
	}
	if cfg.WeatherAPIMaxRPS > 0 {
		burst := int(cfg.WeatherAPIMaxRPS)
		if burst < 1 {
			burst = 1
		}
		c.SetRateLimiter(rate.NewLimiter(rate.Limit(cfg.WeatherAPIMaxRPS), burst))
	}
	return c, nil
}

// cacheStore is the configured cache with its optional health and shutdown hooks.
type cacheStore struct {
	cache.Cache
	ping  func() error
	close func() error
}

// Ping is nil-safe; backends without a remote dependency are always reachable.
func (s cacheStore) Ping() error {
	if s.ping == nil {
		return nil
	}
	return s.ping()
}

func (s cacheStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// newCache builds the configured cache backend. Retention for stale copies follows the stale TTL.
func newCache(cfg *config.Config) (cacheStore, error) {
	retention := cfg.StaleCacheTTL
	if retention < cfg.CacheTTL {
		retention = cfg.CacheTTL
	}
	switch cfg.CacheBackend {
	case config.BackendMemcached:
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns, retention)
		if err != nil {
			return cacheStore{}, err
		}
		return cacheStore{Cache: mc, ping: mc.Ping, close: mc.Close}, nil
	case config.BackendSQLite:
		sc, err := cache.NewSQLiteCache(cfg.SQLitePath, retention)
		if err != nil {
			return cacheStore{}, err
		}
		return cacheStore{Cache: sc, ping: sc.Ping, close: sc.Close}, nil
	default:
		return cacheStore{Cache: cache.NewInMemoryCache(retention)}, nil
	}
}

// startWarming warms the tracked coordinates in the background: once, or on every interval
// when one is configured. It stops when ctx is cancelled.
func startWarming(ctx context.Context, warmer *cache.CacheWarmer, cfg *config.Config, logger *zap.Logger) {
	go func() {
		if cfg.CacheWarmInterval > 0 {
			if err := warmer.WarmPeriodic(ctx, cfg.TrackedCoordinates, cfg.CacheWarmInterval); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("periodic cache warming stopped", zap.Error(err))
			}
			return
		}
		warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := warmer.Warm(warmCtx, cfg.TrackedCoordinates); err != nil {
			logger.Warn("cache warming failed", zap.Error(err))
		}
	}()
}
