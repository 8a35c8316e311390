package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/krishivani/internal/models"
	"github.com/kjstillabower/krishivani/internal/validation"
)

// Cache backends.
const (
	BackendInMemory  = "in_memory"
	BackendMemcached = "memcached"
	BackendSQLite    = "sqlite"
)

// DefaultCoordinates is Hyderabad, used when a request carries no location.
var DefaultCoordinates = models.Coordinates{Latitude: 17.3850, Longitude: 78.4867}

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration
	// WeatherAPIMaxRPS caps outgoing upstream calls per second; zero means unlimited.
	WeatherAPIMaxRPS float64

	RequestTimeout time.Duration

	CacheBackend          string
	CacheTTL              time.Duration
	StaleCacheTTL         time.Duration
	CacheWarmInterval     time.Duration
	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int
	SQLitePath            string

	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	CircuitBreakerEnabled          bool
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration

	CoalesceTimeout time.Duration

	ShutdownTimeout time.Duration

	Timezone           string
	Location           *time.Location
	MaxDays            int
	DefaultCoordinates models.Coordinates

	TrackedCoordinates []models.Coordinates

	DegradedWindow      time.Duration
	DegradedErrorPct    int
	DegradedMinRequests int
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	WeatherAPI struct {
		BaseURL string  `yaml:"base_url"`
		Timeout string  `yaml:"timeout"`
		MaxRPS  float64 `yaml:"max_rps"`
	} `yaml:"weather_api"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Cache struct {
		Backend      string `yaml:"backend"`
		TTL          string `yaml:"ttl"`
		StaleTTL     string `yaml:"stale_ttl"`
		WarmInterval string `yaml:"warm_interval"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
	} `yaml:"cache"`

	Reliability struct {
		RetryMaxAttempts int    `yaml:"retry_max_attempts"`
		RetryBaseDelay   string `yaml:"retry_base_delay"`
		RetryMaxDelay    string `yaml:"retry_max_delay"`
		RateLimitRPS     int    `yaml:"rate_limit_rps"`
		RateLimitBurst   int    `yaml:"rate_limit_burst"`
		CircuitBreaker struct {
			Enabled          *bool  `yaml:"enabled"`
			FailureThreshold int    `yaml:"failure_threshold"`
			SuccessThreshold int    `yaml:"success_threshold"`
			Timeout          string `yaml:"timeout"`
		} `yaml:"circuit_breaker"`
		CoalesceTimeout string `yaml:"coalesce_timeout"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`

	Narration struct {
		Timezone         string   `yaml:"timezone"`
		MaxDays          int      `yaml:"max_days"`
		DefaultLatitude  *float64 `yaml:"default_latitude"`
		DefaultLongitude *float64 `yaml:"default_longitude"`
	} `yaml:"narration"`

	Metrics struct {
		TrackedCoordinates []string `yaml:"tracked_coordinates"`
	} `yaml:"metrics"`

	Health struct {
		DegradedWindow      string `yaml:"degraded_window"`
		DegradedErrorPct    int    `yaml:"degraded_error_pct"`
		DegradedMinRequests int    `yaml:"degraded_min_requests"`
	} `yaml:"health"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
}

// Load reads configuration relative to the working directory. Call from project root.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	return LoadFrom(cwd)
}

// LoadFrom loads dir/.env (when present) into the environment without overriding
// variables already set, then reads dir/config/{ENV_NAME}.yaml (default dev) and
// dir/config/secrets.yaml. The API key comes from WEATHER_API_KEY or the secrets file.
func LoadFrom(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	configPath := filepath.Join(dir, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = firstNonEmpty(os.Getenv("SERVER_PORT"), fc.Server.Port, "8080")

	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")
	if cfg.WeatherAPIKey == "" {
		key, err := readSecretsKey(filepath.Join(dir, "config", "secrets.yaml"))
		if err != nil {
			return nil, err
		}
		cfg.WeatherAPIKey = key
	}
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY required (set env, .env or config/secrets.yaml weather_api_key)")
	}

	cfg.WeatherAPIURL = firstNonEmpty(strings.TrimSpace(fc.WeatherAPI.BaseURL), "https://api.openweathermap.org/data/2.5")
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 5*time.Second)
	cfg.WeatherAPIMaxRPS = fc.WeatherAPI.MaxRPS

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 10*time.Second)

	cfg.CacheBackend = strings.ToLower(firstNonEmpty(
		strings.TrimSpace(os.Getenv("CACHE_BACKEND")),
		strings.TrimSpace(fc.Cache.Backend),
		BackendInMemory,
	))
	cfg.CacheTTL = parseDuration(fc.Cache.TTL, 10*time.Minute)
	cfg.StaleCacheTTL = parseDurationOrZero(fc.Cache.StaleTTL, time.Hour)
	cfg.CacheWarmInterval = parseDurationOrZero(fc.Cache.WarmInterval, 0)
	cfg.MemcachedAddrs = firstNonEmpty(
		strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS")),
		strings.TrimSpace(fc.Cache.Memcached.Addrs),
		"localhost:11211",
	)
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}
	cfg.SQLitePath = firstNonEmpty(
		strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		strings.TrimSpace(fc.Cache.SQLite.Path),
		"krishivani-cache.db",
	)

	rel := fc.Reliability
	cfg.RetryAttempts = rel.RetryMaxAttempts
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	cfg.RetryBaseDelay = parseDuration(rel.RetryBaseDelay, 100*time.Millisecond)
	cfg.RetryMaxDelay = parseDuration(rel.RetryMaxDelay, 2*time.Second)
	cfg.RateLimitRPS = rel.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 50
	}
	cfg.RateLimitBurst = rel.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 100
	}
	cfg.CircuitBreakerEnabled = true
	if rel.CircuitBreaker.Enabled != nil {
		cfg.CircuitBreakerEnabled = *rel.CircuitBreaker.Enabled
	}
	cfg.CircuitBreakerFailureThreshold = rel.CircuitBreaker.FailureThreshold
	if cfg.CircuitBreakerFailureThreshold <= 0 {
		cfg.CircuitBreakerFailureThreshold = 5
	}
	cfg.CircuitBreakerSuccessThreshold = rel.CircuitBreaker.SuccessThreshold
	if cfg.CircuitBreakerSuccessThreshold <= 0 {
		cfg.CircuitBreakerSuccessThreshold = 2
	}
	cfg.CircuitBreakerTimeout = parseDuration(rel.CircuitBreaker.Timeout, 30*time.Second)
	cfg.CoalesceTimeout = parseDurationOrZero(rel.CoalesceTimeout, 15*time.Second)

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	cfg.Timezone = firstNonEmpty(
		strings.TrimSpace(os.Getenv("NARRATION_TIMEZONE")),
		strings.TrimSpace(fc.Narration.Timezone),
		"Asia/Kolkata",
	)
	cfg.MaxDays = fc.Narration.MaxDays
	if cfg.MaxDays == 0 {
		cfg.MaxDays = 5
	}
	cfg.DefaultCoordinates = DefaultCoordinates
	if fc.Narration.DefaultLatitude != nil {
		cfg.DefaultCoordinates.Latitude = *fc.Narration.DefaultLatitude
	}
	if fc.Narration.DefaultLongitude != nil {
		cfg.DefaultCoordinates.Longitude = *fc.Narration.DefaultLongitude
	}

	for _, s := range fc.Metrics.TrackedCoordinates {
		c, err := models.ParseCoordinates(s)
		if err != nil {
			return nil, fmt.Errorf("metrics.tracked_coordinates: %w", err)
		}
		cfg.TrackedCoordinates = append(cfg.TrackedCoordinates, c)
	}

	cfg.DegradedWindow = parseDuration(fc.Health.DegradedWindow, 60*time.Second)
	cfg.DegradedErrorPct = fc.Health.DegradedErrorPct
	if cfg.DegradedErrorPct <= 0 {
		cfg.DegradedErrorPct = 50
	}
	cfg.DegradedMinRequests = fc.Health.DegradedMinRequests
	if cfg.DegradedMinRequests <= 0 {
		cfg.DegradedMinRequests = 5
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readSecretsKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}
	var sec secretsFile
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return "", fmt.Errorf("parse secrets file: %w", err)
	}
	return sec.WeatherAPIKey, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Zero and negative durations are returned as-is so callers can treat them as "disabled".
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation and resolves the narration time zone.
// RequestTimeout is raised above WeatherAPITimeout when needed.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("weather_api.timeout must be positive")
	}
	if cfg.RequestTimeout <= cfg.WeatherAPITimeout {
		cfg.RequestTimeout = cfg.WeatherAPITimeout + time.Second
	}
	if cfg.WeatherAPIMaxRPS < 0 {
		return fmt.Errorf("weather_api.max_rps must not be negative")
	}
	switch cfg.CacheBackend {
	case BackendInMemory, BackendMemcached, BackendSQLite:
	default:
		return fmt.Errorf("cache.backend must be in_memory, memcached or sqlite, got %q", cfg.CacheBackend)
	}
	if cfg.StaleCacheTTL < 0 {
		return fmt.Errorf("cache.stale_ttl must not be negative")
	}
	if cfg.MaxDays < 1 || cfg.MaxDays > 5 {
		return fmt.Errorf("narration.max_days must be between 1 and 5, got %d", cfg.MaxDays)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("narration.timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc
	if err := validation.ValidateCoordinates(cfg.DefaultCoordinates); err != nil {
		return fmt.Errorf("narration default coordinates: %w", err)
	}
	for _, c := range cfg.TrackedCoordinates {
		if err := validation.ValidateCoordinates(c); err != nil {
			return fmt.Errorf("metrics.tracked_coordinates %s: %w", c.Key(), err)
		}
	}
	if cfg.DegradedErrorPct > 100 {
		return fmt.Errorf("health.degraded_error_pct must be at most 100, got %d", cfg.DegradedErrorPct)
	}
	return nil
}
