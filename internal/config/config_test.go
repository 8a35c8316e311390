package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalEnvYAML = `
server:
  port: "8080"
weather_api:
  base_url: "https://api.openweathermap.org/data/2.5"
  timeout: "5s"
`

// isolateEnv clears the variables Load consults so host settings do not leak into tests.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ENV_NAME", "WEATHER_API_KEY", "CACHE_BACKEND", "MEMCACHED_ADDRS",
		"SQLITE_PATH", "SERVER_PORT", "NARRATION_TIMEZONE",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeEnvFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "dev.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func writeSecretsFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config", "secrets.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_FailsWhenNoAPIKey(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeEnvFile(t, dir, minimalEnvYAML)

	cfg, err := LoadFrom(dir)
	if err == nil {
		t.Fatal("LoadFrom() expected error when no WEATHER_API_KEY and no secrets file, got nil")
	}
	if cfg != nil {
		t.Fatalf("LoadFrom() expected nil config on error, got %+v", cfg)
	}
	if !strings.Contains(err.Error(), "WEATHER_API_KEY") {
		t.Errorf("LoadFrom() error = %v, want message containing WEATHER_API_KEY", err)
	}
}

func TestLoad_SucceedsWithSecretsFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeEnvFile(t, dir, minimalEnvYAML)
	writeSecretsFile(t, dir, "weather_api_key: key-from-secrets-file\n")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.WeatherAPIKey != "key-from-secrets-file" {
		t.Errorf("WeatherAPIKey = %q, want key-from-secrets-file", cfg.WeatherAPIKey)
	}
}

// TestLoad_DotEnv verifies .env supplies variables that are not already set.
func TestLoad_DotEnv(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeEnvFile(t, dir, minimalEnvYAML)
	dotenv := "WEATHER_API_KEY=key-from-dotenv\nCACHE_BACKEND=sqlite\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("CACHE_BACKEND", "memcached")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.WeatherAPIKey != "key-from-dotenv" {
		t.Errorf("WeatherAPIKey = %q, want key-from-dotenv", cfg.WeatherAPIKey)
	}
	if cfg.CacheBackend != BackendMemcached {
		t.Errorf("CacheBackend = %q, want existing env to win over .env", cfg.CacheBackend)
	}
}

func TestLoad_EnvFileNotFound(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WEATHER_API_KEY", "test-key-12345")

	_, err := LoadFrom(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("LoadFrom() error = %v, want config file not found", err)
	}
}

// TestLoad_Defaults verifies the defaults applied to a minimal file.
func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WEATHER_API_KEY", "test-key-12345")
	dir := t.TempDir()
	writeEnvFile(t, dir, minimalEnvYAML)

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	checks := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"CacheBackend", cfg.CacheBackend, BackendInMemory},
		{"CacheTTL", cfg.CacheTTL, 10 * time.Minute},
		{"StaleCacheTTL", cfg.StaleCacheTTL, time.Hour},
		{"RetryAttempts", cfg.RetryAttempts, 3},
		{"CircuitBreakerEnabled", cfg.CircuitBreakerEnabled, true},
		{"CoalesceTimeout", cfg.CoalesceTimeout, 15 * time.Second},
		{"Timezone", cfg.Timezone, "Asia/Kolkata"},
		{"MaxDays", cfg.MaxDays, 5},
		{"DefaultCoordinates", cfg.DefaultCoordinates, DefaultCoordinates},
		{"RequestTimeout", cfg.RequestTimeout, 10 * time.Second},
		{"DegradedErrorPct", cfg.DegradedErrorPct, 50},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if cfg.Location == nil || cfg.Location.String() != "Asia/Kolkata" {
		t.Errorf("Location = %v, want Asia/Kolkata", cfg.Location)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WEATHER_API_KEY", "test-key-12345")
	dir := t.TempDir()
	writeEnvFile(t, dir, minimalEnvYAML+`
  max_rps: 2.5
cache:
  backend: sqlite
  ttl: "15m"
  stale_ttl: "0s"
  sqlite:
    path: "/tmp/cache.db"
reliability:
  circuit_breaker:
    enabled: false
    failure_threshold: 3
narration:
  timezone: "UTC"
  max_days: 3
  default_latitude: 13.0827
  default_longitude: 80.2707
metrics:
  tracked_coordinates: ["17.385,78.4867", "13.08,80.27"]
`)

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.WeatherAPIMaxRPS != 2.5 {
		t.Errorf("WeatherAPIMaxRPS = %v, want 2.5", cfg.WeatherAPIMaxRPS)
	}
	if cfg.CacheBackend != BackendSQLite || cfg.SQLitePath != "/tmp/cache.db" {
		t.Errorf("cache = %q %q", cfg.CacheBackend, cfg.SQLitePath)
	}
	if cfg.StaleCacheTTL != 0 {
		t.Errorf("StaleCacheTTL = %v, want 0 (disabled)", cfg.StaleCacheTTL)
	}
	if cfg.CircuitBreakerEnabled || cfg.CircuitBreakerFailureThreshold != 3 {
		t.Errorf("circuit breaker = %v/%d", cfg.CircuitBreakerEnabled, cfg.CircuitBreakerFailureThreshold)
	}
	if cfg.MaxDays != 3 || cfg.Location != time.UTC {
		t.Errorf("narration = %d %v", cfg.MaxDays, cfg.Location)
	}
	if cfg.DefaultCoordinates.Latitude != 13.0827 {
		t.Errorf("DefaultCoordinates = %+v", cfg.DefaultCoordinates)
	}
	if len(cfg.TrackedCoordinates) != 2 || cfg.TrackedCoordinates[1].Key() != "13.08,80.27" {
		t.Errorf("TrackedCoordinates = %+v", cfg.TrackedCoordinates)
	}
}

func TestLoad_InvalidDurationFallsBackToDefault(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WEATHER_API_KEY", "test-key-12345")
	dir := t.TempDir()
	writeEnvFile(t, dir, minimalEnvYAML+`
cache:
  ttl: "ten minutes"
`)

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want default 10m", cfg.CacheTTL)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{"zero api timeout", "\nweather_api:\n  timeout: \"0s\"\n", "weather_api.timeout"},
		{"unknown backend", "\ncache:\n  backend: redis\n", "cache.backend"},
		{"max days too high", "\nnarration:\n  max_days: 6\n", "max_days"},
		{"max days negative", "\nnarration:\n  max_days: -1\n", "max_days"},
		{"bad timezone", "\nnarration:\n  timezone: Mars/Olympus\n", "narration.timezone"},
		{"bad default latitude", "\nnarration:\n  default_latitude: 91\n", "default coordinates"},
		{"bad tracked coordinate", "\nmetrics:\n  tracked_coordinates: [\"nowhere\"]\n", "tracked_coordinates"},
		{"degraded pct over 100", "\nhealth:\n  degraded_error_pct: 150\n", "degraded_error_pct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv("WEATHER_API_KEY", "test-key-12345")
			dir := t.TempDir()
			base := "server:\n  port: \"8080\"\n"
			if !strings.Contains(tt.extra, "weather_api") {
				base += "weather_api:\n  timeout: \"5s\"\n"
			}
			writeEnvFile(t, dir, base+tt.extra)

			_, err := LoadFrom(dir)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadFrom() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_InvalidSecretsYAML(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeEnvFile(t, dir, minimalEnvYAML)
	writeSecretsFile(t, dir, "weather_api_key: [unclosed\n")

	if _, err := LoadFrom(dir); err == nil || !strings.Contains(err.Error(), "parse secrets file") {
		t.Errorf("LoadFrom() error = %v, want parse secrets file", err)
	}
}

func TestLoad_InvalidConfigYAML(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WEATHER_API_KEY", "test-key-12345")
	dir := t.TempDir()
	writeEnvFile(t, dir, "server: [unclosed\n")

	if _, err := LoadFrom(dir); err == nil || !strings.Contains(err.Error(), "parse config file") {
		t.Errorf("LoadFrom() error = %v, want parse config file", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WEATHER_API_KEY", "test-key-12345")
	t.Setenv("CACHE_BACKEND", "MEMCACHED")
	t.Setenv("MEMCACHED_ADDRS", "cache1:11211,cache2:11211")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("NARRATION_TIMEZONE", "UTC")
	dir := t.TempDir()
	writeEnvFile(t, dir, minimalEnvYAML)

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.CacheBackend != BackendMemcached {
		t.Errorf("CacheBackend = %q, want memcached", cfg.CacheBackend)
	}
	if cfg.MemcachedAddrs != "cache1:11211,cache2:11211" {
		t.Errorf("MemcachedAddrs = %q", cfg.MemcachedAddrs)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", cfg.Timezone)
	}
}
