package observability

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// OpenWeatherMap API call rate per endpoint (weather, forecast). Watch for: error vs success ratio.
	WeatherAPICallsTotal *prometheus.CounterVec

	// External API latency per request. Watch for: p95 > 2s (upstream degradation).
	WeatherAPIDuration *prometheus.HistogramVec

	// Retry attempts for dataset fetches. Watch for: high retries = unstable upstream.
	WeatherAPIRetriesTotal prometheus.Counter

	// Failed dataset fetches by error category.
	WeatherAPIErrorsTotal *prometheus.CounterVec

	// Cache hits by backend.
	CacheHitsTotal *prometheus.CounterVec

	// Cache get/set failures. Watch for: backend outages (memcached, sqlite).
	CacheErrorsTotal *prometheus.CounterVec

	// Cache operation latency.
	CacheOperationDurationSeconds *prometheus.HistogramVec

	// Datasets served from stale cache after upstream failure.
	StaleCacheServesTotal prometheus.Counter

	// Requests that joined an in-flight upstream fetch instead of starting one.
	RequestCoalescingHitsTotal prometheus.Counter

	// Cache misses that overlapped another miss for the same key. Watch for: hot keys
	// expiring together (tune ttl or warming).
	CacheStampedeDetectedTotal prometheus.Counter

	// Cache warming runs, their latency and failures.
	CacheWarmingTotal           prometheus.Counter
	CacheWarmingDurationSeconds prometheus.Histogram
	CacheWarmingErrorsTotal     prometheus.Counter

	// Total dataset lookups. Watch for: traffic volume, rate() for QPS.
	DatasetQueriesTotal prometheus.Counter

	// Per-coordinate query count (allow-list; others go to "other").
	DatasetQueriesByLocationTotal *prometheus.CounterVec

	// Narrations rendered by kind and language.
	NarrationsTotal *prometheus.CounterVec

	// Weather alerts issued by kind.
	AlertsIssuedTotal *prometheus.CounterVec

	// Utterances handed to the speech engine by outcome.
	SpeechUtterancesTotal *prometheus.CounterVec

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter

	// Circuit breaker state per component (0 closed, 1 open, 2 half_open).
	CircuitBreakerState *prometheus.GaugeVec

	// Circuit breaker transitions per component.
	CircuitBreakerTransitionsTotal *prometheus.CounterVec

	// trackedLocations is built from config; used to resolve coordinate keys for metrics.
	trackedLocationsMu sync.RWMutex
	trackedLocations   map[string]struct{}
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of OpenWeatherMap API calls",
		},
		[]string{"endpoint", "status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "OpenWeatherMap API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "status"},
	)
	WeatherAPIRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherApiRetriesTotal",
			Help: "Total number of retry attempts for dataset fetches",
		},
	)
	WeatherAPIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiErrorsTotal",
			Help: "Failed dataset fetches by error category",
		},
		[]string{"category"},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of dataset cache hits",
		},
		[]string{"cacheType"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Cache operation failures",
		},
		[]string{"operation", "category"},
	)
	CacheOperationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cacheOperationDurationSeconds",
			Help:    "Cache operation latency in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"operation", "result"},
	)
	StaleCacheServesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "staleCacheServesTotal",
			Help: "Datasets served from stale cache after upstream failure",
		},
	)
	RequestCoalescingHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "requestCoalescingHitsTotal",
			Help: "Requests that waited on an in-flight upstream fetch",
		},
	)
	CacheWarmingTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheWarmingTotal",
			Help: "Cache warming runs",
		},
	)
	CacheWarmingDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cacheWarmingDurationSeconds",
			Help:    "Cache warming run latency in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30},
		},
	)
	CacheWarmingErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheWarmingErrorsTotal",
			Help: "Cache warming runs with at least one failed coordinate",
		},
	)
	CacheStampedeDetectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheStampedeDetectedTotal",
			Help: "Cache misses that overlapped another in-progress miss for the same key",
		},
	)
	DatasetQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "datasetQueriesTotal",
			Help: "Total number of weather dataset lookups",
		},
	)
	DatasetQueriesByLocationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datasetQueriesByLocationTotal",
			Help: "Dataset queries by coordinate key (allow-list; others use location=other)",
		},
		[]string{"location"},
	)
	NarrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narrationsTotal",
			Help: "Narrations rendered by kind and language",
		},
		[]string{"kind", "language"},
	)
	AlertsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertsIssuedTotal",
			Help: "Weather alerts issued by kind",
		},
		[]string{"kind"},
	)
	SpeechUtterancesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speechUtterancesTotal",
			Help: "Utterances handed to the speech engine by result",
		},
		[]string{"result"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuitBreakerState",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half_open)",
		},
		[]string{"component"},
	)
	CircuitBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitBreakerTransitionsTotal",
			Help: "Circuit breaker state transitions",
		},
		[]string{"component", "from", "to"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		WeatherAPICallsTotal, WeatherAPIDuration, WeatherAPIRetriesTotal, WeatherAPIErrorsTotal,
		CacheHitsTotal, CacheErrorsTotal, CacheOperationDurationSeconds,
		StaleCacheServesTotal, RequestCoalescingHitsTotal, CacheStampedeDetectedTotal,
		CacheWarmingTotal, CacheWarmingDurationSeconds, CacheWarmingErrorsTotal,
		DatasetQueriesTotal, DatasetQueriesByLocationTotal,
		NarrationsTotal, AlertsIssuedTotal, SpeechUtterancesTotal,
		RateLimitDeniedTotal,
		CircuitBreakerState, CircuitBreakerTransitionsTotal,
	)
}

// SetTrackedLocations sets the allow-list of coordinate keys for location metrics.
// Non-tracked keys increment "other".
func SetTrackedLocations(keys []string) {
	trackedLocationsMu.Lock()
	defer trackedLocationsMu.Unlock()
	trackedLocations = make(map[string]struct{}, len(keys))
	for _, k := range keys {
		trackedLocations[normalizeLocationForMetrics(k)] = struct{}{}
	}
}

// MetricLocationLabel returns key when tracked, otherwise "other".
func MetricLocationLabel(key string) string {
	k := normalizeLocationForMetrics(key)
	trackedLocationsMu.RLock()
	_, ok := trackedLocations[k] // nil map read is safe in Go
	trackedLocationsMu.RUnlock()
	if ok {
		return k
	}
	return "other"
}

// RecordDatasetQuery records a dataset lookup for the given coordinate key.
func RecordDatasetQuery(key string) {
	DatasetQueriesTotal.Inc()
	DatasetQueriesByLocationTotal.WithLabelValues(MetricLocationLabel(key)).Inc()
}

// RecordNarration records a rendered narration.
func RecordNarration(kind, language string) {
	NarrationsTotal.WithLabelValues(kind, language).Inc()
}

// RecordAlert records an issued weather alert.
func RecordAlert(kind string) {
	AlertsIssuedTotal.WithLabelValues(kind).Inc()
}

// RecordCircuitBreakerTransition updates the state gauge and transition counter.
// state is the numeric value of the new state.
func RecordCircuitBreakerTransition(component, from, to string, state int) {
	CircuitBreakerTransitionsTotal.WithLabelValues(component, from, to).Inc()
	CircuitBreakerState.WithLabelValues(component).Set(float64(state))
}

func normalizeLocationForMetrics(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
