package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kjstillabower/krishivani/internal/circuitbreaker"
	"github.com/kjstillabower/krishivani/internal/models"
	"github.com/kjstillabower/krishivani/internal/observability"
)

// WeatherClient fetches a complete current+forecast dataset for a coordinate pair.
type WeatherClient interface {
	FetchDataset(ctx context.Context, coords models.Coordinates) (models.WeatherDataset, error)
	ValidateAPIKey(ctx context.Context) error
}

var (
	ErrInvalidAPIKey   = errors.New("invalid API key")
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrRateLimited     = errors.New("rate limited")
	ErrParse           = errors.New("parse response")
	ErrNetwork         = errors.New("network error")
)

const (
	endpointCurrent  = "weather"
	endpointForecast = "forecast"
)

// validationCoords is used by ValidateAPIKey; any valid coordinate works.
var validationCoords = models.Coordinates{Latitude: 17.385, Longitude: 78.4867}

type OpenWeatherClient struct {
	apiKey         string
	baseURL        string
	timeout        time.Duration
	client         *http.Client
	retryAttempts  int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	breaker        *circuitbreaker.CircuitBreaker
	limiter        *rate.Limiter
	now            func() time.Time
}

// NewOpenWeatherClient returns a client with default retry settings. baseURL is the API root
// (e.g. https://api.openweathermap.org/data/2.5); endpoint paths are appended to it.
func NewOpenWeatherClient(apiKey, baseURL string, timeout time.Duration) (*OpenWeatherClient, error) {
	return NewOpenWeatherClientWithRetry(apiKey, baseURL, timeout, 3, 100*time.Millisecond, 2*time.Second)
}

func NewOpenWeatherClientWithRetry(apiKey, baseURL string, timeout time.Duration, retryAttempts int, retryBaseDelay, retryMaxDelay time.Duration) (*OpenWeatherClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(apiKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}
	if retryAttempts <= 0 {
		retryAttempts = 1
	}

	return &OpenWeatherClient{
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		timeout:        timeout,
		retryAttempts:  retryAttempts,
		retryBaseDelay: retryBaseDelay,
		retryMaxDelay:  retryMaxDelay,
		client: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}, nil
}

// SetCircuitBreaker guards FetchDataset with cb. A whole dataset fetch, retries included,
// counts as one call.
func (c *OpenWeatherClient) SetCircuitBreaker(cb *circuitbreaker.CircuitBreaker) {
	c.breaker = cb
}

// SetRateLimiter throttles outgoing HTTP calls to stay within the provider's quota.
func (c *OpenWeatherClient) SetRateLimiter(l *rate.Limiter) {
	c.limiter = l
}

type conditionPayload struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type mainPayload struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
}

type windPayload struct {
	Speed float64 `json:"speed"`
}

type currentResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []conditionPayload `json:"weather"`
	Main    mainPayload        `json:"main"`
	Wind    windPayload        `json:"wind"`
	Dt      int64              `json:"dt"`
	Name    string             `json:"name"`
}

type forecastResponse struct {
	List []struct {
		Dt      int64              `json:"dt"`
		Main    mainPayload        `json:"main"`
		Weather []conditionPayload `json:"weather"`
		Wind    windPayload        `json:"wind"`
		Pop     *float64           `json:"pop"`
	} `json:"list"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
}

// FetchDataset fetches current conditions and the 5-day forecast. Either both succeed or
// the whole fetch fails; a partial dataset is never returned.
func (c *OpenWeatherClient) FetchDataset(ctx context.Context, coords models.Coordinates) (models.WeatherDataset, error) {
	var ds models.WeatherDataset
	call := func() error {
		var err error
		ds, err = c.fetchWithRetry(ctx, coords)
		return err
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Call(ctx, call)
	} else {
		err = call()
	}
	if err != nil {
		observability.WeatherAPIErrorsTotal.WithLabelValues(string(CategorizeError(err))).Inc()
		return models.WeatherDataset{}, err
	}
	return ds, nil
}

func (c *OpenWeatherClient) fetchWithRetry(ctx context.Context, coords models.Coordinates) (models.WeatherDataset, error) {
	var lastErr error

	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			observability.WeatherAPIRetriesTotal.Inc()
			delay := c.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return models.WeatherDataset{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		ds, err := c.fetchOnce(ctx, coords)
		if err == nil {
			return ds, nil
		}

		lastErr = err
		if ctx.Err() != nil || !c.isRetryable(err) {
			return models.WeatherDataset{}, err
		}
	}

	return models.WeatherDataset{}, fmt.Errorf("exhausted retries: %w", lastErr)
}

// fetchOnce runs both requests concurrently. The first failure cancels its sibling.
func (c *OpenWeatherClient) fetchOnce(ctx context.Context, coords models.Coordinates) (models.WeatherDataset, error) {
	joinCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg            sync.WaitGroup
		cur           currentResponse
		fc            forecastResponse
		curErr, fcErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		if curErr = c.callAPI(joinCtx, endpointCurrent, coords, &cur); curErr != nil {
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		if fcErr = c.callAPI(joinCtx, endpointForecast, coords, &fc); fcErr != nil {
			cancel()
		}
	}()
	wg.Wait()

	if err := rootCause(curErr, fcErr); err != nil {
		return models.WeatherDataset{}, err
	}
	if len(fc.List) == 0 {
		return models.WeatherDataset{}, fmt.Errorf("%w: forecast has no samples", ErrParse)
	}
	return c.mapDataset(cur, fc, coords), nil
}

// rootCause prefers the error that triggered cancellation over the sibling's context.Canceled.
func rootCause(errs ...error) error {
	var fallback error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, context.Canceled) {
			return err
		}
		if fallback == nil {
			fallback = err
		}
	}
	return fallback
}

func (c *OpenWeatherClient) callAPI(ctx context.Context, endpoint string, coords models.Coordinates, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("upstream limiter: %w", err)
		}
	}

	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, endpoint, coords)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("build request: %w", err)
	}

	if corrID := observability.CorrelationIDFromContext(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.WeatherAPICallsTotal.WithLabelValues(endpoint, "error").Inc()
		observability.WeatherAPIDuration.WithLabelValues(endpoint, "error").Observe(duration)

		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s request cancelled: %w", endpoint, err)
		}
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return fmt.Errorf("%s request timeout: %w", endpoint, context.DeadlineExceeded)
		}
		return fmt.Errorf("%w: %s request: %v", ErrNetwork, endpoint, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(endpoint, status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(endpoint, status).Observe(duration)

	if err := c.handleErrorResponse(resp); err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read body: %v", ErrNetwork, endpoint, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, endpoint, err)
	}
	return nil
}

func (c *OpenWeatherClient) isRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrUpstreamFailure),
		errors.Is(err, ErrNetwork),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}

func (c *OpenWeatherClient) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.retryBaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.retryMaxDelay) {
		delay = float64(c.retryMaxDelay)
	}

	jitter := delay * 0.1 * rand.Float64()
	return time.Duration(delay + jitter)
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, endpoint string, coords models.Coordinates) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + "/" + endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *OpenWeatherClient) handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: HTTP 401", ErrInvalidAPIKey)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}

func (c *OpenWeatherClient) mapDataset(cur currentResponse, fc forecastResponse, coords models.Coordinates) models.WeatherDataset {
	name := cur.Name
	if name == "" {
		name = fc.City.Name
	}
	if name == "" {
		name = coords.Key()
	}

	lat, lon := cur.Coord.Lat, cur.Coord.Lon
	if lat == 0 && lon == 0 {
		lat, lon = coords.Latitude, coords.Longitude
	}

	cond, desc := mapCondition(cur.Weather)
	ds := models.WeatherDataset{
		Current: models.CurrentConditions{
			Location:    name,
			Latitude:    lat,
			Longitude:   lon,
			Temperature: cur.Main.Temp,
			FeelsLike:   cur.Main.FeelsLike,
			Humidity:    cur.Main.Humidity,
			WindSpeed:   cur.Wind.Speed,
			Condition:   cond,
			Description: desc,
			Timestamp:   cur.Dt,
		},
		Forecast:  make([]models.ForecastSample, 0, len(fc.List)),
		FetchedAt: c.now(),
	}

	for _, item := range fc.List {
		cond, desc := mapCondition(item.Weather)
		pop := 0.0
		if item.Pop != nil {
			pop = *item.Pop
		}
		ds.Forecast = append(ds.Forecast, models.ForecastSample{
			Timestamp:         item.Dt,
			Temperature:       item.Main.Temp,
			FeelsLike:         item.Main.FeelsLike,
			Humidity:          item.Main.Humidity,
			WindSpeed:         item.Wind.Speed,
			Condition:         cond,
			Description:       desc,
			PrecipProbability: pop,
		})
	}
	return ds
}

// mapCondition takes the primary (first) condition. A missing entry is treated as clear.
func mapCondition(w []conditionPayload) (models.Condition, string) {
	if len(w) == 0 {
		return models.ConditionClear, ""
	}
	return models.ParseCondition(w[0].Main), w[0].Description
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}

// ValidateAPIKey makes one current-weather call and reports whether the key is accepted.
func (c *OpenWeatherClient) ValidateAPIKey(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := c.buildRequest(ctx, endpointCurrent, validationCoords)
	if err != nil {
		return fmt.Errorf("build validation request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: validation request: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: API key is invalid or not activated", ErrInvalidAPIKey)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: validation failed: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}
