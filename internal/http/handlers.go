package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/krishivani/internal/client"
	"github.com/kjstillabower/krishivani/internal/language"
	"github.com/kjstillabower/krishivani/internal/location"
	"github.com/kjstillabower/krishivani/internal/models"
	"github.com/kjstillabower/krishivani/internal/narration"
	"github.com/kjstillabower/krishivani/internal/observability"
	"github.com/kjstillabower/krishivani/internal/service"
	"github.com/kjstillabower/krishivani/internal/speech"
	"github.com/kjstillabower/krishivani/internal/traffic"
	"github.com/kjstillabower/krishivani/internal/validation"
)

// HealthConfig holds thresholds for the health handler.
type HealthConfig struct {
	DegradedWindow      time.Duration
	DegradedErrorPct    int
	DegradedMinRequests int
	// CachePing, when set, is called to check cache reachability.
	CachePing func() error
}

// Deps are the collaborators served by Handler.
type Deps struct {
	Service *service.WeatherService
	Client  client.WeatherClient
	Speech  *speech.Session
	Locator location.Provider
	Traffic *traffic.Tracker
	Health  *HealthConfig
	Logger  *zap.Logger
	MaxDays int
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	svc              *service.WeatherService
	client           client.WeatherClient
	speech           *speech.Session
	locator          location.Provider
	traffic          *traffic.Tracker
	healthConfig     *HealthConfig
	logger           *zap.Logger
	maxDays          int
	shuttingDown     atomic.Bool
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Traffic == nil {
		d.Traffic = traffic.NewTracker(0)
	}
	if d.Locator == nil {
		d.Locator = location.FailingProvider{Err: location.ErrUnavailable}
	}
	if d.MaxDays <= 0 {
		d.MaxDays = 5
	}
	return &Handler{
		svc:          d.Service,
		client:       d.Client,
		speech:       d.Speech,
		locator:      d.Locator,
		traffic:      d.Traffic,
		healthConfig: d.Health,
		logger:       d.Logger,
		maxDays:      d.MaxDays,
	}
}

// SetShuttingDown marks the process as draining. Health reports shutting-down while set.
func (h *Handler) SetShuttingDown(v bool) {
	h.shuttingDown.Store(v)
}

// IsShuttingDown reports whether SetShuttingDown(true) was called.
func (h *Handler) IsShuttingDown() bool {
	return h.shuttingDown.Load()
}

// target is the coordinates and language a request asks about.
type target struct {
	coords models.Coordinates
	lang   string
}

// parseTarget reads lat, lon and lang query parameters. Missing lat/lon asks the location provider.
func (h *Handler) parseTarget(w http.ResponseWriter, r *http.Request) (target, bool) {
	q := r.URL.Query()
	coords, ok, err := validation.ParseCoordinates(q.Get("lat"), q.Get("lon"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", err.Error())
		return target{}, false
	}
	lang := q.Get("lang")
	if lang != "" {
		if err := validation.ValidateLanguageCode(lang); err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_LANGUAGE", err.Error())
			return target{}, false
		}
	}
	coords, err = location.Resolve(r.Context(), h.locator, coords, ok)
	if err != nil {
		writeLocationError(w, r, err)
		return target{}, false
	}
	return target{coords: coords, lang: lang}, true
}

// GetWeather handles GET /weather.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	t, ok := h.parseTarget(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Report(r.Context(), t.coords, t.lang)
	if err != nil {
		h.traffic.RecordError()
		writeServiceError(w, r, err, h.svc.NoData(narration.KindCurrent, t.lang).Text)
		return
	}
	h.traffic.RecordSuccess()
	writeJSON(w, http.StatusOK, report)
}

// GetNarration returns the handler for GET /narration/{kind}. KindDay reads the day index
// from the {index} path variable.
func (h *Handler) GetNarration(kind narration.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dayIndex := 0
		if kind == narration.KindDay {
			n, err := validation.ParseDayIndex(mux.Vars(r)["index"], h.maxDays)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "INVALID_DAY", err.Error())
				return
			}
			dayIndex = n
		}
		t, ok := h.parseTarget(w, r)
		if !ok {
			return
		}
		n, err := h.svc.Narrate(r.Context(), kind, t.coords, dayIndex, t.lang)
		if err != nil {
			h.traffic.RecordError()
			writeServiceError(w, r, err, n.Text)
			return
		}
		h.traffic.RecordSuccess()
		writeJSON(w, http.StatusOK, n)
	}
}

type languagesResponse struct {
	Languages []language.SupportedLanguage `json:"languages"`
	Default   language.SupportedLanguage   `json:"default"`
}

// GetLanguages handles GET /languages.
func (h *Handler) GetLanguages(w http.ResponseWriter, r *http.Request) {
	langs, def := h.svc.Languages()
	writeJSON(w, http.StatusOK, languagesResponse{Languages: langs, Default: def})
}

type speakRequest struct {
	Kind string   `json:"kind"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	Lang string   `json:"lang"`
	Day  int      `json:"day"`
}

type speakResponse struct {
	UtteranceID string        `json:"utteranceId"`
	Language    string        `json:"language"`
	Locale      string        `json:"locale"`
	Text        string        `json:"text"`
	NoData      bool          `json:"noData,omitempty"`
	Stale       bool          `json:"stale,omitempty"`
	Status      speech.Status `json:"status"`
}

// PostSpeak handles POST /speak. The narration replaces whatever the session is playing.
// When no dataset can be obtained the localized no-data message is spoken instead.
func (h *Handler) PostSpeak(w http.ResponseWriter, r *http.Request) {
	var body speakRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	kind, ok := narration.ParseKind(body.Kind)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "INVALID_KIND", "kind must be current, forecast or day")
		return
	}
	if kind == narration.KindDay && (body.Day < 0 || body.Day >= h.maxDays) {
		writeError(w, r, http.StatusBadRequest, "INVALID_DAY", validation.ErrDayIndex.Error())
		return
	}
	if body.Lang != "" {
		if err := validation.ValidateLanguageCode(body.Lang); err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_LANGUAGE", err.Error())
			return
		}
	}

	var explicit models.Coordinates
	hasCoords := body.Lat != nil || body.Lon != nil
	if hasCoords {
		if body.Lat == nil || body.Lon == nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", validation.ErrCoordinatePartial.Error())
			return
		}
		explicit = models.Coordinates{Latitude: *body.Lat, Longitude: *body.Lon}
		if err := validation.ValidateCoordinates(explicit); err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", err.Error())
			return
		}
	}
	coords, err := location.Resolve(r.Context(), h.locator, explicit, hasCoords)
	if err != nil {
		writeLocationError(w, r, err)
		return
	}

	n, err := h.svc.Narrate(r.Context(), kind, coords, body.Day, body.Lang)
	noData := err != nil
	if noData {
		h.traffic.RecordError()
	} else {
		h.traffic.RecordSuccess()
	}

	lang := h.svc.ResolveLanguage(n.Language)
	id, err := h.speech.Speak(r.Context(), n.Text, lang.Locale)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Warn("speak failed", zap.Error(err))
		if errors.Is(err, speech.ErrNotReady) {
			writeError(w, r, http.StatusServiceUnavailable, "SPEECH_NOT_READY", "speech engine is not ready")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "SPEECH_FAILED", "speech playback failed")
		return
	}
	writeJSON(w, http.StatusAccepted, speakResponse{
		UtteranceID: id,
		Language:    lang.Code,
		Locale:      lang.Locale,
		Text:        n.Text,
		NoData:      noData,
		Stale:       n.Stale,
		Status:      h.speech.Status(),
	})
}

// PostStopSpeech handles POST /speak/stop.
func (h *Handler) PostStopSpeech(w http.ResponseWriter, r *http.Request) {
	if err := h.speech.Stop(); err != nil {
		writeError(w, r, http.StatusInternalServerError, "SPEECH_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.speech.Status())
}

// GetSpeechStatus handles GET /speak/status.
func (h *Handler) GetSpeechStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.speech.Status())
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus(r.Context())

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := map[string]string{"weatherApi": "healthy"}
	if result.status == "degraded" {
		checks["weatherApi"] = "unhealthy"
	}
	if h.healthConfig != nil && h.healthConfig.CachePing != nil {
		if h.healthConfig.CachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
		}
	}
	if h.speech != nil {
		checks["speech"] = h.speech.State().String()
	}
	writeJSON(w, result.statusCode, map[string]interface{}{
		"status":    result.status,
		"service":   "krishivani",
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// computeHealthStatus evaluates, in order: shutting-down > API key invalid > error rate
// breach > healthy.
func (h *Handler) computeHealthStatus(ctx context.Context) healthResult {
	if h.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if err := h.client.ValidateAPIKey(ctx); err != nil {
		return healthResult{"degraded", http.StatusServiceUnavailable, "api_key_invalid"}
	}
	if cfg := h.healthConfig; cfg != nil && cfg.DegradedWindow > 0 && cfg.DegradedErrorPct > 0 {
		if h.traffic.Degraded(cfg.DegradedWindow, cfg.DegradedErrorPct, cfg.DegradedMinRequests) {
			return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeJSON writes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the standard error envelope with code, message and the request correlation ID.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": observability.CorrelationIDFromContext(r.Context()),
		},
	})
}

// writeServiceError writes a 503 for upstream failures carrying the localized no-data message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	observability.LoggerFromContext(r.Context()).Debug("upstream error",
		zap.Error(err),
		zap.String("category", string(client.CategorizeError(err))),
	)
	code := "UPSTREAM_UNAVAILABLE"
	if errors.Is(err, context.DeadlineExceeded) {
		code = "UPSTREAM_TIMEOUT"
	}
	writeError(w, r, http.StatusServiceUnavailable, code, message)
}

// writeLocationError maps location failures to HTTP statuses.
func writeLocationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, location.ErrPermissionDenied):
		writeError(w, r, http.StatusForbidden, "LOCATION_PERMISSION_DENIED", "location permission denied; pass lat and lon")
	case errors.Is(err, location.ErrTimeout):
		writeError(w, r, http.StatusGatewayTimeout, "LOCATION_TIMEOUT", "location lookup timed out")
	default:
		writeError(w, r, http.StatusServiceUnavailable, "LOCATION_UNAVAILABLE", "location unavailable; pass lat and lon")
	}
}
