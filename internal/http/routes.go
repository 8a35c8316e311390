package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/krishivani/internal/narration"
	"github.com/kjstillabower/krishivani/internal/observability"
)

// RouterConfig holds the router-level limits.
type RouterConfig struct {
	// Limiter guards the data and speech routes; nil disables rate limiting.
	Limiter *rate.Limiter
	// RequestTimeout bounds requests that may reach the upstream. Zero disables it.
	RequestTimeout time.Duration
}

// NewRouter registers every route. /health and /metrics bypass the rate limiter and
// request timeout.
func NewRouter(h *Handler, logger *zap.Logger, cfg RouterConfig) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(RateLimitMiddleware(cfg.Limiter, h.traffic))
	if cfg.RequestTimeout > 0 {
		api.Use(TimeoutMiddleware(cfg.RequestTimeout))
	}
	api.HandleFunc("/weather", h.GetWeather).Methods(http.MethodGet)
	api.HandleFunc("/narration/current", h.GetNarration(narration.KindCurrent)).Methods(http.MethodGet)
	api.HandleFunc("/narration/forecast", h.GetNarration(narration.KindForecast)).Methods(http.MethodGet)
	api.HandleFunc("/narration/day/{index}", h.GetNarration(narration.KindDay)).Methods(http.MethodGet)
	api.HandleFunc("/languages", h.GetLanguages).Methods(http.MethodGet)
	api.HandleFunc("/speak", h.PostSpeak).Methods(http.MethodPost)
	api.HandleFunc("/speak/stop", h.PostStopSpeech).Methods(http.MethodPost)
	api.HandleFunc("/speak/status", h.GetSpeechStatus).Methods(http.MethodGet)
	return router
}
