package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/krishivani/internal/advisory"
	"github.com/kjstillabower/krishivani/internal/forecast"
	"github.com/kjstillabower/krishivani/internal/language"
	"github.com/kjstillabower/krishivani/internal/models"
	"github.com/kjstillabower/krishivani/internal/narration"
	"github.com/kjstillabower/krishivani/internal/observability"
)

// Report is the full farm-weather view of one dataset in one language.
type Report struct {
	Language  language.SupportedLanguage `json:"language"`
	Current   models.CurrentConditions   `json:"current"`
	Daily     []models.DailySummary      `json:"daily"`
	Advice    []string                   `json:"advice"`
	Alert     *advisory.Alert            `json:"alert,omitempty"`
	FetchedAt time.Time                  `json:"fetchedAt"`
	Stale     bool                       `json:"stale,omitempty"`
}

// Narration is spoken text for one narration kind.
type Narration struct {
	Kind     narration.Kind `json:"kind"`
	Language string         `json:"language"`
	Text     string         `json:"text"`
	Stale    bool           `json:"stale,omitempty"`
}

// Reporter turns datasets into reports and narration. It is stateless apart from its
// collaborators and safe for concurrent use.
type Reporter struct {
	advisor  *advisory.Engine
	composer *narration.Composer
	catalog  *language.Catalog
	loc      *time.Location
	maxDays  int
}

// NewReporter builds a Reporter. Daily summaries are grouped by calendar date in loc
// and limited to maxDays.
func NewReporter(advisor *advisory.Engine, composer *narration.Composer, catalog *language.Catalog, loc *time.Location, maxDays int) *Reporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Reporter{
		advisor:  advisor,
		composer: composer,
		catalog:  catalog,
		loc:      loc,
		maxDays:  maxDays,
	}
}

// Catalog returns the language catalog used to resolve requested codes.
func (r *Reporter) Catalog() *language.Catalog {
	return r.catalog
}

// Build assembles the report for d in the language resolved from lang.
func (r *Reporter) Build(d models.WeatherDataset, lang string) Report {
	rep := Report{
		Language:  r.catalog.Resolve(lang),
		Current:   d.Current,
		Daily:     forecast.Aggregate(d.Forecast, r.maxDays, r.loc),
		Advice:    r.advisor.FarmingAdvice(d),
		FetchedAt: d.FetchedAt,
		Stale:     d.Stale,
	}
	if alert, ok := r.advisor.WeatherAlert(d); ok {
		rep.Alert = &alert
		observability.RecordAlert(string(alert.Kind))
	}
	return rep
}

// Narrate renders kind for d in the language resolved from lang.
func (r *Reporter) Narrate(kind narration.Kind, d models.WeatherDataset, dayIndex int, lang string) Narration {
	code := r.catalog.Resolve(lang).Code
	observability.RecordNarration(string(kind), code)
	return Narration{
		Kind:     kind,
		Language: code,
		Text:     r.composer.Compose(kind, d, dayIndex, code),
		Stale:    d.Stale,
	}
}

// NoData is the localized narration used when no dataset is available.
func (r *Reporter) NoData(kind narration.Kind, lang string) Narration {
	code := r.catalog.Resolve(lang).Code
	return Narration{Kind: kind, Language: code, Text: r.composer.NoData(kind, code)}
}

// Report fetches the dataset for coords and builds its report.
func (s *WeatherService) Report(ctx context.Context, coords models.Coordinates, lang string) (Report, error) {
	d, err := s.GetDataset(ctx, coords)
	if err != nil {
		return Report{}, err
	}
	return s.reports.Build(d, lang), nil
}

// Narrate fetches the dataset for coords and renders kind. When the dataset cannot be
// obtained it returns the localized no-data narration together with the error.
func (s *WeatherService) Narrate(ctx context.Context, kind narration.Kind, coords models.Coordinates, dayIndex int, lang string) (Narration, error) {
	d, err := s.GetDataset(ctx, coords)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("narration without data",
			zap.String("kind", string(kind)),
			zap.String("location", coords.Key()),
			zap.Error(err),
		)
		return s.reports.NoData(kind, lang), err
	}
	return s.reports.Narrate(kind, d, dayIndex, lang), nil
}

// Languages returns the available speech languages and the default.
func (s *WeatherService) Languages() ([]language.SupportedLanguage, language.SupportedLanguage) {
	c := s.reports.Catalog()
	return c.Languages(), c.Default()
}

// ResolveLanguage maps a requested language code to a catalog entry, falling back to the default.
func (s *WeatherService) ResolveLanguage(lang string) language.SupportedLanguage {
	return s.reports.Catalog().Resolve(lang)
}

// NoData returns the localized narration used when no dataset can be obtained.
func (s *WeatherService) NoData(kind narration.Kind, lang string) Narration {
	return s.reports.NoData(kind, lang)
}
