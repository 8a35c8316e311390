package models

import (
	"strings"
	"time"
)

// Condition is the primary weather condition code reported by the provider.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionSnow         Condition = "Snow"
	ConditionMist         Condition = "Mist"
	ConditionFog          Condition = "Fog"
	ConditionHaze         Condition = "Haze"
	ConditionDust         Condition = "Dust"
	ConditionSand         Condition = "Sand"
	ConditionAsh          Condition = "Ash"
	ConditionSquall       Condition = "Squall"
	ConditionTornado      Condition = "Tornado"
	ConditionOther        Condition = "Other"
)

var knownConditions = map[string]Condition{
	"clear":        ConditionClear,
	"clouds":       ConditionClouds,
	"rain":         ConditionRain,
	"drizzle":      ConditionDrizzle,
	"thunderstorm": ConditionThunderstorm,
	"snow":         ConditionSnow,
	"mist":         ConditionMist,
	"fog":          ConditionFog,
	"haze":         ConditionHaze,
	"dust":         ConditionDust,
	"sand":         ConditionSand,
	"ash":          ConditionAsh,
	"squall":       ConditionSquall,
	"tornado":      ConditionTornado,
}

// ParseCondition maps a provider "main" string to a Condition, case-insensitively.
// Unrecognized values map to ConditionOther.
func ParseCondition(s string) Condition {
	if c, ok := knownConditions[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c
	}
	return ConditionOther
}

// IsRainy reports whether the condition code text contains "rain".
func (c Condition) IsRainy() bool {
	return strings.Contains(strings.ToLower(string(c)), "rain")
}

// ForecastSample is one 3-hour forecast point.
type ForecastSample struct {
	Timestamp         int64     `json:"timestamp"` // epoch seconds
	Temperature       float64   `json:"temperature"`
	FeelsLike         float64   `json:"feelsLike"`
	Humidity          int       `json:"humidity"`
	WindSpeed         float64   `json:"windSpeed"`
	Condition         Condition `json:"condition"`
	Description       string    `json:"description"`
	PrecipProbability float64   `json:"precipProbability"` // 0.0-1.0, 0 when the provider omits it
}

// Time returns the sample timestamp in the given location.
func (s ForecastSample) Time(loc *time.Location) time.Time {
	return time.Unix(s.Timestamp, 0).In(loc)
}

// CurrentConditions is the current-weather snapshot for a location.
type CurrentConditions struct {
	Location    string    `json:"location"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feelsLike"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Timestamp   int64     `json:"timestamp"`
}

// WeatherDataset is current conditions plus the chronological forecast samples.
type WeatherDataset struct {
	Current   CurrentConditions `json:"current"`
	Forecast  []ForecastSample  `json:"forecast"`
	FetchedAt time.Time         `json:"fetchedAt"`
	Stale     bool              `json:"stale,omitempty"` // Indicates data served from stale cache
}

// DailySummary reduces one calendar day of forecast samples.
type DailySummary struct {
	Date              time.Time `json:"date"`
	MinTemperature    float64   `json:"minTemperature"`
	MaxTemperature    float64   `json:"maxTemperature"`
	AvgTemperature    float64   `json:"avgTemperature"`
	Condition         Condition `json:"condition"`
	Description       string    `json:"description"`
	Humidity          int       `json:"humidity"`
	WindSpeed         float64   `json:"windSpeed"`
	PrecipProbability float64   `json:"precipProbability"`
}
