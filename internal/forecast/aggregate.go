package forecast

import (
	"math"
	"time"

	"github.com/kjstillabower/krishivani/internal/models"
)

// DefaultMaxDays is the number of daily summaries produced when maxDays is not positive.
const DefaultMaxDays = 5

// SamplesPerDay is the number of 3-hour samples in a 24h window.
const SamplesPerDay = 8

type dateKey struct {
	year  int
	month time.Month
	day   int
}

type dayGroup struct {
	key     dateKey
	samples []models.ForecastSample
}

// Aggregate groups samples by calendar date in loc and reduces each group into a DailySummary.
// Dates keep the order in which they are first seen; only the first maxDays groups are returned.
// A nil loc is treated as UTC.
func Aggregate(samples []models.ForecastSample, maxDays int, loc *time.Location) []models.DailySummary {
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}
	if loc == nil {
		loc = time.UTC
	}

	groups := groupByDate(samples, loc)
	if len(groups) > maxDays {
		groups = groups[:maxDays]
	}

	out := make([]models.DailySummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, summarize(g, loc))
	}
	return out
}

func groupByDate(samples []models.ForecastSample, loc *time.Location) []*dayGroup {
	var groups []*dayGroup
	index := make(map[dateKey]*dayGroup)
	for _, s := range samples {
		t := s.Time(loc)
		k := dateKey{t.Year(), t.Month(), t.Day()}
		g, ok := index[k]
		if !ok {
			g = &dayGroup{key: k}
			index[k] = g
			groups = append(groups, g)
		}
		g.samples = append(g.samples, s)
	}
	return groups
}

func summarize(g *dayGroup, loc *time.Location) models.DailySummary {
	first := g.samples[0]
	minTemp, maxTemp := first.Temperature, first.Temperature
	var sumTemp, sumWind, maxPop float64
	var sumHumidity int
	for _, s := range g.samples {
		minTemp = math.Min(minTemp, s.Temperature)
		maxTemp = math.Max(maxTemp, s.Temperature)
		sumTemp += s.Temperature
		sumWind += s.WindSpeed
		sumHumidity += s.Humidity
		if s.PrecipProbability > maxPop {
			maxPop = s.PrecipProbability
		}
	}
	n := float64(len(g.samples))
	avgTemp := sumTemp / n
	// Floating-point summation can drift a hair outside [min, max].
	avgTemp = math.Max(minTemp, math.Min(maxTemp, avgTemp))

	dominant := DominantCondition(g.samples)
	description := ""
	for _, s := range g.samples {
		if s.Condition == dominant {
			description = s.Description
			break
		}
	}

	return models.DailySummary{
		Date:              time.Date(g.key.year, g.key.month, g.key.day, 0, 0, 0, 0, loc),
		MinTemperature:    minTemp,
		MaxTemperature:    maxTemp,
		AvgTemperature:    avgTemp,
		Condition:         dominant,
		Description:       description,
		Humidity:          int(math.Round(float64(sumHumidity) / n)),
		WindSpeed:         sumWind / n,
		PrecipProbability: maxPop,
	}
}

// DominantCondition returns the most frequent condition in samples. Ties go to the
// condition seen first. Returns ConditionClear for an empty slice.
func DominantCondition(samples []models.ForecastSample) models.Condition {
	if len(samples) == 0 {
		return models.ConditionClear
	}
	counts := make(map[models.Condition]int)
	var order []models.Condition
	for _, s := range samples {
		if _, seen := counts[s.Condition]; !seen {
			order = append(order, s.Condition)
		}
		counts[s.Condition]++
	}
	best := order[0]
	for _, c := range order[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
