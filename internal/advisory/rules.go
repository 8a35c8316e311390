package advisory

import (
	"github.com/kjstillabower/krishivani/internal/forecast"
	"github.com/kjstillabower/krishivani/internal/models"
)

// Thresholds holds every numeric cutoff used by advice, alerts, and narration clauses.
// All comparisons are strict.
type Thresholds struct {
	HotAbove          float64 // °C, heat-stress tips and "very hot" clause
	ColdBelow         float64 // °C, cold-protection tips and "cold" clause
	HumidAbove        int     // %, "very humid" clause
	LowHumidityBelow  int     // %, increase-watering tip
	WindyAbove        float64 // m/s, spraying tips and "windy" clause
	HeavyRainPop      float64 // pop, rain-postponement tips
	HeatWaveAbove     float64 // °C
	ColdWaveBelow     float64 // °C
	RainAlertPop      float64 // pop
	WindAlertAbove    float64 // m/s
	RainMentionPct    int     // %, per-day "chance of rain" clause
	DayIndoorPct      int     // %, per-day indoor-work tip
	DayWateringAbove  int     // °C, per-day watering tip
	DayWateringPctMax int     // %, per-day watering tip requires rain chance below this
	DayColdBelow      int     // °C, per-day cold-protection tip
}

// Rules is the single threshold table shared by the advisory engine and the narration renderer.
var Rules = Thresholds{
	HotAbove:          35,
	ColdBelow:         10,
	HumidAbove:        80,
	LowHumidityBelow:  40,
	WindyAbove:        10,
	HeavyRainPop:      0.7,
	HeatWaveAbove:     40,
	ColdWaveBelow:     5,
	RainAlertPop:      0.8,
	WindAlertAbove:    15,
	RainMentionPct:    30,
	DayIndoorPct:      70,
	DayWateringAbove:  30,
	DayWateringPctMax: 20,
	DayColdBelow:      15,
}

// Comfort is the single conditional clause appended to current-weather narration.
type Comfort int

const (
	ComfortNone Comfort = iota
	ComfortHot
	ComfortCold
	ComfortHumid
	ComfortWindy
)

// ClassifyComfort picks the first matching clause in order hot, cold, humid, windy.
// Temperature and wind are the truncated values spoken to the listener.
func ClassifyComfort(temp, humidity, wind int) Comfort {
	switch {
	case float64(temp) > Rules.HotAbove:
		return ComfortHot
	case float64(temp) < Rules.ColdBelow:
		return ComfortCold
	case humidity > Rules.HumidAbove:
		return ComfortHumid
	case float64(wind) > Rules.WindyAbove:
		return ComfortWindy
	}
	return ComfortNone
}

// DayTip is the per-day advisory clause in forecast narration.
type DayTip int

const (
	DayTipNone DayTip = iota
	DayTipIndoorWork
	DayTipWatering
	DayTipColdProtection
)

// ClassifyDay picks the per-day tip from the spoken temperature and rain chance.
func ClassifyDay(temp, rainChance int) DayTip {
	switch {
	case rainChance > Rules.DayIndoorPct:
		return DayTipIndoorWork
	case temp > Rules.DayWateringAbove && rainChance < Rules.DayWateringPctMax:
		return DayTipWatering
	case temp < Rules.DayColdBelow:
		return DayTipColdProtection
	}
	return DayTipNone
}

// RainChance converts a probability of precipitation to the whole percent spoken aloud.
func RainChance(pop float64) int {
	return int(pop * 100)
}

// MentionsRain reports whether a rain chance warrants a "chance of rain" clause.
func MentionsRain(rainChance int) bool {
	return rainChance > Rules.RainMentionPct
}

// anyPopAbove reports whether any sample in samples[from:to] has pop above threshold.
func anyPopAbove(samples []models.ForecastSample, from, to int, threshold float64) bool {
	for _, s := range forecast.Window(samples, from, to) {
		if s.PrecipProbability > threshold {
			return true
		}
	}
	return false
}

// RainExpectedToday reports heavy rain likely within the next 24h of samples.
func RainExpectedToday(d models.WeatherDataset) bool {
	return anyPopAbove(d.Forecast, 0, forecast.SamplesPerDay, Rules.HeavyRainPop)
}

// RainExpectedTomorrow reports heavy rain likely in the following 24h window.
func RainExpectedTomorrow(d models.WeatherDataset) bool {
	return anyPopAbove(d.Forecast, forecast.SamplesPerDay, 2*forecast.SamplesPerDay, Rules.HeavyRainPop)
}
