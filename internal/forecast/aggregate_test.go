package forecast

import (
	"reflect"
	"testing"
	"time"

	"github.com/kjstillabower/krishivani/internal/models"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// base is 2024-06-10 00:00 IST.
var base = time.Date(2024, 6, 10, 0, 0, 0, 0, ist)

func sampleAt(offset time.Duration, temp float64, cond models.Condition) models.ForecastSample {
	return models.ForecastSample{
		Timestamp:   base.Add(offset).Unix(),
		Temperature: temp,
		Humidity:    50,
		WindSpeed:   2,
		Condition:   cond,
		Description: string(cond) + " sky",
	}
}

// threeHourly builds n consecutive 3-hour samples starting at base.
func threeHourly(n int) []models.ForecastSample {
	out := make([]models.ForecastSample, n)
	for i := range out {
		out[i] = sampleAt(time.Duration(i)*3*time.Hour, 20+float64(i%8), models.ConditionClear)
	}
	return out
}

// TestAggregate_Empty verifies that empty input yields empty output.
func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, 5, ist)
	if len(got) != 0 {
		t.Errorf("Aggregate(nil) len = %d, want 0", len(got))
	}
}

// TestAggregate_GroupsByDateInLocation verifies that grouping follows the injected time zone.
func TestAggregate_GroupsByDateInLocation(t *testing.T) {
	// 22:00 and 23:00 IST on the 10th are 16:30 and 17:30 UTC; 01:00 IST on the 11th is 19:30 UTC on the 10th.
	samples := []models.ForecastSample{
		sampleAt(22*time.Hour, 20, models.ConditionClear),
		sampleAt(23*time.Hour, 21, models.ConditionClear),
		sampleAt(25*time.Hour, 22, models.ConditionClear),
	}

	if got := Aggregate(samples, 5, ist); len(got) != 2 {
		t.Errorf("Aggregate(IST) len = %d, want 2", len(got))
	}
	if got := Aggregate(samples, 5, time.UTC); len(got) != 1 {
		t.Errorf("Aggregate(UTC) len = %d, want 1", len(got))
	}
}

// TestAggregate_PreservesFirstSeenOrder verifies that dates are not re-sorted.
func TestAggregate_PreservesFirstSeenOrder(t *testing.T) {
	samples := []models.ForecastSample{
		sampleAt(48*time.Hour, 30, models.ConditionClear),
		sampleAt(0, 20, models.ConditionClear),
		sampleAt(51*time.Hour, 31, models.ConditionClear),
	}
	got := Aggregate(samples, 5, ist)
	if len(got) != 2 {
		t.Fatalf("Aggregate() len = %d, want 2", len(got))
	}
	if got[0].Date.Day() != 12 || got[1].Date.Day() != 10 {
		t.Errorf("Aggregate() days = %d,%d, want 12,10", got[0].Date.Day(), got[1].Date.Day())
	}
	if got[0].MaxTemperature != 31 {
		t.Errorf("Aggregate()[0].MaxTemperature = %v, want 31", got[0].MaxTemperature)
	}
}

// TestAggregate_TruncatesToMaxDays verifies the day limit and the default.
func TestAggregate_TruncatesToMaxDays(t *testing.T) {
	samples := threeHourly(8 * 7)
	tests := []struct {
		name    string
		maxDays int
		want    int
	}{
		{"explicit", 3, 3},
		{"default", 0, DefaultMaxDays},
		{"more than available", 10, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(samples, tt.maxDays, ist); len(got) != tt.want {
				t.Errorf("Aggregate(maxDays=%d) len = %d, want %d", tt.maxDays, len(got), tt.want)
			}
		})
	}
}

// TestAggregate_Reduction verifies the per-day statistics.
func TestAggregate_Reduction(t *testing.T) {
	samples := []models.ForecastSample{
		{Timestamp: base.Unix(), Temperature: 20, Humidity: 40, WindSpeed: 2, Condition: models.ConditionClouds, Description: "few clouds", PrecipProbability: 0.1},
		{Timestamp: base.Add(3 * time.Hour).Unix(), Temperature: 30, Humidity: 61, WindSpeed: 4, Condition: models.ConditionRain, Description: "light rain", PrecipProbability: 0.6},
		{Timestamp: base.Add(6 * time.Hour).Unix(), Temperature: 25, Humidity: 50, WindSpeed: 6, Condition: models.ConditionRain, Description: "moderate rain"},
	}
	got := Aggregate(samples, 5, ist)
	if len(got) != 1 {
		t.Fatalf("Aggregate() len = %d, want 1", len(got))
	}
	d := got[0]
	if d.MinTemperature != 20 || d.MaxTemperature != 30 || d.AvgTemperature != 25 {
		t.Errorf("temps = %v/%v/%v, want 20/30/25", d.MinTemperature, d.MaxTemperature, d.AvgTemperature)
	}
	if d.Condition != models.ConditionRain {
		t.Errorf("Condition = %v, want Rain", d.Condition)
	}
	if d.Description != "light rain" {
		t.Errorf("Description = %q, want %q", d.Description, "light rain")
	}
	if d.Humidity != 50 {
		t.Errorf("Humidity = %d, want 50", d.Humidity)
	}
	if d.WindSpeed != 4 {
		t.Errorf("WindSpeed = %v, want 4", d.WindSpeed)
	}
	if d.PrecipProbability != 0.6 {
		t.Errorf("PrecipProbability = %v, want 0.6", d.PrecipProbability)
	}
	if !d.Date.Equal(base) {
		t.Errorf("Date = %v, want %v", d.Date, base)
	}
}

// TestAggregate_SingleSample verifies that one sample yields equal min, max and avg.
func TestAggregate_SingleSample(t *testing.T) {
	got := Aggregate([]models.ForecastSample{sampleAt(0, 23.4, models.ConditionMist)}, 5, ist)
	if len(got) != 1 {
		t.Fatalf("Aggregate() len = %d, want 1", len(got))
	}
	d := got[0]
	if d.MinTemperature != 23.4 || d.MaxTemperature != 23.4 || d.AvgTemperature != 23.4 {
		t.Errorf("temps = %v/%v/%v, want all 23.4", d.MinTemperature, d.MaxTemperature, d.AvgTemperature)
	}
	if d.PrecipProbability != 0 {
		t.Errorf("PrecipProbability = %v, want 0", d.PrecipProbability)
	}
}

// TestAggregate_Invariants checks min <= avg <= max, the length bound and idempotence.
func TestAggregate_Invariants(t *testing.T) {
	samples := threeHourly(40)
	for i := range samples {
		samples[i].Temperature = 0.1*float64(i*7%13) + 0.3
	}
	first := Aggregate(samples, 5, ist)
	second := Aggregate(samples, 5, ist)
	if !reflect.DeepEqual(first, second) {
		t.Error("Aggregate() is not idempotent")
	}
	if len(first) > 5 {
		t.Errorf("Aggregate() len = %d, want <= 5", len(first))
	}
	for i, d := range first {
		if d.MinTemperature > d.AvgTemperature || d.AvgTemperature > d.MaxTemperature {
			t.Errorf("day %d: min %v avg %v max %v out of order", i, d.MinTemperature, d.AvgTemperature, d.MaxTemperature)
		}
	}
}

// TestDominantCondition verifies frequency counting with first-seen tie-break.
func TestDominantCondition(t *testing.T) {
	tests := []struct {
		name  string
		conds []models.Condition
		want  models.Condition
	}{
		{"empty", nil, models.ConditionClear},
		{"majority", []models.Condition{models.ConditionRain, models.ConditionClouds, models.ConditionRain, models.ConditionClouds, models.ConditionRain}, models.ConditionRain},
		{"two-two tie", []models.Condition{models.ConditionRain, models.ConditionClouds, models.ConditionRain, models.ConditionClouds}, models.ConditionRain},
		{"one-one tie", []models.Condition{models.ConditionRain, models.ConditionClouds}, models.ConditionRain},
		{"later majority", []models.Condition{models.ConditionClear, models.ConditionClouds, models.ConditionClouds}, models.ConditionClouds},
		{"tie after leader", []models.Condition{models.ConditionClouds, models.ConditionRain, models.ConditionRain, models.ConditionClouds}, models.ConditionClouds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make([]models.ForecastSample, len(tt.conds))
			for i, c := range tt.conds {
				samples[i] = models.ForecastSample{Condition: c}
			}
			if got := DominantCondition(samples); got != tt.want {
				t.Errorf("DominantCondition() = %v, want %v", got, tt.want)
			}
		})
	}
}
