package advisory

import (
	"time"

	"github.com/kjstillabower/krishivani/internal/forecast"
	"github.com/kjstillabower/krishivani/internal/models"
)

// MaxTips caps the farming advice list.
const MaxTips = 3

// Tip identifies one farming tip. Text is looked up per language by the caller.
type Tip string

const (
	TipHeatWatering          Tip = "heat_watering"
	TipHeatLivestock         Tip = "heat_livestock"
	TipColdCover             Tip = "cold_cover"
	TipColdFrost             Tip = "cold_frost"
	TipRainPostponeSpraying  Tip = "rain_postpone_spraying"
	TipRainIndoorWork        Tip = "rain_indoor_work"
	TipRainTomorrow          Tip = "rain_tomorrow"
	TipLowHumidity           Tip = "low_humidity"
	TipWindNoSpraying        Tip = "wind_no_spraying"
	TipWindSecure            Tip = "wind_secure"
	TipSeasonSoilPrep        Tip = "season_soil_prep"
	TipSeasonSpringSowing    Tip = "season_spring_sowing"
	TipSeasonIrrigation      Tip = "season_irrigation"
	TipSeasonMonsoonPests    Tip = "season_monsoon_pests"
	TipSeasonKharifHarvest   Tip = "season_kharif_harvest"
	TipSeasonRabiPreparation Tip = "season_rabi_preparation"
)

var tipText = map[Tip]string{
	TipHeatWatering:          "Very hot day - Water crops early morning or evening",
	TipHeatLivestock:         "Protect livestock from heat stress",
	TipColdCover:             "Cold weather - Cover sensitive crops",
	TipColdFrost:             "Protect young plants from frost",
	TipRainPostponeSpraying:  "Heavy rain expected - Postpone spraying",
	TipRainIndoorWork:        "Good day for indoor farm work",
	TipRainTomorrow:          "Rain tomorrow - Complete outdoor work today",
	TipLowHumidity:           "Low humidity - Increase watering frequency",
	TipWindNoSpraying:        "Windy conditions - Avoid pesticide spraying",
	TipWindSecure:            "Secure loose materials in farm",
	TipSeasonSoilPrep:        "Winter season - Good time for soil preparation",
	TipSeasonSpringSowing:    "Spring season - Ideal for sowing summer crops",
	TipSeasonIrrigation:      "Summer season - Focus on irrigation management",
	TipSeasonMonsoonPests:    "Monsoon season - Monitor for pests and diseases",
	TipSeasonKharifHarvest:   "Post-monsoon - Good for harvesting kharif crops",
	TipSeasonRabiPreparation: "Winter prep - Time for rabi crop sowing",
}

// seasonal is indexed by 0-based month.
var seasonal = [12]Tip{
	TipSeasonSoilPrep, TipSeasonSoilPrep,
	TipSeasonSpringSowing, TipSeasonSpringSowing,
	TipSeasonIrrigation, TipSeasonIrrigation,
	TipSeasonMonsoonPests, TipSeasonMonsoonPests, TipSeasonMonsoonPests,
	TipSeasonKharifHarvest, TipSeasonKharifHarvest,
	TipSeasonRabiPreparation,
}

// Text returns the English text for a tip.
func (t Tip) Text() string {
	return tipText[t]
}

// AlertKind classifies the single urgent weather alert.
type AlertKind string

const (
	AlertHeatWave  AlertKind = "heat_wave"
	AlertColdWave  AlertKind = "cold_wave"
	AlertHeavyRain AlertKind = "heavy_rain"
	AlertWind      AlertKind = "wind"
)

var alertText = map[AlertKind]string{
	AlertHeatWave:  "HEAT WAVE ALERT: Temperature above 40°C. Take precautions!",
	AlertColdWave:  "COLD WAVE ALERT: Temperature below 5°C. Protect crops!",
	AlertHeavyRain: "HEAVY RAIN ALERT: 80%+ chance of rain in next 24 hours!",
	AlertWind:      "WIND ALERT: Strong winds above 15 m/s. Secure farm materials!",
}

// Alert is an urgent weather warning.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

// Engine evaluates advisory rules. The clock and time zone only affect the seasonal tip.
type Engine struct {
	now func() time.Time
	loc *time.Location
}

// NewEngine returns an Engine whose seasonal tip uses the month in loc (UTC when nil).
func NewEngine(loc *time.Location) *Engine {
	return NewEngineWithClock(loc, time.Now)
}

// NewEngineWithClock is NewEngine with an injectable clock, for deterministic tests.
func NewEngineWithClock(loc *time.Location, now func() time.Time) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now, loc: loc}
}

// FarmingTips evaluates the temperature, rain, wind and seasonal categories in order and
// returns at most MaxTips tips.
func (e *Engine) FarmingTips(d models.WeatherDataset) []Tip {
	cur := d.Current
	var tips []Tip

	switch {
	case cur.Temperature > Rules.HotAbove:
		tips = append(tips, TipHeatWatering, TipHeatLivestock)
	case cur.Temperature < Rules.ColdBelow:
		tips = append(tips, TipColdCover, TipColdFrost)
	}

	switch {
	case RainExpectedToday(d):
		tips = append(tips, TipRainPostponeSpraying, TipRainIndoorWork)
	case RainExpectedTomorrow(d):
		tips = append(tips, TipRainTomorrow)
	case cur.Humidity < Rules.LowHumidityBelow:
		tips = append(tips, TipLowHumidity)
	}

	if cur.WindSpeed > Rules.WindyAbove {
		tips = append(tips, TipWindNoSpraying, TipWindSecure)
	}

	month := int(e.now().In(e.loc).Month()) - 1
	tips = append(tips, seasonal[month])

	if len(tips) > MaxTips {
		tips = tips[:MaxTips]
	}
	return tips
}

// FarmingAdvice returns the English text of FarmingTips.
func (e *Engine) FarmingAdvice(d models.WeatherDataset) []string {
	tips := e.FarmingTips(d)
	out := make([]string, 0, len(tips))
	for _, t := range tips {
		out = append(out, t.Text())
	}
	return out
}

// InlineTips is the reduced rule set spoken inside current-weather narration for locales
// that carry inline advice: no rain-tomorrow or seasonal tips, and a single wind tip.
func InlineTips(d models.WeatherDataset) []Tip {
	cur := d.Current
	var tips []Tip

	switch {
	case cur.Temperature > Rules.HotAbove:
		tips = append(tips, TipHeatWatering, TipHeatLivestock)
	case cur.Temperature < Rules.ColdBelow:
		tips = append(tips, TipColdCover, TipColdFrost)
	}

	switch {
	case RainExpectedToday(d):
		tips = append(tips, TipRainPostponeSpraying, TipRainIndoorWork)
	case cur.Humidity < Rules.LowHumidityBelow:
		tips = append(tips, TipLowHumidity)
	}

	if cur.WindSpeed > Rules.WindyAbove {
		tips = append(tips, TipWindNoSpraying)
	}

	if len(tips) > MaxTips {
		tips = tips[:MaxTips]
	}
	return tips
}

// WeatherAlert returns the highest-priority alert, if any: heat wave, cold wave,
// heavy rain in the next 24h, then wind.
func (e *Engine) WeatherAlert(d models.WeatherDataset) (Alert, bool) {
	cur := d.Current
	var kind AlertKind
	switch {
	case cur.Temperature > Rules.HeatWaveAbove:
		kind = AlertHeatWave
	case cur.Temperature < Rules.ColdWaveBelow:
		kind = AlertColdWave
	case anyPopAbove(d.Forecast, 0, forecast.SamplesPerDay, Rules.RainAlertPop):
		kind = AlertHeavyRain
	case cur.WindSpeed > Rules.WindAlertAbove:
		kind = AlertWind
	default:
		return Alert{}, false
	}
	return Alert{Kind: kind, Message: alertText[kind]}, true
}
