package narration

import (
	"github.com/kjstillabower/krishivani/internal/advisory"
	"github.com/kjstillabower/krishivani/internal/models"
)

// Bundle is every localized fragment needed to narrate in one language.
// Fragments with formatting verbs are fmt templates; argument order is noted per field.
type Bundle struct {
	Code string

	// Conditions localizes condition codes. When nil the provider's description is spoken.
	Conditions       map[models.Condition]string
	UnknownCondition string

	Current CurrentPhrases
	// InlineAdvice adds the reduced farming tip list to current-weather narration.
	InlineAdvice bool
	Tips         map[advisory.Tip]string

	Forecast ForecastPhrases

	// DayDetail is nil for languages without a day-detail rendering; English is used instead.
	DayDetail *DayDetailPhrases

	NoData NoDataPhrases
}

// CurrentPhrases narrate the current-conditions snapshot.
type CurrentPhrases struct {
	Intro        string // %s location
	Temperature  string // %d °C
	Conditions   string // %s condition
	FeelsLike    string // %d °C
	Humidity     string // %d percent
	Wind         string // %d m/s
	AdviceHeader string
	Comfort      map[advisory.Comfort]string
	Umbrella     string
}

// DayNaming selects how forecast days past the relative names are introduced.
type DayNaming int

const (
	// NameByWeekday uses Weekdays with WeekdayFormat.
	NameByWeekday DayNaming = iota
	// NameByOrdinal uses OrdinalFormat with the 1-based day number.
	NameByOrdinal
)

// ForecastPhrases narrate the five-day forecast.
type ForecastPhrases struct {
	Intro         string
	Outro         string
	RelativeDays  []string // index 0 is today
	Naming        DayNaming
	Weekdays      [7]string // indexed by time.Weekday
	WeekdayFormat string    // %s weekday
	OrdinalFormat string    // %d day number
	Day           string    // %d temperature, %s condition
	RainChance    string    // %d percent
	// DayTips is nil for languages that speak no per-day advice.
	DayTips map[advisory.DayTip]string
}

// DayDetailPhrases narrate the slots of a single forecast day.
type DayDetailPhrases struct {
	NotAvailable string
	Intro        string // %s weekday
	Morning      string // %d, %s
	Afternoon    string // %d, %s
	Evening      string // %d, %s
	HighLow      string // %d high, %d low
	Humidity     string // %d percent
}

// NoDataPhrases are spoken when no dataset is available.
type NoDataPhrases struct {
	Current  string
	Forecast string
}
