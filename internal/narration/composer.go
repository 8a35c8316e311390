// Package narration renders weather datasets into spoken text for each supported language.
package narration

import (
	"fmt"
	"strings"
	"time"

	"github.com/kjstillabower/krishivani/internal/advisory"
	"github.com/kjstillabower/krishivani/internal/forecast"
	"github.com/kjstillabower/krishivani/internal/models"
)

// ForecastDays is the number of days spoken by the forecast narration.
const ForecastDays = 5

// Day-detail slot offsets within a day's eight samples.
const (
	morningSlot   = 0
	afternoonSlot = 4
	eveningSlot   = 7
)

// Kind names a narration type.
type Kind string

const (
	KindCurrent  Kind = "current"
	KindForecast Kind = "forecast"
	KindDay      Kind = "day"
)

// ParseKind returns the Kind for s and whether it is known.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCurrent, KindForecast, KindDay:
		return k, true
	}
	return "", false
}

// Composer renders narration. It holds no mutable state and is safe for concurrent use.
type Composer struct {
	loc *time.Location
}

// NewComposer returns a Composer that names weekdays in loc (UTC when nil).
func NewComposer(loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{loc: loc}
}

// Compose dispatches to the renderer for kind. dayIndex is only used by KindDay.
func (c *Composer) Compose(kind Kind, d models.WeatherDataset, dayIndex int, lang string) string {
	switch kind {
	case KindForecast:
		return c.Forecast(d, lang)
	case KindDay:
		return c.DayDetail(d, dayIndex, lang)
	default:
		return c.CurrentWeather(d, lang)
	}
}

// CurrentWeather narrates the current-conditions snapshot. Unknown language codes use English.
func (c *Composer) CurrentWeather(d models.WeatherDataset, lang string) string {
	b := BundleFor(lang)
	p := b.Current
	cur := d.Current

	temp := int(cur.Temperature)
	wind := int(cur.WindSpeed)

	var sb strings.Builder
	fmt.Fprintf(&sb, p.Intro, cur.Location)
	fmt.Fprintf(&sb, p.Temperature, temp)
	fmt.Fprintf(&sb, p.Conditions, b.condition(cur.Condition, cur.Description))
	fmt.Fprintf(&sb, p.FeelsLike, int(cur.FeelsLike))
	fmt.Fprintf(&sb, p.Humidity, cur.Humidity)
	fmt.Fprintf(&sb, p.Wind, wind)

	if b.InlineAdvice {
		if tips := advisory.InlineTips(d); len(tips) > 0 {
			sb.WriteString(p.AdviceHeader)
			for _, t := range tips {
				sb.WriteString(b.tip(t))
				sb.WriteString(". ")
			}
		}
	}

	if clause, ok := p.Comfort[advisory.ClassifyComfort(temp, cur.Humidity, wind)]; ok {
		sb.WriteString(clause)
	}
	if cur.Condition.IsRainy() {
		sb.WriteString(p.Umbrella)
	}
	return strings.TrimSpace(sb.String())
}

// Forecast narrates up to ForecastDays days, using the first sample of each group of
// forecast.SamplesPerDay samples as the day's representative.
func (c *Composer) Forecast(d models.WeatherDataset, lang string) string {
	b := BundleFor(lang)
	if len(d.Forecast) == 0 {
		return b.NoData.Forecast
	}
	p := b.Forecast

	var sb strings.Builder
	sb.WriteString(p.Intro)
	for i, day := range forecast.Chunk(d.Forecast, forecast.SamplesPerDay, ForecastDays) {
		first := day[0]
		temp := int(first.Temperature)
		rain := advisory.RainChance(first.PrecipProbability)

		sb.WriteString(c.dayName(p, i, first))
		fmt.Fprintf(&sb, p.Day, temp, b.condition(first.Condition, first.Description))
		if advisory.MentionsRain(rain) {
			fmt.Fprintf(&sb, p.RainChance, rain)
		}
		if tip, ok := p.DayTips[advisory.ClassifyDay(temp, rain)]; ok {
			sb.WriteString(tip)
		}
	}
	sb.WriteString(p.Outro)
	return strings.TrimSpace(sb.String())
}

// DayDetail narrates morning, afternoon and evening slots of one forecast day plus its
// high, low and mean humidity. Languages without day-detail phrases are rendered in English.
func (c *Composer) DayDetail(d models.WeatherDataset, dayIndex int, lang string) string {
	b := BundleFor(lang)
	if b.DayDetail == nil {
		b = englishBundle
	}
	p := b.DayDetail

	days := forecast.Chunk(d.Forecast, forecast.SamplesPerDay, 0)
	if dayIndex < 0 || dayIndex >= len(days) {
		return p.NotAvailable
	}
	day := days[dayIndex]

	var sb strings.Builder
	fmt.Fprintf(&sb, p.Intro, b.Forecast.Weekdays[day[0].Time(c.loc).Weekday()])

	slots := []struct {
		idx    int
		format string
	}{
		{morningSlot, p.Morning},
		{afternoonSlot, p.Afternoon},
		{eveningSlot, p.Evening},
	}
	for _, s := range slots {
		if s.idx >= len(day) {
			continue
		}
		sample := day[s.idx]
		fmt.Fprintf(&sb, s.format, int(sample.Temperature), b.condition(sample.Condition, sample.Description))
	}

	high, low := day[0].Temperature, day[0].Temperature
	humidity := 0
	for _, s := range day {
		if s.Temperature > high {
			high = s.Temperature
		}
		if s.Temperature < low {
			low = s.Temperature
		}
		humidity += s.Humidity
	}
	fmt.Fprintf(&sb, p.HighLow, int(high), int(low))
	fmt.Fprintf(&sb, p.Humidity, humidity/len(day))
	return strings.TrimSpace(sb.String())
}

// NoData returns the localized message spoken when no dataset is available for kind.
func (c *Composer) NoData(kind Kind, lang string) string {
	b := BundleFor(lang)
	if kind == KindCurrent {
		return b.NoData.Current
	}
	return b.NoData.Forecast
}

func (c *Composer) dayName(p ForecastPhrases, i int, first models.ForecastSample) string {
	if i < len(p.RelativeDays) {
		return p.RelativeDays[i]
	}
	if p.Naming == NameByOrdinal {
		return fmt.Sprintf(p.OrdinalFormat, i+1)
	}
	return fmt.Sprintf(p.WeekdayFormat, p.Weekdays[first.Time(c.loc).Weekday()])
}

// condition localizes a condition code. Bundles without a condition table speak the
// provider's description as-is.
func (b *Bundle) condition(cond models.Condition, description string) string {
	if b.Conditions == nil {
		if description == "" {
			return b.UnknownCondition
		}
		return description
	}
	if cond == "" {
		cond = models.ConditionClear
	}
	if s, ok := b.Conditions[cond]; ok {
		return s
	}
	return b.UnknownCondition
}

func (b *Bundle) tip(t advisory.Tip) string {
	if s, ok := b.Tips[t]; ok {
		return s
	}
	return t.Text()
}
