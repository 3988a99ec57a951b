package weather

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultOutlookDays is the extended outlook horizon.
	DefaultOutlookDays = 10
	// MaxHourlyEntries caps the hourly outlook.
	MaxHourlyEntries = 24

	AdvisoryLimitedData = "Extended outlook has limited data right now. Showing the days we could confirm."
	AdvisoryUnavailable = "Extended outlook is unavailable right now. Check back soon for the full view."
)

// OutlookSource names which upstream produced a day.
type OutlookSource string

const (
	SourcePrimary OutlookSource = "primary"
	SourceLegacy  OutlookSource = "legacy"
)

// DailyForecastEntry is one calendar day normalized from either daily source.
// Only entries with valid min and max temperatures are produced.
type DailyForecastEntry struct {
	Dt             int64
	Sunrise        int64
	Sunset         int64
	TempDay        float64
	TempMin        float64
	TempMax        float64
	Pop            *float64
	Humidity       int
	WindSpeed      float64
	WindGust       *float64
	WindDeg        int
	Condition      string
	Description    string
	Icon           string
	TimezoneOffset int
	Source         OutlookSource
}

// OutlookDay is one day of the extended outlook.
type OutlookDay struct {
	Date                string        `json:"date"`
	Timestamp           int64         `json:"timestamp"`
	High                float64       `json:"high"`
	Low                 float64       `json:"low"`
	Day                 float64       `json:"day"`
	PrecipitationChance *int          `json:"precipitationChance"`
	Sunrise             string        `json:"sunrise"`
	Sunset              string        `json:"sunset"`
	Humidity            int           `json:"humidity"`
	WindSpeed           float64       `json:"windSpeed"`
	WindGust            *float64      `json:"windGust,omitempty"`
	WindDeg             int           `json:"windDeg"`
	Condition           string        `json:"condition"`
	Description         string        `json:"description"`
	Icon                string        `json:"icon,omitempty"`
	Source              OutlookSource `json:"source"`
}

// ExtendedOutlook is the multi-day view. A degraded outlook is still a valid result.
type ExtendedOutlook struct {
	Days       []OutlookDay `json:"days"`
	IsComplete bool         `json:"isComplete"`
	Advisory   string       `json:"advisory,omitempty"`
	Units      Units        `json:"units"`
}

// HourlyForecast is one hour of the hourly outlook.
type HourlyForecast struct {
	Timestamp           int64   `json:"timestamp"`
	LocalTime           string  `json:"localTime"`
	Temp                float64 `json:"temp"`
	PrecipitationChance *int    `json:"precipitationChance"`
	Condition           string  `json:"condition"`
	Icon                string  `json:"icon,omitempty"`
}

// HourlyOutlook is the near-term hourly view from the primary source.
type HourlyOutlook struct {
	Hours []HourlyForecast `json:"hours"`
	Units Units            `json:"units"`
}

// NormalizePrimaryDaily converts primary entries, dropping days without valid min/max.
func NormalizePrimaryDaily(resp PrimaryDailyResponse) []DailyForecastEntry {
	out := make([]DailyForecastEntry, 0, len(resp.Daily))
	for _, d := range resp.Daily {
		entry, ok := normalizeDaily(d.Dt, d.Sunrise, d.Sunset, d.Temp, d.Weather)
		if !ok {
			continue
		}
		entry.Pop = d.Pop
		entry.Humidity = d.Humidity
		entry.WindSpeed = d.WindSpeed
		entry.WindGust = d.WindGust
		entry.WindDeg = d.WindDeg
		entry.TimezoneOffset = resp.TimezoneOffset
		entry.Source = SourcePrimary
		out = append(out, entry)
	}
	return out
}

// NormalizeLegacyDaily converts legacy entries. Wind fields are renamed only.
func NormalizeLegacyDaily(resp LegacyDailyResponse) []DailyForecastEntry {
	out := make([]DailyForecastEntry, 0, len(resp.List))
	for _, d := range resp.List {
		entry, ok := normalizeDaily(d.Dt, d.Sunrise, d.Sunset, d.Temp, d.Weather)
		if !ok {
			continue
		}
		entry.Pop = d.Pop
		entry.Humidity = d.Humidity
		entry.WindSpeed = d.Speed
		entry.WindGust = d.Gust
		entry.WindDeg = d.Deg
		entry.TimezoneOffset = resp.City.Timezone
		entry.Source = SourceLegacy
		out = append(out, entry)
	}
	return out
}

func normalizeDaily(dt, sunrise, sunset int64, temp DailyTemperature, conds []WeatherCondition) (DailyForecastEntry, bool) {
	if !validTemp(temp.Min) || !validTemp(temp.Max) {
		return DailyForecastEntry{}, false
	}
	entry := DailyForecastEntry{
		Dt:      dt,
		Sunrise: sunrise,
		Sunset:  sunset,
		TempMin: *temp.Min,
		TempMax: *temp.Max,
	}
	if validTemp(temp.Day) {
		entry.TempDay = *temp.Day
	} else {
		entry.TempDay = (entry.TempMin + entry.TempMax) / 2
	}
	if len(conds) > 0 {
		entry.Condition = conds[0].Main
		entry.Description = conds[0].Description
		entry.Icon = conds[0].Icon
	}
	return entry, true
}

func validTemp(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// BuildExtendedOutlook assembles up to horizonDays days. When primary already
// covers the horizon it is used alone; otherwise both sources are merged by
// UTC calendar day with primary taking precedence.
func BuildExtendedOutlook(primary, legacy []DailyForecastEntry, horizonDays int, units Units) ExtendedOutlook {
	if horizonDays <= 0 {
		horizonDays = DefaultOutlookDays
	}

	var merged []DailyForecastEntry
	if len(primary) >= horizonDays {
		merged = append(merged, primary...)
	} else {
		merged = mergeByDay(primary, legacy)
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Dt < merged[j].Dt })
	if len(merged) > horizonDays {
		merged = merged[:horizonDays]
	}

	outlook := ExtendedOutlook{
		Days:       make([]OutlookDay, len(merged)),
		IsComplete: len(merged) == horizonDays,
		Units:      units,
	}
	for i, e := range merged {
		outlook.Days[i] = toOutlookDay(e, units)
	}

	switch {
	case outlook.IsComplete:
	case len(merged) == 0:
		outlook.Advisory = AdvisoryUnavailable
	default:
		outlook.Advisory = AdvisoryLimitedData
	}
	return outlook
}

// mergeByDay keeps the first entry seen per UTC day across sources in priority order.
func mergeByDay(sources ...[]DailyForecastEntry) []DailyForecastEntry {
	type dayKey string

	seen := make(map[dayKey]bool)
	var out []DailyForecastEntry
	for _, entries := range sources {
		for _, e := range entries {
			k := dayKey(time.Unix(e.Dt, 0).UTC().Format("2006-01-02"))
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, e)
		}
	}
	return out
}

func toOutlookDay(e DailyForecastEntry, units Units) OutlookDay {
	day := OutlookDay{
		Date:                localTime(e.Dt, e.TimezoneOffset).Format("2006-01-02"),
		Timestamp:           e.Dt,
		High:                e.TempMax,
		Low:                 e.TempMin,
		Day:                 e.TempDay,
		PrecipitationChance: precipitationChance(e.Pop),
		Sunrise:             localTime(e.Sunrise, e.TimezoneOffset).Format("15:04"),
		Sunset:              localTime(e.Sunset, e.TimezoneOffset).Format("15:04"),
		Humidity:            clampPercent(e.Humidity),
		WindSpeed:           DisplayWindSpeed(e.WindSpeed, units),
		WindDeg:             e.WindDeg,
		Condition:           e.Condition,
		Description:         e.Description,
		Icon:                e.Icon,
		Source:              e.Source,
	}
	if e.WindGust != nil {
		gust := DisplayWindSpeed(*e.WindGust, units)
		day.WindGust = &gust
	}
	return day
}

// BuildHourlyOutlook maps the primary source's hourly array. It returns nil
// when there are no hours.
func BuildHourlyOutlook(resp PrimaryDailyResponse, units Units) *HourlyOutlook {
	if len(resp.Hourly) == 0 {
		return nil
	}
	n := min(len(resp.Hourly), MaxHourlyEntries)
	hours := make([]HourlyForecast, n)
	for i, h := range resp.Hourly[:n] {
		hf := HourlyForecast{
			Timestamp:           h.Dt,
			LocalTime:           localTime(h.Dt, resp.TimezoneOffset).Format("15:04"),
			Temp:                h.Temp,
			PrecipitationChance: precipitationChance(h.Pop),
		}
		if len(h.Weather) > 0 {
			hf.Condition = h.Weather[0].Main
			hf.Icon = h.Weather[0].Icon
		}
		hours[i] = hf
	}
	return &HourlyOutlook{Hours: hours, Units: units}
}

// precipitationChance clamps a [0,1] fraction and scales it to a percent.
// Missing or NaN input stays nil rather than becoming 0%.
func precipitationChance(pop *float64) *int {
	if pop == nil || math.IsNaN(*pop) {
		return nil
	}
	p := percentOf(*pop)
	return &p
}

// localTime shifts an epoch by a UTC offset and returns it as a UTC wall clock.
func localTime(epoch int64, offsetSeconds int) time.Time {
	return time.Unix(epoch+int64(offsetSeconds), 0).UTC()
}

// OutlookResult bundles what the extended fetch produced.
type OutlookResult struct {
	Extended ExtendedOutlook
	Hourly   *HourlyOutlook
}

// OutlookMerger fetches both daily sources and merges them. Source failures
// are logged and treated as zero entries; Build never returns an error.
type OutlookMerger struct {
	source  ForecastSource
	horizon int
	logger  logrus.FieldLogger
}

// NewOutlookMerger creates a merger with the given horizon (DefaultOutlookDays when <= 0).
func NewOutlookMerger(source ForecastSource, horizonDays int, logger logrus.FieldLogger) *OutlookMerger {
	if horizonDays <= 0 {
		horizonDays = DefaultOutlookDays
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &OutlookMerger{source: source, horizon: horizonDays, logger: logger}
}

// Build assembles the extended outlook and, when the primary source answered,
// the hourly outlook.
func (m *OutlookMerger) Build(ctx context.Context, loc GeoLocation, units Units) OutlookResult {
	var (
		primary []DailyForecastEntry
		legacy  []DailyForecastEntry
		hourly  *HourlyOutlook
	)

	resp, err := m.source.PrimaryDaily(ctx, loc.Lat, loc.Lon, units)
	if err != nil {
		m.logSourceFailure(loc, SourcePrimary, err)
	} else {
		primary = NormalizePrimaryDaily(resp)
		hourly = BuildHourlyOutlook(resp, units)
	}

	if len(primary) < m.horizon {
		legacyResp, err := m.source.LegacyDaily(ctx, loc.Lat, loc.Lon, units, m.horizon)
		if err != nil {
			m.logSourceFailure(loc, SourceLegacy, err)
		} else {
			legacy = NormalizeLegacyDaily(legacyResp)
		}
	}

	return OutlookResult{
		Extended: BuildExtendedOutlook(primary, legacy, m.horizon, units),
		Hourly:   hourly,
	}
}

func (m *OutlookMerger) logSourceFailure(loc GeoLocation, source OutlookSource, err error) {
	m.logger.WithFields(logrus.Fields{
		"location": loc.Label(),
		"source":   source,
		"error":    err,
	}).Warn("daily forecast source failed; continuing without it")
}
