package weather

import (
	"context"
	"time"
)

// Geocoder resolves place names, postal codes, and coordinates.
type Geocoder interface {
	// Direct looks up free text and returns up to limit candidates in provider order.
	Direct(ctx context.Context, query string, limit int) ([]GeoLocation, error)
	// Reverse returns places near the coordinates, best first.
	Reverse(ctx context.Context, lat, lon float64) ([]GeoLocation, error)
	// Postal looks up a postal code within a country.
	Postal(ctx context.Context, code, country string) (GeoLocation, error)
}

// ForecastSource fetches raw forecast payloads for a coordinate pair.
type ForecastSource interface {
	ShortRange(ctx context.Context, lat, lon float64, units Units) (ForecastSeries, error)
	PrimaryDaily(ctx context.Context, lat, lon float64, units Units) (PrimaryDailyResponse, error)
	LegacyDaily(ctx context.Context, lat, lon float64, units Units, count int) (LegacyDailyResponse, error)
}

// Provider is a complete upstream: geocoding plus forecasts.
type Provider interface {
	Geocoder
	ForecastSource
}

// Store is the contract the in-memory snapshot store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(snapshot ForecastSnapshot)
	GetLatest(query string, units Units) (ForecastSnapshot, error)
	GetRange(query string, units Units, from, to time.Time) ([]ForecastSnapshot, error)
}

// ForecastSnapshot is a stored forecast for a tracked query.
type ForecastSnapshot struct {
	Query     string             `json:"query"`
	Units     Units              `json:"units"`
	FetchedAt time.Time          `json:"fetchedAt"` // always UTC
	Forecast  OptimisticForecast `json:"forecast"`
}

// SnapshotKey returns the canonical key for indexing snapshots in stores.
func SnapshotKey(query string, units Units) string {
	return normalizeKeyPart(query) + ":" + string(units)
}

// WeatherCondition is one provider condition record.
type WeatherCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ForecastSeriesEntry is one raw 3-hourly sample. Entries are read-only inputs.
type ForecastSeriesEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []WeatherCondition `json:"weather"`
	Clouds  struct {
		All int `json:"all"`
	} `json:"clouds"`
	Wind struct {
		Speed float64  `json:"speed"`
		Deg   int      `json:"deg"`
		Gust  *float64 `json:"gust,omitempty"`
	} `json:"wind"`
	Visibility *int               `json:"visibility,omitempty"` // meters
	Pop        float64            `json:"pop"`
	Rain       map[string]float64 `json:"rain,omitempty"`
	Snow       map[string]float64 `json:"snow,omitempty"`
}

// MainCondition returns the first condition's group, e.g. "Rain".
func (e ForecastSeriesEntry) MainCondition() string {
	if len(e.Weather) == 0 {
		return ""
	}
	return e.Weather[0].Main
}

// ForecastSeries is the short-range response.
type ForecastSeries struct {
	Entries        []ForecastSeriesEntry
	TimezoneOffset int // seconds east of UTC
}

// DailyTemperature is the per-day temperature record shared by both daily sources.
// Pointers distinguish missing values from zero.
type DailyTemperature struct {
	Day *float64 `json:"day"`
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// PrimaryDailyEntry is one day from the primary (richer) source.
type PrimaryDailyEntry struct {
	Dt        int64              `json:"dt"`
	Sunrise   int64              `json:"sunrise"`
	Sunset    int64              `json:"sunset"`
	Temp      DailyTemperature   `json:"temp"`
	Humidity  int                `json:"humidity"`
	WindSpeed float64            `json:"wind_speed"`
	WindGust  *float64           `json:"wind_gust,omitempty"`
	WindDeg   int                `json:"wind_deg"`
	Pop       *float64           `json:"pop,omitempty"`
	Weather   []WeatherCondition `json:"weather"`
}

// HourlyEntry is one hour from the primary source.
type HourlyEntry struct {
	Dt      int64              `json:"dt"`
	Temp    float64            `json:"temp"`
	Pop     *float64           `json:"pop,omitempty"`
	Weather []WeatherCondition `json:"weather"`
}

// PrimaryDailyResponse is the primary source's payload.
type PrimaryDailyResponse struct {
	TimezoneOffset int                 `json:"timezone_offset"`
	Daily          []PrimaryDailyEntry `json:"daily"`
	Hourly         []HourlyEntry       `json:"hourly"`
}

// LegacyDailyEntry is one day from the legacy source, which names wind fields differently.
type LegacyDailyEntry struct {
	Dt       int64              `json:"dt"`
	Sunrise  int64              `json:"sunrise"`
	Sunset   int64              `json:"sunset"`
	Temp     DailyTemperature   `json:"temp"`
	Humidity int                `json:"humidity"`
	Speed    float64            `json:"speed"`
	Gust     *float64           `json:"gust,omitempty"`
	Deg      int                `json:"deg"`
	Pop      *float64           `json:"pop,omitempty"`
	Weather  []WeatherCondition `json:"weather"`
}

// LegacyDailyResponse is the legacy source's payload.
type LegacyDailyResponse struct {
	City struct {
		Timezone int `json:"timezone"`
	} `json:"city"`
	List []LegacyDailyEntry `json:"list"`
}
