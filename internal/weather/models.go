package weather

import (
	"fmt"
	"strings"
)

// Units selects the measurement system for one forecast. Values are never
// mixed within a single forecast.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// ParseUnits normalizes a units string, falling back to def when s is empty or unknown.
func ParseUnits(s string, def Units) Units {
	switch Units(strings.ToLower(strings.TrimSpace(s))) {
	case UnitsMetric:
		return UnitsMetric
	case UnitsImperial:
		return UnitsImperial
	default:
		return def
	}
}

// TemperatureSymbol returns the display suffix for temperatures.
func (u Units) TemperatureSymbol() string {
	if u == UnitsImperial {
		return "°F"
	}
	return "°C"
}

// SpeedLabel returns the display unit for wind speed.
func (u Units) SpeedLabel() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "km/h"
}

// DistanceLabel returns the display unit for visibility.
func (u Units) DistanceLabel() string {
	if u == UnitsImperial {
		return "mi"
	}
	return "km"
}

// GeoLocation is a resolved place.
type GeoLocation struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	State   string  `json:"state,omitempty"`
	Country string  `json:"country"`
}

// Key returns the normalized identity key used for deduplication.
func (l GeoLocation) Key() string {
	return fmt.Sprintf("%s|%s|%s|%.6f|%.6f",
		normalizeKeyPart(l.Name),
		normalizeKeyPart(l.State),
		normalizeKeyPart(l.Country),
		l.Lat, l.Lon,
	)
}

// Label returns the canonical display and search form: "City, ST" for US
// places, "City, State, CC" or "City, CC" elsewhere.
func (l GeoLocation) Label() string {
	name := strings.TrimSpace(l.Name)
	country := strings.ToUpper(strings.TrimSpace(l.Country))
	state := strings.TrimSpace(l.State)

	if country == "US" {
		if code, ok := usStateCode(state); ok {
			return name + ", " + code
		}
		if state != "" {
			return name + ", " + state
		}
		return name + ", US"
	}

	parts := []string{name}
	if state != "" {
		parts = append(parts, state)
	}
	if country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}

func normalizeKeyPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LocationSuggestion is an autocomplete candidate together with the exact
// string a user can re-submit to reproduce it.
type LocationSuggestion struct {
	Location    GeoLocation `json:"location"`
	SearchValue string      `json:"searchValue"`
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TemperatureBlock summarizes the short-range window.
type TemperatureBlock struct {
	Current   float64 `json:"current"`
	FeelsLike float64 `json:"feelsLike"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Units     Units   `json:"units"`
}

// HighlightID tags a highlight. At most one highlight per tag appears in a forecast.
type HighlightID string

const (
	HighlightDryness    HighlightID = "dryness"
	HighlightRefresh    HighlightID = "refresh"
	HighlightClouds     HighlightID = "clouds"
	HighlightFeelsLike  HighlightID = "feels-like"
	HighlightCooler     HighlightID = "cooler"
	HighlightWarmer     HighlightID = "warmer"
	HighlightHumidity   HighlightID = "humidity"
	HighlightHydration  HighlightID = "hydration"
	HighlightVisibility HighlightID = "visibility"
	HighlightCozyViews  HighlightID = "cozy-views"
	HighlightBreeze     HighlightID = "breeze"
	HighlightWindEnergy HighlightID = "wind-energy"
)

// OptimisticHighlight is one user-facing derived fact.
type OptimisticHighlight struct {
	ID            HighlightID `json:"id"`
	Title         string      `json:"title"`
	Takeaway      string      `json:"takeaway"`
	Detail        string      `json:"detail,omitempty"`
	MetricLabel   string      `json:"metricLabel,omitempty"`
	MetricValue   string      `json:"metricValue,omitempty"`
	HeroStatValue string      `json:"heroStatValue,omitempty"`
	HeroStatLabel string      `json:"heroStatLabel,omitempty"`
}

// OptimisticForecast is the top-level output. It is built fresh per request
// and not modified afterwards.
type OptimisticForecast struct {
	LocationLabel  string                `json:"locationLabel"`
	Location       GeoLocation           `json:"location"`
	Coordinates    Coordinates           `json:"coordinates"`
	Units          Units                 `json:"units"`
	Temperature    TemperatureBlock      `json:"temperature"`
	SkySummary     string                `json:"skySummary"`
	Highlights     []OptimisticHighlight `json:"highlights"`
	Extended       *ExtendedOutlook      `json:"extended,omitempty"`
	Hourly         *HourlyOutlook        `json:"hourly,omitempty"`
	TimezoneOffset int                   `json:"timezoneOffset"`
	NextUpdate     string                `json:"nextUpdate"`
}
