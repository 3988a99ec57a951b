package weather

import (
	"context"
	"strings"
	"sync"
)

// fakeProvider is an in-memory Provider for tests.
type fakeProvider struct {
	mu    sync.Mutex
	calls []string

	direct    map[string][]GeoLocation // keyed by lower-case query
	directErr error

	reverse    []GeoLocation
	reverseErr error

	postal    map[string]GeoLocation // keyed by "CODE|CC"
	postalErr error

	series    ForecastSeries
	seriesErr error

	primary    PrimaryDailyResponse
	primaryErr error

	legacy    LegacyDailyResponse
	legacyErr error
}

func (f *fakeProvider) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeProvider) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeProvider) Direct(_ context.Context, query string, limit int) ([]GeoLocation, error) {
	f.record("direct:" + query)
	if f.directErr != nil {
		return nil, f.directErr
	}
	locs := f.direct[strings.ToLower(query)]
	if len(locs) > limit {
		locs = locs[:limit]
	}
	return locs, nil
}

func (f *fakeProvider) Reverse(_ context.Context, _, _ float64) ([]GeoLocation, error) {
	f.record("reverse")
	return f.reverse, f.reverseErr
}

func (f *fakeProvider) Postal(_ context.Context, code, country string) (GeoLocation, error) {
	f.record("postal:" + code)
	if f.postalErr != nil {
		return GeoLocation{}, f.postalErr
	}
	loc, ok := f.postal[strings.ToUpper(code+"|"+country)]
	if !ok {
		return GeoLocation{}, &NotFoundError{Query: code}
	}
	return loc, nil
}

func (f *fakeProvider) ShortRange(_ context.Context, _, _ float64, _ Units) (ForecastSeries, error) {
	f.record("short")
	return f.series, f.seriesErr
}

func (f *fakeProvider) PrimaryDaily(_ context.Context, _, _ float64, _ Units) (PrimaryDailyResponse, error) {
	f.record("primary")
	return f.primary, f.primaryErr
}

func (f *fakeProvider) LegacyDaily(_ context.Context, _, _ float64, _ Units, _ int) (LegacyDailyResponse, error) {
	f.record("legacy")
	return f.legacy, f.legacyErr
}

func ptr[T any](v T) *T { return &v }

const testDay = int64(86400)

// testBase is 2024-06-01T12:00:00Z.
const testBase = int64(1717243200)

func primaryDay(i int, max, min float64) PrimaryDailyEntry {
	dt := testBase + int64(i)*testDay
	return PrimaryDailyEntry{
		Dt:        dt,
		Sunrise:   dt - 6*3600,
		Sunset:    dt + 8*3600,
		Temp:      DailyTemperature{Day: ptr((max + min) / 2), Min: ptr(min), Max: ptr(max)},
		Humidity:  50,
		WindSpeed: 5,
		WindDeg:   180,
		Pop:       ptr(0.2),
		Weather:   []WeatherCondition{{ID: 800, Main: "Clear", Description: "clear sky", Icon: "01d"}},
	}
}

func legacyDay(i int, max, min float64) LegacyDailyEntry {
	dt := testBase + int64(i)*testDay
	return LegacyDailyEntry{
		Dt:       dt,
		Sunrise:  dt - 6*3600,
		Sunset:   dt + 8*3600,
		Temp:     DailyTemperature{Min: ptr(min), Max: ptr(max)},
		Humidity: 60,
		Speed:    4,
		Gust:     ptr(9.0),
		Deg:      90,
		Weather:  []WeatherCondition{{ID: 500, Main: "Rain", Description: "light rain", Icon: "10d"}},
	}
}

func seriesEntry(dt int64, temp, feels float64) ForecastSeriesEntry {
	var e ForecastSeriesEntry
	e.Dt = dt
	e.Main.Temp = temp
	e.Main.FeelsLike = feels
	e.Main.TempMin = temp - 1
	e.Main.TempMax = temp + 1
	e.Main.Humidity = 40
	e.Weather = []WeatherCondition{{ID: 800, Main: "Clear", Description: "clear sky", Icon: "01d"}}
	e.Clouds.All = 10
	e.Wind.Speed = 3
	e.Visibility = ptr(10000)
	return e
}
