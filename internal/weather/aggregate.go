package weather

import "math"

// ShortRangeWindow is the number of 3-hourly samples summarized (about 24 hours).
const ShortRangeWindow = 8

// WindowOf returns the leading ShortRangeWindow entries of a series.
func WindowOf(entries []ForecastSeriesEntry) []ForecastSeriesEntry {
	return entries[:min(len(entries), ShortRangeWindow)]
}

// AggregateTemperature summarizes a window into a TemperatureBlock. Current
// and feels-like come from the first entry; high and low are the extremes of
// the actual temperatures, not the per-sample min/max fields.
func AggregateTemperature(window []ForecastSeriesEntry, units Units) TemperatureBlock {
	if len(window) == 0 {
		return TemperatureBlock{Units: units}
	}

	high, low := math.Inf(-1), math.Inf(1)
	for _, e := range window {
		high = math.Max(high, e.Main.Temp)
		low = math.Min(low, e.Main.Temp)
	}

	first := window[0]
	return TemperatureBlock{
		Current:   first.Main.Temp,
		FeelsLike: first.Main.FeelsLike,
		High:      high,
		Low:       low,
		Units:     units,
	}
}
