package weather

import (
	"fmt"
	"math"
)

const (
	drynessCelebrateAt  = 55  // percent
	wetPopThreshold     = 0.4 // per-entry pop that flags an entry wet
	comfortNeutralGap   = 1.5 // degrees
	lowHumidityMax      = 60  // percent
	longRangeVisibility = 8000
	defaultVisibility   = 10000 // provider maximum, used when visibility is omitted
	breezyMaxKPH        = 25
	breezyMaxMPH        = 15.5
)

var wetConditions = map[string]bool{
	"Rain":         true,
	"Drizzle":      true,
	"Thunderstorm": true,
	"Snow":         true,
}

// DeriveHighlights computes the ordered highlight slots for a short-range
// window: dryness, clouds, comfort, humidity, visibility, wind. An empty
// window yields no highlights.
func DeriveHighlights(window []ForecastSeriesEntry, units Units, timezoneOffset int) []OptimisticHighlight {
	if len(window) == 0 {
		return []OptimisticHighlight{}
	}
	first := window[0]
	return []OptimisticHighlight{
		drynessHighlight(window),
		cloudsHighlight(window),
		comfortHighlight(first, units),
		humidityHighlight(first),
		visibilityHighlight(first, units, timezoneOffset),
		windHighlight(first, units),
	}
}

// DrynessPercent is the confidence that the window stays dry.
func DrynessPercent(window []ForecastSeriesEntry) int {
	if len(window) == 0 {
		return 0
	}
	var popSum float64
	wet := 0
	for _, e := range window {
		popSum += clamp01(e.Pop)
		if isWet(e) {
			wet++
		}
	}
	n := float64(len(window))
	dryShare := 1 - popSum/n
	wetPenalty := math.Max(1-float64(wet)/n, 0)
	return percentOf(dryShare * wetPenalty)
}

func isWet(e ForecastSeriesEntry) bool {
	for _, v := range e.Rain {
		if v > 0 {
			return true
		}
	}
	for _, v := range e.Snow {
		if v > 0 {
			return true
		}
	}
	return wetConditions[e.MainCondition()] || clamp01(e.Pop) >= wetPopThreshold
}

func drynessHighlight(window []ForecastSeriesEntry) OptimisticHighlight {
	pct := DrynessPercent(window)
	value := fmt.Sprintf("%d%%", pct)
	if pct >= drynessCelebrateAt {
		return OptimisticHighlight{
			ID:            HighlightDryness,
			Title:         "Dry stretch ahead",
			Takeaway:      fmt.Sprintf("About %d%% of the next day looks dry, so outdoor plans have room to breathe.", pct),
			MetricLabel:   "Dry outlook",
			MetricValue:   value,
			HeroStatValue: value,
			HeroStatLabel: "chance to stay dry",
		}
	}
	return OptimisticHighlight{
		ID:            HighlightRefresh,
		Title:         "Refreshing rain break",
		Takeaway:      fmt.Sprintf("Showers will freshen the air, and %d%% of the day still looks dry.", pct),
		Detail:        "Keep a light layer handy and enjoy the rinsed air between showers.",
		MetricLabel:   "Dry windows",
		MetricValue:   value,
		HeroStatValue: value,
		HeroStatLabel: "dry windows",
	}
}

// OpenSkyPercent is the mean share of sky free of clouds.
func OpenSkyPercent(window []ForecastSeriesEntry) int {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, e := range window {
		sum += float64(100 - clampPercent(e.Clouds.All))
	}
	return clampPercent(int(math.Round(sum / float64(len(window)))))
}

func cloudsHighlight(window []ForecastSeriesEntry) OptimisticHighlight {
	pct := OpenSkyPercent(window)
	return OptimisticHighlight{
		ID:          HighlightClouds,
		Title:       "Sky openings",
		Takeaway:    fmt.Sprintf("%d%% of the sky stays open for sunshine and stars.", pct),
		MetricLabel: "Open sky",
		MetricValue: fmt.Sprintf("%d%%", pct),
	}
}

func comfortHighlight(e ForecastSeriesEntry, units Units) OptimisticHighlight {
	gap := e.Main.FeelsLike - e.Main.Temp
	symbol := units.TemperatureSymbol()

	if math.Abs(gap) <= comfortNeutralGap {
		feels := int(math.Round(e.Main.FeelsLike))
		return OptimisticHighlight{
			ID:          HighlightFeelsLike,
			Title:       "Feels true to the thermometer",
			Takeaway:    fmt.Sprintf("It feels like %d%s, right in line with the actual temperature.", feels, symbol),
			MetricLabel: "Feels like",
			MetricValue: fmt.Sprintf("%d%s", feels, symbol),
		}
	}

	offset := fmt.Sprintf("%+d°", int(math.Round(gap)))
	if gap < 0 {
		return OptimisticHighlight{
			ID:          HighlightCooler,
			Title:       "Cool comfort",
			Takeaway:    fmt.Sprintf("It feels %s cooler than the thermometer says, ideal for a brisk walk.", offset),
			MetricLabel: "Feels-like offset",
			MetricValue: offset,
		}
	}
	return OptimisticHighlight{
		ID:          HighlightWarmer,
		Title:       "Bonus warmth",
		Takeaway:    fmt.Sprintf("It feels %s warmer than the thermometer says, so you can pack lighter.", offset),
		MetricLabel: "Feels-like offset",
		MetricValue: offset,
	}
}

func humidityHighlight(e ForecastSeriesEntry) OptimisticHighlight {
	h := clampPercent(e.Main.Humidity)
	value := fmt.Sprintf("%d%%", h)
	if h <= lowHumidityMax {
		return OptimisticHighlight{
			ID:          HighlightHumidity,
			Title:       "Low-frizz air",
			Takeaway:    fmt.Sprintf("Humidity sits at %d%%, so hair and skin get an easy day.", h),
			MetricLabel: "Humidity",
			MetricValue: value,
		}
	}
	return OptimisticHighlight{
		ID:          HighlightHydration,
		Title:       "Built-in hydration",
		Takeaway:    fmt.Sprintf("Humidity at %d%% keeps skin happy and the air soft.", h),
		MetricLabel: "Humidity",
		MetricValue: value,
	}
}

func visibilityHighlight(e ForecastSeriesEntry, units Units, timezoneOffset int) OptimisticHighlight {
	meters := defaultVisibility
	if e.Visibility != nil {
		meters = *e.Visibility
	}
	distance := fmt.Sprintf("%.0f %s", DisplayVisibility(float64(meters), units), units.DistanceLabel())

	if meters >= longRangeVisibility {
		return OptimisticHighlight{
			ID:          HighlightVisibility,
			Title:       "Long-range views",
			Takeaway:    fmt.Sprintf("You can see about %s out, great for scenic views.", distance),
			MetricLabel: "Visibility",
			MetricValue: distance,
		}
	}
	at := localTime(e.Dt, timezoneOffset).Format("3:04 PM")
	return OptimisticHighlight{
		ID:          HighlightCozyViews,
		Title:       "Cozy, atmospheric views",
		Takeaway:    fmt.Sprintf("Soft haze keeps things close and cozy, with about %s of visibility.", distance),
		Detail:      fmt.Sprintf("Look for moody, softly lit scenery around %s.", at),
		MetricLabel: "Visibility",
		MetricValue: distance,
	}
}

func windHighlight(e ForecastSeriesEntry, units Units) OptimisticHighlight {
	speed := DisplayWindSpeed(e.Wind.Speed, units)
	label := units.SpeedLabel()
	value := fmt.Sprintf("%d %s", int(math.Round(speed)), label)

	limit := float64(breezyMaxKPH)
	if units == UnitsImperial {
		limit = breezyMaxMPH
	}

	if speed <= limit {
		return OptimisticHighlight{
			ID:          HighlightBreeze,
			Title:       "Gentle breeze",
			Takeaway:    fmt.Sprintf("Winds around %s keep the air moving without the fuss.", value),
			MetricLabel: "Wind",
			MetricValue: value,
		}
	}

	h := OptimisticHighlight{
		ID:          HighlightWindEnergy,
		Title:       "Wind-powered energy",
		Takeaway:    fmt.Sprintf("Winds near %s bring a lively, energizing feel.", value),
		MetricLabel: "Wind",
		MetricValue: value,
	}
	if e.Wind.Gust != nil {
		gust := fmt.Sprintf("%d %s", int(math.Round(DisplayWindSpeed(*e.Wind.Gust, units))), label)
		h.Detail = "Gusts up to " + gust + "."
		h.HeroStatValue = gust
		h.HeroStatLabel = "peak gusts"
	}
	return h
}
