package weather

import "math"

const metersPerMile = 1609.34

// MetersToMiles converts meters to statute miles.
func MetersToMiles(m float64) float64 { return m / metersPerMile }

// MetersToKilometers converts meters to kilometers.
func MetersToKilometers(m float64) float64 { return m / 1000 }

// MetersPerSecondToKPH converts m/s to km/h.
func MetersPerSecondToKPH(ms float64) float64 { return ms * 3.6 }

// DisplayWindSpeed converts a provider wind speed into display units.
// Metric requests return m/s and are converted to km/h. Imperial requests
// already return mph and pass through unchanged.
func DisplayWindSpeed(speed float64, units Units) float64 {
	if units == UnitsImperial {
		return speed
	}
	return MetersPerSecondToKPH(speed)
}

// DisplayVisibility converts meters into km or miles.
func DisplayVisibility(meters float64, units Units) float64 {
	if units == UnitsImperial {
		return MetersToMiles(meters)
	}
	return MetersToKilometers(meters)
}

// clamp01 bounds v to [0,1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// percentOf clamps a ratio and scales it to an integer percentage.
func percentOf(ratio float64) int {
	return int(math.Round(clamp01(ratio) * 100))
}

// clampPercent bounds an integer percentage to [0,100].
func clampPercent(p int) int {
	return max(0, min(100, p))
}
