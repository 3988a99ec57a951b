package weather

// overcastThreshold splits "Clouds" into partly cloudy and overcast summaries.
const overcastThreshold = 70

var skySummaries = map[string]string{
	"Clear":        "Clear skies make room for plenty of sunshine.",
	"Drizzle":      "A light drizzle keeps gardens happy and the air fresh.",
	"Rain":         "Rain is rinsing the air clean, so cozy plans are in order.",
	"Thunderstorm": "Storms bring a dramatic sky show worth watching from indoors.",
	"Snow":         "Snowfall turns the neighborhood into a quiet winter scene.",
}

const (
	skyPartlyCloudy = "Scattered clouds leave plenty of bright breaks."
	skyOvercast     = "A soft cloud blanket keeps the light gentle and even."
	skyDefault      = "The sky is doing its own thing, and there is still good in it."
)

// SkySummary returns a short optimistic description of the first entry's sky.
func SkySummary(e ForecastSeriesEntry) string {
	cond := e.MainCondition()
	if cond == "Clouds" {
		if e.Clouds.All >= overcastThreshold {
			return skyOvercast
		}
		return skyPartlyCloudy
	}
	if s, ok := skySummaries[cond]; ok {
		return s
	}
	return skyDefault
}
