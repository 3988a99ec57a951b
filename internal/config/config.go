package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/optimistic-forecast/internal/weather"
)

const defaultOpenWeatherBaseURL = "https://api.openweathermap.org"

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	HTTPTimeout        time.Duration

	// Provider call shaping. A zero rate limit disables limiting.
	ProviderRateLimit float64
	ProviderRateBurst int
	GeocodeCacheTTL   time.Duration

	// Forecast behavior.
	AllowedCountries []string
	DefaultUnits     weather.Units
	OutlookDays      int

	// TrackedLocations are refreshed every RefreshInterval and kept in the store.
	TrackedLocations []string
	RefreshInterval  time.Duration

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots per query (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	Port            string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults. A missing OpenWeather key is a ConfigurationError.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file loaded")
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	if cfg.OpenWeatherAPIKey == "" {
		return nil, &weather.ConfigurationError{Setting: "OPENWEATHER_API_KEY"}
	}
	cfg.OpenWeatherBaseURL = strings.TrimRight(getenvDefault("OPENWEATHER_BASE_URL", defaultOpenWeatherBaseURL), "/")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheTTL, err = getenvDuration("GEOCODE_CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	rate, err := strconv.ParseFloat(getenvDefault("PROVIDER_RATE_LIMIT", "0"), 64)
	if err != nil || rate < 0 {
		return nil, fmt.Errorf("invalid PROVIDER_RATE_LIMIT: %q", os.Getenv("PROVIDER_RATE_LIMIT"))
	}
	cfg.ProviderRateLimit = rate
	cfg.ProviderRateBurst = getenvInt("PROVIDER_RATE_BURST", 5)

	// An explicitly empty ALLOWED_COUNTRIES lifts the restriction.
	allowed, ok := os.LookupEnv("ALLOWED_COUNTRIES")
	if !ok {
		allowed = "US"
	}
	cfg.AllowedCountries = splitList(allowed, ",")
	cfg.DefaultUnits = weather.ParseUnits(os.Getenv("DEFAULT_UNITS"), weather.UnitsImperial)
	cfg.OutlookDays = getenvInt("OUTLOOK_DAYS", weather.DefaultOutlookDays)
	if cfg.OutlookDays <= 0 {
		return nil, fmt.Errorf("invalid OUTLOOK_DAYS: must be positive")
	}

	// Tracked queries may contain commas ("Austin, TX"), so they are ';'-separated.
	cfg.TrackedLocations = splitList(os.Getenv("TRACKED_LOCATIONS"), ";")

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 48) // 24h at 30-minute intervals
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")

	return cfg, nil
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
