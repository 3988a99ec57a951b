package providers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/i474232898/optimistic-forecast/internal/common"
	"github.com/i474232898/optimistic-forecast/internal/observability"
	"github.com/i474232898/optimistic-forecast/internal/weather"
)

const (
	DefaultOpenWeatherBaseURL = "https://api.openweathermap.org"
	defaultTimeout            = 10 * time.Second
	userAgent                 = "optimistic-forecast/1.0"
)

// Endpoint labels used for errors and metrics.
const (
	endpointGeoDirect    = "geo_direct"
	endpointGeoReverse   = "geo_reverse"
	endpointGeoZip       = "geo_zip"
	endpointShortRange   = "forecast"
	endpointPrimaryDaily = "onecall"
	endpointLegacyDaily  = "forecast_daily"
)

// OpenWeatherConfig configures an OpenWeatherClient.
type OpenWeatherConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; a default client is used when nil
}

// OpenWeatherClient implements weather.Provider against the OpenWeatherMap APIs.
//
// Each endpoint family has its own circuit: geocoding, the short-range
// forecast, and the two best-effort daily sources. A failing daily source
// cannot open the circuit that resolution and the short-range fetch depend on.
type OpenWeatherClient struct {
	client   *resty.Client
	geo      *gobreaker.CircuitBreaker
	forecast *gobreaker.CircuitBreaker
	daily    *gobreaker.CircuitBreaker
	metrics  *observability.Metrics
	logger   logrus.FieldLogger
}

var _ weather.Provider = (*OpenWeatherClient)(nil)

// NewOpenWeatherClient returns a client. A blank API key is a configuration
// error and no request is ever attempted.
func NewOpenWeatherClient(cfg OpenWeatherConfig, metrics *observability.Metrics, logger logrus.FieldLogger) (*OpenWeatherClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &weather.ConfigurationError{Setting: "OPENWEATHER_API_KEY"}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New()
	if cfg.HTTPClient != nil {
		client = resty.NewWithClient(cfg.HTTPClient)
	}
	client.
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetQueryParam("appid", apiKey)

	logger = logger.WithField("provider", "openweather")
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.WithFields(logrus.Fields{
			"path":     resp.Request.RawRequest.URL.Path,
			"status":   resp.StatusCode(),
			"duration": resp.Time().String(),
			"bytes":    len(resp.Body()),
		}).Debug("provider response")
		return nil
	})

	return &OpenWeatherClient{
		client:   client,
		geo:      newCircuitBreaker("openweather-geo"),
		forecast: newCircuitBreaker("openweather-forecast"),
		daily:    newCircuitBreaker("openweather-daily"),
		metrics:  metrics,
		logger:   logger,
	}, nil
}

type geoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

func (g geoResult) toLocation() weather.GeoLocation {
	return weather.GeoLocation{
		Name:    g.Name,
		Lat:     g.Lat,
		Lon:     g.Lon,
		State:   g.State,
		Country: g.Country,
	}
}

func toLocations(results []geoResult) []weather.GeoLocation {
	locs := make([]weather.GeoLocation, 0, len(results))
	for _, r := range results {
		locs = append(locs, r.toLocation())
	}
	return locs
}

// Direct looks up free text via the direct geocoding endpoint.
func (c *OpenWeatherClient) Direct(ctx context.Context, query string, limit int) ([]weather.GeoLocation, error) {
	var results []geoResult
	req := c.client.R().SetQueryParams(map[string]string{
		"q":     query,
		"limit": strconv.Itoa(limit),
	})
	if err := doRequestWithResilience(ctx, c.geo, c.metrics, endpointGeoDirect, req, "/geo/1.0/direct", &results); err != nil {
		return nil, err
	}
	return toLocations(results), nil
}

// Reverse returns the place nearest the coordinates.
func (c *OpenWeatherClient) Reverse(ctx context.Context, lat, lon float64) ([]weather.GeoLocation, error) {
	var results []geoResult
	req := c.client.R().SetQueryParams(coordParams(lat, lon))
	req.SetQueryParam("limit", "1")
	if err := doRequestWithResilience(ctx, c.geo, c.metrics, endpointGeoReverse, req, "/geo/1.0/reverse", &results); err != nil {
		return nil, err
	}
	return toLocations(results), nil
}

// Postal looks up a postal code. The zip endpoint answers an unknown code
// with 404, which is reported as a NotFoundError.
func (c *OpenWeatherClient) Postal(ctx context.Context, code, country string) (weather.GeoLocation, error) {
	var result geoResult
	req := c.client.R().SetQueryParam("zip", code+","+country)
	err := doRequestWithResilience(ctx, c.geo, c.metrics, endpointGeoZip, req, "/geo/1.0/zip", &result)
	if err != nil {
		var pe *weather.ProviderError
		if errors.As(err, &pe) && pe.StatusCode == http.StatusNotFound &&
			common.ContainsAnyFold(pe.Body, "not found", "nothing to geocode") {
			return weather.GeoLocation{}, &weather.NotFoundError{Query: code}
		}
		return weather.GeoLocation{}, err
	}
	if result.Name == "" && result.Lat == 0 && result.Lon == 0 {
		return weather.GeoLocation{}, &weather.NotFoundError{Query: code}
	}
	return result.toLocation(), nil
}

// ShortRange fetches the 5-day / 3-hour forecast series.
func (c *OpenWeatherClient) ShortRange(ctx context.Context, lat, lon float64, units weather.Units) (weather.ForecastSeries, error) {
	var payload struct {
		List []weather.ForecastSeriesEntry `json:"list"`
		City struct {
			Timezone int `json:"timezone"`
		} `json:"city"`
	}
	req := c.client.R().SetQueryParams(coordParams(lat, lon))
	req.SetQueryParam("units", string(units))
	if err := doRequestWithResilience(ctx, c.forecast, c.metrics, endpointShortRange, req, "/data/2.5/forecast", &payload); err != nil {
		return weather.ForecastSeries{}, err
	}
	return weather.ForecastSeries{Entries: payload.List, TimezoneOffset: payload.City.Timezone}, nil
}

// PrimaryDaily fetches the One Call daily and hourly forecast.
func (c *OpenWeatherClient) PrimaryDaily(ctx context.Context, lat, lon float64, units weather.Units) (weather.PrimaryDailyResponse, error) {
	var payload weather.PrimaryDailyResponse
	req := c.client.R().SetQueryParams(coordParams(lat, lon))
	req.SetQueryParams(map[string]string{
		"units":   string(units),
		"exclude": "current,minutely,alerts",
	})
	if err := doRequestWithResilience(ctx, c.daily, c.metrics, endpointPrimaryDaily, req, "/data/3.0/onecall", &payload); err != nil {
		return weather.PrimaryDailyResponse{}, err
	}
	return payload, nil
}

// LegacyDaily fetches the older daily forecast endpoint.
func (c *OpenWeatherClient) LegacyDaily(ctx context.Context, lat, lon float64, units weather.Units, count int) (weather.LegacyDailyResponse, error) {
	var payload weather.LegacyDailyResponse
	req := c.client.R().SetQueryParams(coordParams(lat, lon))
	req.SetQueryParams(map[string]string{
		"units": string(units),
		"cnt":   strconv.Itoa(count),
	})
	if err := doRequestWithResilience(ctx, c.daily, c.metrics, endpointLegacyDaily, req, "/data/2.5/forecast/daily", &payload); err != nil {
		return weather.LegacyDailyResponse{}, err
	}
	return payload, nil
}

func coordParams(lat, lon float64) map[string]string {
	return map[string]string{
		"lat": strconv.FormatFloat(lat, 'f', -1, 64),
		"lon": strconv.FormatFloat(lon, 'f', -1, 64),
	}
}
