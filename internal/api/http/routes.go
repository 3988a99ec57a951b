package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/optimistic-forecast/internal/observability"
	"github.com/i474232898/optimistic-forecast/internal/weather"
)

var validate = validator.New()

// Options configures the API routes.
type Options struct {
	DefaultUnits weather.Units
	Metrics      *observability.Metrics
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, opts Options) {
	if opts.DefaultUnits == "" {
		opts.DefaultUnits = weather.UnitsImperial
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	h := &handlers{service: service, opts: opts}

	v1 := app.Group("/api/v1")
	v1.Get("/forecast", h.forecast)
	v1.Get("/forecast/coordinates", h.forecastByCoordinates)
	v1.Get("/forecast/latest", h.latest)
	v1.Get("/forecast/history", h.history)
	v1.Get("/suggestions", h.suggestions)
}

type handlers struct {
	service *weather.Service
	opts    Options
}

// unitsQuery is embedded by requests that accept a units parameter.
type unitsQuery struct {
	Units string `validate:"omitempty,oneof=metric imperial"`
}

func (u unitsQuery) resolve(def weather.Units) weather.Units {
	return weather.ParseUnits(u.Units, def)
}

func parseUnits(c *fiber.Ctx) (unitsQuery, error) {
	u := unitsQuery{Units: strings.ToLower(strings.TrimSpace(c.Query("units")))}
	if err := validate.Struct(u); err != nil {
		return u, fiber.NewError(fiber.StatusBadRequest, "units must be metric or imperial")
	}
	return u, nil
}

func (h *handlers) forecast(c *fiber.Ctx) error {
	units, err := parseUnits(c)
	if err != nil {
		return err
	}

	forecast, err := h.service.FetchOptimisticForecast(c.UserContext(), c.Query("q"), units.resolve(h.opts.DefaultUnits))
	h.observe("query", forecast, err)
	if err != nil {
		return err
	}
	return c.JSON(forecast)
}

// coordinatesQuery holds query parameters for the coordinate forecast endpoint.
type coordinatesQuery struct {
	unitsQuery
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func (q *coordinatesQuery) bind(c *fiber.Ctx) error {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return errors.New("lat and lon query parameters are required")
	}

	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return errors.New("lat must be a number")
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return errors.New("lon must be a number")
	}
	q.Units = strings.ToLower(strings.TrimSpace(c.Query("units")))
	return nil
}

func (h *handlers) forecastByCoordinates(c *fiber.Ctx) error {
	var req coordinatesQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	forecast, err := h.service.FetchForecastByCoordinates(c.UserContext(), req.Lat, req.Lon, req.resolve(h.opts.DefaultUnits))
	h.observe("coordinates", forecast, err)
	if err != nil {
		return err
	}
	return c.JSON(forecast)
}

func (h *handlers) observe(kind string, forecast weather.OptimisticForecast, err error) {
	if err != nil {
		h.opts.Metrics.ForecastRequests.WithLabelValues(kind, "error").Inc()
		return
	}
	h.opts.Metrics.ForecastRequests.WithLabelValues(kind, "success").Inc()
	if forecast.Extended != nil && !forecast.Extended.IsComplete {
		h.opts.Metrics.OutlookIncomplete.Inc()
	}
}

func (h *handlers) suggestions(c *fiber.Ctx) error {
	q := c.Query("q")
	return c.JSON(fiber.Map{
		"query":       strings.TrimSpace(q),
		"suggestions": h.service.Suggest(c.UserContext(), q),
	})
}

// trackedQuery identifies a stored forecast series.
type trackedQuery struct {
	unitsQuery
	Query string `validate:"required"`
}

func (q *trackedQuery) bind(c *fiber.Ctx) error {
	q.Query = strings.TrimSpace(c.Query("q"))
	q.Units = strings.ToLower(strings.TrimSpace(c.Query("units")))
	return validate.Struct(q)
}

func (h *handlers) latest(c *fiber.Ctx) error {
	var req trackedQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	snapshot, err := h.service.GetLatest(req.Query, req.resolve(h.opts.DefaultUnits))
	if err != nil {
		return err
	}
	return c.JSON(snapshot)
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Tracked trackedQuery
	From    time.Time `validate:"required"`
	To      time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	if err := h.Tracked.bind(c); err != nil {
		return err
	}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

func (h *handlers) history(c *fiber.Ctx) error {
	var req historyQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	units := req.Tracked.resolve(h.opts.DefaultUnits)
	snapshots, err := h.service.GetRange(req.Tracked.Query, units, req.From, req.To)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"query":     req.Tracked.Query,
		"units":     units,
		"from":      req.From,
		"to":        req.To,
		"snapshots": snapshots,
	})
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
