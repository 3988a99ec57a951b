package weather

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ServiceConfig carries the tunables for a Service.
type ServiceConfig struct {
	AllowedCountries []string
	OutlookDays      int
	Logger           logrus.FieldLogger
}

// Service orchestrates location resolution, forecast fetching, and snapshot persistence.
type Service struct {
	resolver    *Resolver
	suggestions *SuggestionEngine
	forecasts   ForecastSource
	outlook     *OutlookMerger
	store       Store
	logger      logrus.FieldLogger
	now         func() time.Time
}

// NewService wires a Service around a provider. store may be nil when
// snapshots are not needed.
func NewService(provider Provider, store Store, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}

	resolver := NewResolver(provider,
		WithAllowedCountries(cfg.AllowedCountries...),
		WithResolverLogger(logger),
	)

	return &Service{
		resolver:    resolver,
		suggestions: NewSuggestionEngine(resolver, logger),
		forecasts:   provider,
		outlook:     NewOutlookMerger(provider, cfg.OutlookDays, logger),
		store:       store,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// FetchOptimisticForecast resolves query and builds a forecast for it.
// Resolution and short-range failures propagate; extended outlook failures
// degrade into an advisory.
func (s *Service) FetchOptimisticForecast(ctx context.Context, query string, units Units) (OptimisticForecast, error) {
	loc, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return OptimisticForecast{}, err
	}
	return s.buildForecast(ctx, loc, units)
}

// FetchForecastByCoordinates builds a forecast for a coordinate pair, labeling
// it through reverse geocoding.
func (s *Service) FetchForecastByCoordinates(ctx context.Context, lat, lon float64, units Units) (OptimisticForecast, error) {
	loc, err := s.resolver.ResolveCoordinates(ctx, lat, lon)
	if err != nil {
		return OptimisticForecast{}, err
	}
	return s.buildForecast(ctx, loc, units)
}

func (s *Service) buildForecast(ctx context.Context, loc GeoLocation, units Units) (OptimisticForecast, error) {
	series, err := s.forecasts.ShortRange(ctx, loc.Lat, loc.Lon, units)
	if err != nil {
		return OptimisticForecast{}, err
	}
	if len(series.Entries) == 0 {
		return OptimisticForecast{}, &MalformedDataError{Reason: "short-range forecast returned no entries"}
	}

	window := WindowOf(series.Entries)
	first := window[0]
	outlook := s.outlook.Build(ctx, loc, units)

	s.logger.WithFields(logrus.Fields{
		"location":         loc.Label(),
		"units":            units,
		"extendedDays":     len(outlook.Extended.Days),
		"extendedComplete": outlook.Extended.IsComplete,
	}).Debug("built optimistic forecast")

	return OptimisticForecast{
		LocationLabel:  loc.Label(),
		Location:       loc,
		Coordinates:    Coordinates{Lat: loc.Lat, Lon: loc.Lon},
		Units:          units,
		Temperature:    AggregateTemperature(window, units),
		SkySummary:     SkySummary(first),
		Highlights:     DeriveHighlights(window, units, series.TimezoneOffset),
		Extended:       &outlook.Extended,
		Hourly:         outlook.Hourly,
		TimezoneOffset: series.TimezoneOffset,
		NextUpdate:     localTime(first.Dt, series.TimezoneOffset).Format("Mon 3:04 PM"),
	}, nil
}

// Suggest returns autocomplete candidates for query.
func (s *Service) Suggest(ctx context.Context, query string) []LocationSuggestion {
	return s.suggestions.Suggest(ctx, query)
}

// NewSearchSession starts an incremental search session sharing this service's engine.
func (s *Service) NewSearchSession() *SearchSession {
	return NewSearchSession(s.suggestions)
}

// FetchAndStore builds a forecast for a tracked query and saves it as a
// snapshot. On failure the last good snapshot is left in place.
func (s *Service) FetchAndStore(ctx context.Context, query string, units Units) error {
	forecast, err := s.FetchOptimisticForecast(ctx, query, units)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"query": query,
			"units": units,
			"error": err,
		}).Warn("refresh failed; keeping last good snapshot if any")
		return err
	}

	if s.store == nil {
		return nil
	}
	s.store.SaveSnapshot(ForecastSnapshot{
		Query:     query,
		Units:     units,
		FetchedAt: s.now(),
		Forecast:  forecast,
	})
	return nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(query string, units Units) (ForecastSnapshot, error) {
	if s.store == nil {
		return ForecastSnapshot{}, ErrNoSnapshots
	}
	return s.store.GetLatest(query, units)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(query string, units Units, from, to time.Time) ([]ForecastSnapshot, error) {
	if s.store == nil {
		return nil, ErrNoSnapshots
	}
	return s.store.GetRange(query, units, from, to)
}
