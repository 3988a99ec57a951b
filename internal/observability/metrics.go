package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "optimistic_forecast"

// Metrics holds the Prometheus counters, histograms, and gauges for the forecast service.
type Metrics struct {
	// Upstream provider metrics.
	ProviderRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,error,circuit_open}
	ProviderDuration *prometheus.HistogramVec // labels: endpoint
	GeocodeCache     *prometheus.CounterVec   // labels: method={direct,reverse,postal}, result={hit,miss}

	// Request metrics.
	ForecastRequests  *prometheus.CounterVec // labels: kind={query,coordinates}, outcome={success,error}
	OutlookIncomplete prometheus.Counter

	// Refresh job metrics.
	RefreshRuns      prometheus.Counter
	RefreshFailures  prometheus.Counter
	TrackedLocations prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Weather provider requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Weather provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      "Forecast requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		OutlookIncomplete: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outlook_incomplete_total",
			Help:      "Forecasts served with a degraded extended outlook.",
		}),
		RefreshRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Tracked-location refresh job runs.",
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_failures_total",
			Help:      "Tracked-location refreshes that failed.",
		}),
		TrackedLocations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_locations",
			Help:      "Number of locations refreshed by the scheduler.",
		}),
	}

	prometheus.MustRegister(
		m.ProviderRequests,
		m.ProviderDuration,
		m.GeocodeCache,
		m.ForecastRequests,
		m.OutlookIncomplete,
		m.RefreshRuns,
		m.RefreshFailures,
		m.TrackedLocations,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ProviderRequests:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "provider_requests_total"}, []string{"endpoint", "outcome"}),
		ProviderDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "provider_request_duration_seconds"}, []string{"endpoint"}),
		GeocodeCache:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_cache_total"}, []string{"method", "result"}),
		ForecastRequests:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "forecast_requests_total"}, []string{"kind", "outcome"}),
		OutlookIncomplete: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "outlook_incomplete_total"}),
		RefreshRuns:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "refresh_runs_total"}),
		RefreshFailures:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "refresh_failures_total"}),
		TrackedLocations:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "tracked_locations"}),
	}
}
