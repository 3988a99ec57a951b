package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/optimistic-forecast/internal/api/http"
	"github.com/i474232898/optimistic-forecast/internal/config"
	"github.com/i474232898/optimistic-forecast/internal/logging"
	"github.com/i474232898/optimistic-forecast/internal/observability"
	"github.com/i474232898/optimistic-forecast/internal/scheduler"
	"github.com/i474232898/optimistic-forecast/internal/store"
	"github.com/i474232898/optimistic-forecast/internal/weather"
	"github.com/i474232898/optimistic-forecast/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// OpenWeather client with circuit breaker, then rate limiting and geocode caching.
	client, err := providers.NewOpenWeatherClient(providers.OpenWeatherConfig{
		APIKey:  cfg.OpenWeatherAPIKey,
		BaseURL: cfg.OpenWeatherBaseURL,
		Timeout: cfg.HTTPTimeout,
	}, metrics, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create weather provider")
	}
	var provider weather.Provider = client
	provider = providers.NewRateLimitedProvider(provider, cfg.ProviderRateLimit, cfg.ProviderRateBurst)
	provider = providers.NewCachedProvider(provider, cfg.GeocodeCacheTTL, metrics)

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Core service orchestrating resolution, forecasts, and snapshots.
	service := weather.NewService(provider, memStore, weather.ServiceConfig{
		AllowedCountries: cfg.AllowedCountries,
		OutlookDays:      cfg.OutlookDays,
		Logger:           log,
	})

	// Scheduler that periodically refreshes tracked locations.
	tracked := make([]scheduler.TrackedLocation, 0, len(cfg.TrackedLocations))
	for _, q := range cfg.TrackedLocations {
		tracked = append(tracked, scheduler.TrackedLocation{Query: q, Units: cfg.DefaultUnits})
	}
	sched := scheduler.New(tracked, cfg.RefreshInterval, service, log, metrics)
	if err := sched.Start(); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "optimistic-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler:          httpapi.NewErrorHandler(log),
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output: log.WriterLevel(logrus.InfoLevel),
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "optimistic-forecast",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service, httpapi.Options{
		DefaultUnits: cfg.DefaultUnits,
		Metrics:      metrics,
	})

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Error("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
}
