package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/optimistic-forecast/internal/observability"
	"github.com/i474232898/optimistic-forecast/internal/weather"
)

const (
	defaultInterval = 30 * time.Minute
	jobTimeout      = 30 * time.Second
)

// Refresher fetches and stores a forecast for one tracked query.
type Refresher interface {
	FetchAndStore(ctx context.Context, query string, units weather.Units) error
}

// TrackedLocation is a query refreshed on every run.
type TrackedLocation struct {
	Query string
	Units weather.Units
}

// Scheduler periodically refreshes forecasts for tracked locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	locations []TrackedLocation
	interval  time.Duration
	logger    logrus.FieldLogger
	metrics   *observability.Metrics
}

// New creates a new Scheduler.
func New(locations []TrackedLocation, interval time.Duration, refresher Refresher, logger logrus.FieldLogger, metrics *observability.Metrics) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	metrics.TrackedLocations.Set(float64(len(locations)))
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		locations: locations,
		interval:  interval,
		logger:    logger.WithField("component", "scheduler"),
		metrics:   metrics,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Info("no tracked locations configured; nothing to schedule")
		return nil
	}

	if _, err := s.scheduler.Every(s.interval).Do(s.RunOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every tracked location concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	s.logger.Debug("running forecast refresh job")
	s.metrics.RefreshRuns.Inc()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, loc := range s.locations {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			if err := s.refresher.FetchAndStore(ctx, loc.Query, loc.Units); err != nil {
				s.metrics.RefreshFailures.Inc()
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.logger.WithFields(logrus.Fields{
		"tracked": len(s.locations),
		"failed":  failed,
	}).Info("completed forecast refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
