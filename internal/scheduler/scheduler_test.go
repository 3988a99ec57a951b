package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/optimistic-forecast/internal/observability"
	"github.com/i474232898/optimistic-forecast/internal/weather"
)

type fakeRefresher struct {
	mu      sync.Mutex
	queries []string
	fail    map[string]bool
}

func (f *fakeRefresher) FetchAndStore(_ context.Context, query string, _ weather.Units) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.fail[query] {
		return errors.New("refresh failed")
	}
	return nil
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func TestRunOnce_RefreshesEveryLocation(t *testing.T) {
	logger, hook := test.NewNullLogger()
	metrics := observability.NewMetricsForTesting()
	refresher := &fakeRefresher{fail: map[string]bool{"Denver, CO": true}}
	locations := []TrackedLocation{
		{Query: "Austin, TX", Units: weather.UnitsImperial},
		{Query: "Denver, CO", Units: weather.UnitsImperial},
		{Query: "London, GB", Units: weather.UnitsMetric},
	}

	s := New(locations, time.Hour, refresher, logger, metrics)
	s.RunOnce()

	assert.ElementsMatch(t, []string{"Austin, TX", "Denver, CO", "London, GB"}, refresher.queries)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RefreshRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RefreshFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.TrackedLocations))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, 1, hook.LastEntry().Data["failed"])
}

func TestStart_RunsImmediately(t *testing.T) {
	logger, _ := test.NewNullLogger()
	refresher := &fakeRefresher{}

	s := New([]TrackedLocation{{Query: "Austin, TX", Units: weather.UnitsImperial}}, time.Hour, refresher, logger, observability.NewMetricsForTesting())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return refresher.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStart_NoLocations(t *testing.T) {
	logger, hook := test.NewNullLogger()

	s := New(nil, 0, &fakeRefresher{}, logger, observability.NewMetricsForTesting())
	require.NoError(t, s.Start())
	s.Stop()

	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "no tracked locations")
}
