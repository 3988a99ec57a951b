package store

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/optimistic-forecast/internal/weather"
)

func snapshotAt(query string, at time.Time) weather.ForecastSnapshot {
	return weather.ForecastSnapshot{
		Query:     query,
		Units:     weather.UnitsImperial,
		FetchedAt: at,
		Forecast:  weather.OptimisticForecast{LocationLabel: query},
	}
}

func TestMemoryStore_LatestAndRange(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s := NewMemoryStore(10, 0, WithClock(clock))

	t0 := clock.Now()
	s.SaveSnapshot(snapshotAt("Austin, TX", t0))
	s.SaveSnapshot(snapshotAt("Austin, TX", t0.Add(30*time.Minute)))
	s.SaveSnapshot(snapshotAt("Austin, TX", t0.Add(time.Hour)))

	latest, err := s.GetLatest("austin, tx", weather.UnitsImperial)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour), latest.FetchedAt)

	got, err := s.GetRange("Austin, TX", weather.UnitsImperial, t0, t0.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = s.GetLatest("Austin, TX", weather.UnitsMetric)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetRange("Austin, TX", weather.UnitsImperial, t0.Add(2*time.Hour), t0.Add(3*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_RetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.SaveSnapshot(snapshotAt("Boston", base.Add(time.Duration(i)*time.Hour)))
	}

	got, err := s.GetRange("Boston", weather.UnitsImperial, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, base.Add(3*time.Hour), got[0].FetchedAt)
}

func TestMemoryStore_RetentionByAge(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s := NewMemoryStore(0, 2*time.Hour, WithClock(clock))

	s.SaveSnapshot(snapshotAt("Denver", clock.Now()))
	clock.Advance(90 * time.Minute)
	s.SaveSnapshot(snapshotAt("Denver", clock.Now()))
	clock.Advance(time.Hour)
	s.SaveSnapshot(snapshotAt("Denver", clock.Now()))

	got, err := s.GetRange("Denver", weather.UnitsImperial, time.Time{}, clock.Now())
	require.NoError(t, err)
	assert.Len(t, got, 2, "the first snapshot aged out")

	clock.Advance(24 * time.Hour)
	s.SaveSnapshot(snapshotAt("Denver", clock.Now().Add(-48*time.Hour)))
	latest, err := s.GetLatest("Denver", weather.UnitsImperial)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(-48*time.Hour), latest.FetchedAt, "the newest snapshot is always kept")
}

func TestMemoryStore_StampsMissingFetchTime(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s := NewMemoryStore(0, 0, WithClock(clock))

	s.SaveSnapshot(weather.ForecastSnapshot{Query: "Miami", Units: weather.UnitsMetric})
	latest, err := s.GetLatest("Miami", weather.UnitsMetric)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), latest.FetchedAt)
}
