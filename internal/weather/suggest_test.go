package weather

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeLocations(t *testing.T) {
	a := GeoLocation{Name: "Austin", State: "Texas", Country: "US", Lat: 30.2672, Lon: -97.7431}
	aAgain := GeoLocation{Name: " austin ", State: "TEXAS", Country: "us", Lat: 30.2672, Lon: -97.7431}
	b := GeoLocation{Name: "Austin", State: "Minnesota", Country: "US", Lat: 43.6666, Lon: -92.9746}

	got := DedupeLocations([]GeoLocation{a, b, aAgain})
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0])
	assert.Equal(t, b, got[1])
}

func TestSuggest_TooShort(t *testing.T) {
	fp := &fakeProvider{}
	engine := NewSuggestionEngine(NewResolver(fp), nil)

	got := engine.Suggest(context.Background(), " a ")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, fp.calls)
}

func TestSuggest_ConcatenatesDedupesAndLabels(t *testing.T) {
	sf := GeoLocation{Name: "San Francisco", State: "California", Country: "US", Lat: 37.7749, Lon: -122.4194}
	oakland := GeoLocation{Name: "Oakland", State: "California", Country: "US", Lat: 37.8044, Lon: -122.2712}
	fp := &fakeProvider{
		postal: map[string]GeoLocation{"94103|US": sf},
		direct: map[string][]GeoLocation{"94103": {oakland, sf}},
	}

	got := NewSuggestionEngine(NewResolver(fp), nil).Suggest(context.Background(), "94103")
	require.Len(t, got, 2)
	assert.Equal(t, sf, got[0].Location, "postal match comes first")
	assert.Equal(t, "San Francisco, CA", got[0].SearchValue)
	assert.Equal(t, oakland, got[1].Location)
}

func TestSuggest_IncludesCommaFallback(t *testing.T) {
	portlandME := GeoLocation{Name: "Portland", State: "Maine", Country: "US", Lat: 43.66, Lon: -70.26}
	portlandOR := GeoLocation{Name: "Portland", State: "Oregon", Country: "US", Lat: 45.52, Lon: -122.68}
	fp := &fakeProvider{direct: map[string][]GeoLocation{
		"portland, or": {portlandOR},
		"portland":     {portlandME, portlandOR},
	}}

	got := NewSuggestionEngine(NewResolver(fp), nil).Suggest(context.Background(), "Portland, OR")
	require.Len(t, got, 2)
	assert.Equal(t, "Portland, OR", got[0].SearchValue)
	assert.Equal(t, "Portland, ME", got[1].SearchValue)
}

func TestSuggest_CapsAtFive(t *testing.T) {
	var many []GeoLocation
	for i := 0; i < 5; i++ {
		many = append(many, GeoLocation{Name: fmt.Sprintf("Springfield %d", i), Country: "US", Lat: float64(i), Lon: float64(i)})
	}
	extra := GeoLocation{Name: "Springfield", State: "Oregon", Country: "US", Lat: 44.05, Lon: -123.02}
	fp := &fakeProvider{direct: map[string][]GeoLocation{
		"springfield, or": many,
		"springfield":     {extra},
	}}

	got := NewSuggestionEngine(NewResolver(fp), nil).Suggest(context.Background(), "Springfield, OR")
	assert.Len(t, got, MaxSuggestions)
}

func TestSuggest_FailuresYieldEmptyList(t *testing.T) {
	boom := errors.New("upstream down")
	fp := &fakeProvider{directErr: boom, postalErr: boom}

	got := NewSuggestionEngine(NewResolver(fp), nil).Suggest(context.Background(), "10001, US")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchSession_DiscardsSupersededResults(t *testing.T) {
	session := NewSearchSession(NewSuggestionEngine(NewResolver(&fakeProvider{}), nil))

	older := session.Issue()
	newer := session.Issue()

	assert.False(t, session.IsCurrent(older))
	assert.True(t, session.IsCurrent(newer))

	_, current := session.Suggest(context.Background(), "Boston")
	assert.True(t, current)
	assert.False(t, session.IsCurrent(newer))
}
