package weather

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePostalQuery(t *testing.T) {
	tests := []struct {
		in      string
		want    PostalQuery
		matches bool
	}{
		{in: "94103, us", want: PostalQuery{Code: "94103", Country: "us"}, matches: true},
		{in: "94103", want: PostalQuery{Code: "94103", Country: "US"}, matches: true},
		{in: " SW1A-1AA ,GB", want: PostalQuery{Code: "SW1A-1AA", Country: "GB"}, matches: true},
		{in: "Lisbon, PT"},
		{in: "12"},
		{in: "12345678901"},
		{in: "94103, USA"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePostalQuery(tt.in)
			assert.Equal(t, tt.matches, ok)
			if tt.matches {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolve_EditDistancePicksClosest(t *testing.T) {
	fp := &fakeProvider{direct: map[string][]GeoLocation{
		"cincinatti, oh, us": {
			{Name: "Centerville", State: "Ohio", Country: "US", Lat: 39.62, Lon: -84.15},
			{Name: "Cincinnati", State: "Ohio", Country: "US", Lat: 39.10, Lon: -84.51},
		},
	}}

	loc, err := NewResolver(fp).Resolve(context.Background(), "Cincinatti, OH, US")
	require.NoError(t, err)
	assert.Equal(t, "Cincinnati", loc.Name)
}

func TestResolve_CountryHintOutweighsDistance(t *testing.T) {
	fp := &fakeProvider{direct: map[string][]GeoLocation{
		"sydney, australia": {
			{Name: "Sydney", State: "Nova Scotia", Country: "CA", Lat: 46.14, Lon: -60.19},
			{Name: "Sydney", State: "New South Wales", Country: "AU", Lat: -33.87, Lon: 151.21},
		},
	}}

	loc, err := NewResolver(fp).Resolve(context.Background(), "Sydney, Australia")
	require.NoError(t, err)
	assert.Equal(t, "AU", loc.Country)
}

func TestResolve_StateHintPrefersUS(t *testing.T) {
	mx := GeoLocation{Name: "Seattle", State: "Jalisco", Country: "MX", Lat: 20.6, Lon: -103.3}

	t.Run("with state", func(t *testing.T) {
		fp := &fakeProvider{direct: map[string][]GeoLocation{
			"seattle, wa": {mx, {Name: "Seattle", State: "Washington", Country: "US", Lat: 47.6, Lon: -122.3}},
		}}
		loc, err := NewResolver(fp).Resolve(context.Background(), "Seattle, WA")
		require.NoError(t, err)
		assert.Equal(t, "US", loc.Country)
		assert.Equal(t, "Washington", loc.State)
	})

	t.Run("state stripped", func(t *testing.T) {
		fp := &fakeProvider{direct: map[string][]GeoLocation{
			"seattle, wa": {mx, {Name: "Seattle", Country: "US", Lat: 47.6, Lon: -122.3}},
		}}
		loc, err := NewResolver(fp).Resolve(context.Background(), "Seattle, WA")
		require.NoError(t, err)
		assert.Equal(t, "US", loc.Country)
	})
}

func TestResolve_TiesKeepProviderOrder(t *testing.T) {
	first := GeoLocation{Name: "Springfield", State: "Illinois", Country: "US", Lat: 39.8, Lon: -89.6}
	second := GeoLocation{Name: "Springfield", State: "Illinois", Country: "US", Lat: 39.9, Lon: -89.7}
	fp := &fakeProvider{direct: map[string][]GeoLocation{"springfield": {first, second}}}

	loc, err := NewResolver(fp).Resolve(context.Background(), "Springfield")
	require.NoError(t, err)
	assert.Equal(t, first, loc)
}

func TestResolve_EmptyQuery(t *testing.T) {
	_, err := NewResolver(&fakeProvider{}).Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestResolve_PostalIsAuthoritative(t *testing.T) {
	sf := GeoLocation{Name: "San Francisco", Country: "US", Lat: 37.77, Lon: -122.41}
	fp := &fakeProvider{postal: map[string]GeoLocation{"94103|US": sf}}

	loc, err := NewResolver(fp).Resolve(context.Background(), "94103")
	require.NoError(t, err)
	assert.Equal(t, sf, loc)
	assert.Zero(t, fp.called("direct:94103"))
}

func TestResolve_PostalFailureFallsBackToFreeText(t *testing.T) {
	loc := GeoLocation{Name: "Route 66", Country: "US", Lat: 35, Lon: -101}
	fp := &fakeProvider{
		postalErr: errors.New("boom"),
		direct:    map[string][]GeoLocation{"66a": {loc}},
	}

	got, err := NewResolver(fp).Resolve(context.Background(), "66A")
	require.NoError(t, err)
	assert.Equal(t, loc, got)
}

func TestResolve_CommaFallback(t *testing.T) {
	portland := GeoLocation{Name: "Portland", State: "Oregon", Country: "US", Lat: 45.5, Lon: -122.7}
	fp := &fakeProvider{direct: map[string][]GeoLocation{"portland": {portland}}}

	loc, err := NewResolver(fp).Resolve(context.Background(), "Portland, Oregon Coast")
	require.NoError(t, err)
	assert.Equal(t, portland, loc)
	assert.Equal(t, 1, fp.called("direct:Portland, Oregon Coast"))
	assert.Equal(t, 1, fp.called("direct:Portland"))
}

func TestResolve_NotFoundCarriesQuery(t *testing.T) {
	_, err := NewResolver(&fakeProvider{}).Resolve(context.Background(), " Atlantis, XX ")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Atlantis, XX", nf.Query)
	assert.Contains(t, err.Error(), "Atlantis, XX")
}

func TestResolve_DirectErrorPropagates(t *testing.T) {
	boom := &ProviderError{Endpoint: "geo_direct", StatusCode: 500, Body: "oops"}
	_, err := NewResolver(&fakeProvider{directErr: boom}).Resolve(context.Background(), "Paris")
	assert.ErrorIs(t, err, boom)
}

func TestResolve_AllowedCountries(t *testing.T) {
	fp := &fakeProvider{direct: map[string][]GeoLocation{
		"paris": {
			{Name: "Paris", Country: "FR", Lat: 48.85, Lon: 2.35},
			{Name: "Paris", State: "Texas", Country: "US", Lat: 33.66, Lon: -95.55},
		},
	}}

	loc, err := NewResolver(fp, WithAllowedCountries("us")).Resolve(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, "US", loc.Country)
}

func TestResolveCoordinates(t *testing.T) {
	t.Run("reverse hit keeps requested coordinates", func(t *testing.T) {
		fp := &fakeProvider{reverse: []GeoLocation{{Name: "Austin", State: "Texas", Country: "US", Lat: 30.27, Lon: -97.74}}}
		loc, err := NewResolver(fp).ResolveCoordinates(context.Background(), 30.3, -97.7)
		require.NoError(t, err)
		assert.Equal(t, "Austin", loc.Name)
		assert.Equal(t, 30.3, loc.Lat)
		assert.Equal(t, -97.7, loc.Lon)
	})

	t.Run("no place falls back to a generic label", func(t *testing.T) {
		loc, err := NewResolver(&fakeProvider{}).ResolveCoordinates(context.Background(), 0, -140)
		require.NoError(t, err)
		assert.Equal(t, "Current location", loc.Name)
	})
}

func TestHeuristicScorer_Adjustments(t *testing.T) {
	s := NewHeuristicScorer(nil)
	us := GeoLocation{Name: "Austin", State: "Texas", Country: "US"}
	text := candidateText(us)

	assert.Equal(t, float64(Distance("Austin", text)), s.Score("Austin", us), "bare name names no region")
	assert.Equal(t, float64(Distance("Austin, TX", text)-stateMatchBonus), s.Score("Austin, TX", us))
	assert.Equal(t, float64(Distance("Austin, tx", text)-stateMatchBonus), s.Score("Austin, tx", us), "whole segment counts as a code")
	assert.Equal(t, float64(Distance("Austin TX", text)-stateMatchBonus), s.Score("Austin TX", us))
	assert.Equal(t, float64(Distance("austin tx", text)), s.Score("austin tx", us), "lower-case words are not codes")
	assert.Equal(t, float64(Distance("Austin Texas", text)-stateMatchBonus), s.Score("Austin Texas", us))
	assert.Equal(t, float64(Distance("Austin, Texas, US", text)-stateMatchBonus-countryMatchBonus), s.Score("Austin, Texas, US", us))
	assert.Equal(t, float64(Distance("Austin, Mexico", text)+countryMismatchCost), s.Score("Austin, Mexico", us))
}

func TestHeuristicScorer_CommonWordsAreNotCodes(t *testing.T) {
	s := NewHeuristicScorer(nil)
	rio := GeoLocation{Name: "Rio", Country: "DE"}
	evansville := GeoLocation{Name: "Evansville", State: "Indiana", Country: "US"}

	assert.Equal(t, float64(Distance("Rio de Janeiro", candidateText(rio))), s.Score("Rio de Janeiro", rio))
	assert.Equal(t, float64(Distance("Evansville in winter", candidateText(evansville))), s.Score("Evansville in winter", evansville))
}

func TestHeuristicScorer_NameThatContainsAState(t *testing.T) {
	s := NewHeuristicScorer(nil)
	kcMO := GeoLocation{Name: "Kansas City", State: "Missouri", Country: "US"}
	kcKS := GeoLocation{Name: "Kansas City", State: "Kansas", Country: "US"}

	assert.Equal(t, float64(Distance("Kansas City", candidateText(kcMO))), s.Score("Kansas City", kcMO))
	assert.Equal(t, float64(Distance("Kansas City", candidateText(kcKS))), s.Score("Kansas City", kcKS))
}

func TestResolve_SingleTokenNamesCountry(t *testing.T) {
	fp := &fakeProvider{direct: map[string][]GeoLocation{
		"australia": {
			{Name: "Australia", Country: "US", Lat: 33.4, Lon: -91.1},
			{Name: "Australia", Country: "AU", Lat: -25.27, Lon: 133.78},
		},
	}}

	loc, err := NewResolver(fp).Resolve(context.Background(), "Australia")
	require.NoError(t, err)
	assert.Equal(t, "AU", loc.Country)
}

func TestResolve_CommonWordsDoNotSteerRanking(t *testing.T) {
	rio := GeoLocation{Name: "Rio de Janeiro", State: "Rio de Janeiro", Country: "BR", Lat: -22.91, Lon: -43.17}
	fp := &fakeProvider{direct: map[string][]GeoLocation{
		"rio de janeiro": {
			{Name: "Rio", Country: "DE", Lat: 51.0, Lon: 9.0},
			rio,
		},
	}}

	loc, err := NewResolver(fp).Resolve(context.Background(), "Rio de Janeiro")
	require.NoError(t, err)
	assert.Equal(t, rio, loc)
}
