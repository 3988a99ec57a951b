package weather

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// DirectLookupLimit caps free-text geocoding candidates per lookup.
const DirectLookupLimit = 5

// postalRe matches "CODE" or "CODE, CC". The code must also contain a digit.
var postalRe = regexp.MustCompile(`^([A-Za-z0-9-]{3,10})(?:\s*,\s*([A-Za-z]{2}))?$`)

// PostalQuery is a parsed postal-code query.
type PostalQuery struct {
	Code    string
	Country string
}

// ParsePostalQuery reports whether q looks like a postal code with an
// optional two-letter country suffix. The country defaults to "US".
func ParsePostalQuery(q string) (PostalQuery, bool) {
	m := postalRe.FindStringSubmatch(strings.TrimSpace(q))
	if m == nil || !strings.ContainsAny(m[1], "0123456789") {
		return PostalQuery{}, false
	}
	country := m[2]
	if country == "" {
		country = "US"
	}
	return PostalQuery{Code: m[1], Country: country}, true
}

// Resolver turns free text or coordinates into a single GeoLocation.
type Resolver struct {
	geocoder Geocoder
	scorer   Scorer
	allowed  map[string]bool
	logger   logrus.FieldLogger
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithScorer swaps the candidate ranking strategy.
func WithScorer(s Scorer) ResolverOption {
	return func(r *Resolver) { r.scorer = s }
}

// WithAllowedCountries restricts results to the given ISO codes. No codes means no restriction.
func WithAllowedCountries(codes ...string) ResolverOption {
	return func(r *Resolver) {
		r.allowed = make(map[string]bool, len(codes))
		for _, c := range codes {
			if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
				r.allowed[c] = true
			}
		}
	}
}

// WithResolverLogger sets the logger used for swallowed lookup failures.
func WithResolverLogger(l logrus.FieldLogger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a Resolver. Without options it ranks with a
// HeuristicScorer and accepts every country.
func NewResolver(g Geocoder, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		geocoder: g,
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.scorer == nil {
		r.scorer = NewHeuristicScorer(nil)
	}
	return r
}

// Resolve returns the best location for query. Postal codes are looked up
// directly; everything else goes through ranked free-text geocoding with a
// comma-prefix fallback.
func (r *Resolver) Resolve(ctx context.Context, query string) (GeoLocation, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return GeoLocation{}, ErrEmptyQuery
	}

	if pq, ok := ParsePostalQuery(q); ok {
		loc, err := r.lookupPostal(ctx, pq)
		if err == nil {
			return loc, nil
		}
		r.logger.WithFields(logrus.Fields{"query": q, "error": err}).Debug("postal lookup failed, falling back to free text")
	}

	ranked, err := r.lookupRanked(ctx, q, q)
	if err != nil {
		return GeoLocation{}, err
	}
	if len(ranked) > 0 {
		return ranked[0], nil
	}

	if prefix, ok := commaPrefix(q); ok {
		ranked, err = r.lookupRanked(ctx, prefix, q)
		if err != nil {
			return GeoLocation{}, err
		}
		if len(ranked) > 0 {
			return ranked[0], nil
		}
	}

	return GeoLocation{}, &NotFoundError{Query: q}
}

// ResolveCoordinates reverse-geocodes a coordinate pair. When the provider
// knows no place there, a generic "Current location" is returned.
func (r *Resolver) ResolveCoordinates(ctx context.Context, lat, lon float64) (GeoLocation, error) {
	results, err := r.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		return GeoLocation{}, err
	}
	if len(results) == 0 {
		return GeoLocation{Name: "Current location", Lat: lat, Lon: lon}, nil
	}
	loc := results[0]
	loc.Lat, loc.Lon = lat, lon
	return loc, nil
}

func (r *Resolver) lookupPostal(ctx context.Context, pq PostalQuery) (GeoLocation, error) {
	loc, err := r.geocoder.Postal(ctx, pq.Code, pq.Country)
	if err != nil {
		return GeoLocation{}, err
	}
	if !r.countryAllowed(loc.Country) {
		return GeoLocation{}, &NotFoundError{Query: pq.Code}
	}
	return loc, nil
}

// lookupRanked geocodes lookup, drops disallowed countries, and puts the
// candidate that best matches scoreAgainst first.
func (r *Resolver) lookupRanked(ctx context.Context, lookup, scoreAgainst string) ([]GeoLocation, error) {
	candidates, err := r.geocoder.Direct(ctx, lookup, DirectLookupLimit)
	if err != nil {
		return nil, err
	}

	filtered := candidates[:0:0]
	for _, c := range candidates {
		if r.countryAllowed(c.Country) {
			filtered = append(filtered, c)
		}
	}
	return bestFirst(r.scorer, scoreAgainst, filtered), nil
}

func (r *Resolver) countryAllowed(country string) bool {
	if len(r.allowed) == 0 {
		return true
	}
	return r.allowed[strings.ToUpper(strings.TrimSpace(country))]
}

// commaPrefix returns the text before the first comma when it differs from q.
func commaPrefix(q string) (string, bool) {
	i := strings.Index(q, ",")
	if i < 0 {
		return "", false
	}
	prefix := strings.TrimSpace(q[:i])
	return prefix, prefix != "" && prefix != q
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
