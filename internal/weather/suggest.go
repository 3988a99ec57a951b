package weather

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const (
	// MinSuggestionQueryLength is the shortest query worth searching.
	MinSuggestionQueryLength = 2
	// MaxSuggestions caps the suggestion list.
	MaxSuggestions = 5
)

// SuggestionEngine produces ranked, deduplicated autocomplete candidates.
// It never fails: a lookup that errors contributes nothing.
type SuggestionEngine struct {
	resolver *Resolver
	logger   logrus.FieldLogger
}

// NewSuggestionEngine builds an engine on top of a resolver's lookups.
func NewSuggestionEngine(resolver *Resolver, logger logrus.FieldLogger) *SuggestionEngine {
	if logger == nil {
		logger = discardLogger()
	}
	return &SuggestionEngine{resolver: resolver, logger: logger}
}

// Suggest returns up to MaxSuggestions candidates for query. Queries shorter
// than MinSuggestionQueryLength return an empty list.
func (e *SuggestionEngine) Suggest(ctx context.Context, query string) []LocationSuggestion {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < MinSuggestionQueryLength {
		return []LocationSuggestion{}
	}

	var candidates []GeoLocation

	if pq, ok := ParsePostalQuery(q); ok {
		loc, err := e.resolver.lookupPostal(ctx, pq)
		if err != nil {
			e.logFailure(q, "postal", err)
		} else {
			candidates = append(candidates, loc)
		}
	}

	ranked, err := e.resolver.lookupRanked(ctx, q, q)
	if err != nil {
		e.logFailure(q, "direct", err)
	}
	candidates = append(candidates, ranked...)

	if prefix, ok := commaPrefix(q); ok {
		broadened, err := e.resolver.lookupRanked(ctx, prefix, q)
		if err != nil {
			e.logFailure(q, "fallback", err)
		}
		candidates = append(candidates, broadened...)
	}

	unique := DedupeLocations(candidates)
	if len(unique) > MaxSuggestions {
		unique = unique[:MaxSuggestions]
	}

	out := make([]LocationSuggestion, len(unique))
	for i, loc := range unique {
		out[i] = LocationSuggestion{Location: loc, SearchValue: loc.Label()}
	}
	return out
}

func (e *SuggestionEngine) logFailure(query, method string, err error) {
	e.logger.WithFields(logrus.Fields{
		"query":  query,
		"method": method,
		"error":  err,
	}).Warn("suggestion lookup failed")
}

// DedupeLocations drops repeated locations by identity key, keeping the first.
func DedupeLocations(locs []GeoLocation) []GeoLocation {
	seen := make(map[string]bool, len(locs))
	out := make([]GeoLocation, 0, len(locs))
	for _, l := range locs {
		k := l.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, l)
	}
	return out
}

// SearchSession tags incremental searches with increasing sequence numbers
// so results from superseded queries can be discarded. In-flight lookups are
// not cancelled.
type SearchSession struct {
	engine *SuggestionEngine
	latest atomic.Uint64
}

// NewSearchSession starts a session backed by engine.
func NewSearchSession(engine *SuggestionEngine) *SearchSession {
	return &SearchSession{engine: engine}
}

// Issue records a new query and returns its sequence number.
func (s *SearchSession) Issue() uint64 {
	return s.latest.Add(1)
}

// IsCurrent reports whether seq belongs to the most recently issued query.
func (s *SearchSession) IsCurrent(seq uint64) bool {
	return s.latest.Load() == seq
}

// Suggest runs a search and reports whether its result is still current.
// Callers must not apply results when current is false.
func (s *SearchSession) Suggest(ctx context.Context, query string) (suggestions []LocationSuggestion, current bool) {
	seq := s.Issue()
	suggestions = s.engine.Suggest(ctx, query)
	return suggestions, s.IsCurrent(seq)
}
