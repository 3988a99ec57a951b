package weather

import "strings"

// Score adjustments for the heuristic ranking. Lower totals rank higher.
const (
	countryMatchBonus     = 40
	countryMismatchCost   = 20
	stateMatchBonus       = 25
	stateMismatchCost     = 15
	nonUSStateHintPenalty = 10
)

// Scorer ranks a geocoding candidate against the query that produced it.
// Lower scores are better.
type Scorer interface {
	Score(query string, candidate GeoLocation) float64
}

// HeuristicScorer combines edit distance against "name, state, country" with
// additive country and state hint adjustments.
type HeuristicScorer struct {
	regions *RegionTable
}

// NewHeuristicScorer returns a scorer backed by regions. A nil table gets a fresh one.
func NewHeuristicScorer(regions *RegionTable) *HeuristicScorer {
	if regions == nil {
		regions = NewRegionTable()
	}
	return &HeuristicScorer{regions: regions}
}

func (s *HeuristicScorer) Score(query string, c GeoLocation) float64 {
	score := float64(Distance(strings.TrimSpace(query), candidateText(c)))

	hints := parseHints(query, c.Name)
	if hints.empty() {
		return score
	}

	countries := s.regions.MentionedCountries(hints)
	country := strings.ToUpper(strings.TrimSpace(c.Country))
	switch {
	case countries[country]:
		score -= countryMatchBonus
	case len(countries) > 0:
		score += countryMismatchCost
	}

	switch {
	case hints.mentionsState(c.State):
		score -= stateMatchBonus
	case hints.mentionsAnyUSState():
		score += stateMismatchCost
		if country != "US" {
			score += nonUSStateHintPenalty
		}
	}

	return score
}

func candidateText(c GeoLocation) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Name, c.State, c.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// bestFirst moves the lowest-scoring candidate to the front and keeps the
// rest in provider order. Ties go to the earliest candidate.
func bestFirst(scorer Scorer, query string, candidates []GeoLocation) []GeoLocation {
	if len(candidates) == 0 {
		return nil
	}

	best := 0
	bestScore := scorer.Score(query, candidates[0])
	for i := 1; i < len(candidates); i++ {
		if s := scorer.Score(query, candidates[i]); s < bestScore {
			best, bestScore = i, s
		}
	}

	out := make([]GeoLocation, 0, len(candidates))
	out = append(out, candidates[best])
	out = append(out, candidates[:best]...)
	return append(out, candidates[best+1:]...)
}
