package weather

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var usStates = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
	"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming", "PR": "Puerto Rico",
}

var usStateCodes = func() map[string]string {
	m := make(map[string]string, len(usStates))
	for code, name := range usStates {
		m[strings.ToLower(name)] = code
	}
	return m
}()

// usStateCode maps a US state name or code to its two-letter code.
func usStateCode(state string) (string, bool) {
	s := strings.TrimSpace(state)
	if s == "" {
		return "", false
	}
	if _, ok := usStates[strings.ToUpper(s)]; ok && len(s) == 2 {
		return strings.ToUpper(s), true
	}
	code, ok := usStateCodes[strings.ToLower(s)]
	return code, ok
}

// countryAliases are informal names the display tables do not carry.
var countryAliases = map[string]string{
	"usa":                      "US",
	"america":                  "US",
	"united states of america": "US",
	"uk":                       "GB",
	"great britain":            "GB",
	"england":                  "GB",
}

// RegionTable resolves ISO country codes and English country names. It is
// built lazily on first use and owned by the resolver that holds it.
type RegionTable struct {
	once  sync.Once
	codes map[string]bool     // upper-case ISO 3166-1 alpha-2 codes
	names map[string][]string // code -> lower-case phrases naming it
}

// NewRegionTable returns an unloaded table.
func NewRegionTable() *RegionTable {
	return &RegionTable{}
}

func (t *RegionTable) load() {
	t.once.Do(func() {
		t.codes = make(map[string]bool, 256)
		t.names = make(map[string][]string, 256)
		namer := display.English.Regions()

		for a := 'A'; a <= 'Z'; a++ {
			for b := 'A'; b <= 'Z'; b++ {
				code := string([]rune{a, b})
				r, err := language.ParseRegion(code)
				if err != nil || !r.IsCountry() {
					continue
				}
				t.codes[code] = true
				if name := namer.Name(r); name != "" {
					t.names[code] = append(t.names[code], normalizePhrase(name))
				}
			}
		}
		for alias, code := range countryAliases {
			t.names[code] = append(t.names[code], alias)
		}
	})
}

// IsCountryCode reports whether tok is an assigned ISO country code.
func (t *RegionTable) IsCountryCode(tok string) bool {
	t.load()
	return len(tok) == 2 && t.codes[strings.ToUpper(tok)]
}

// MentionedCountries returns the set of country codes a query hint refers to,
// either by ISO code or by name.
func (t *RegionTable) MentionedCountries(h queryHints) map[string]bool {
	t.load()
	found := make(map[string]bool)
	for code := range h.codes {
		if t.IsCountryCode(code) {
			found[code] = true
		}
	}
	for code, names := range t.names {
		for _, name := range names {
			if h.containsPhrase(name) {
				found[code] = true
				break
			}
		}
	}
	return found
}

// queryHints is the part of a query that may name a country or state for a
// given candidate.
type queryHints struct {
	tokens []string        // lower-case words
	codes  map[string]bool // upper-case two-letter code candidates
	padded string          // " tok1 tok2 ... "

	// exact is set when the query is nothing but the candidate's name. A
	// phrase then only counts when it spans the whole query, so "Australia"
	// names a country but "Kansas City" does not name a state.
	exact bool
}

// parseHints extracts hints from query for a candidate called name. With a
// comma, every segment after the first is a hint. Without one, the whole
// query is scanned once the candidate's name has been taken out.
//
// Two-letter codes only count when written in upper case ("TX") or as a whole
// comma segment ("austin, tx"), so words like "de" or "in" are not codes.
func parseHints(query, name string) queryHints {
	q := strings.TrimSpace(query)
	h := queryHints{codes: make(map[string]bool)}

	var words []string
	if i := strings.Index(q, ","); i >= 0 {
		for _, seg := range strings.Split(q[i+1:], ",") {
			segWords := splitWords(seg)
			if len(segWords) == 1 && len([]rune(segWords[0])) == 2 {
				h.codes[strings.ToUpper(segWords[0])] = true
			}
			words = append(words, segWords...)
		}
	} else {
		words = splitWords(q)
		if rest, ok := removeWords(words, splitWords(name)); ok {
			if len(rest) == 0 {
				h.exact = true
			} else {
				words = rest
			}
		}
	}

	h.tokens = make([]string, len(words))
	for i, w := range words {
		if isUpperCode(w) {
			h.codes[w] = true
		}
		h.tokens[i] = strings.ToLower(w)
	}
	h.padded = " " + strings.Join(h.tokens, " ") + " "
	return h
}

// removeWords drops the first case-insensitive run of sub from words.
func removeWords(words, sub []string) ([]string, bool) {
	if len(sub) == 0 || len(sub) > len(words) {
		return nil, false
	}
outer:
	for i := 0; i+len(sub) <= len(words); i++ {
		for j := range sub {
			if !strings.EqualFold(words[i+j], sub[j]) {
				continue outer
			}
		}
		rest := make([]string, 0, len(words)-len(sub))
		rest = append(rest, words[:i]...)
		return append(rest, words[i+len(sub):]...), true
	}
	return nil, false
}

func isUpperCode(w string) bool {
	if len(w) != 2 {
		return false
	}
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (h queryHints) empty() bool { return len(h.tokens) == 0 }

func (h queryHints) hasCode(code string) bool {
	if h.exact && len(h.tokens) != 1 {
		return false
	}
	return h.codes[strings.ToUpper(code)]
}

// containsPhrase matches a normalized phrase on word boundaries.
func (h queryHints) containsPhrase(phrase string) bool {
	if phrase == "" || h.empty() {
		return false
	}
	if h.exact {
		return h.padded == " "+phrase+" "
	}
	return strings.Contains(h.padded, " "+phrase+" ")
}

// mentionsState reports whether the hint names the given state by name or US code.
func (h queryHints) mentionsState(state string) bool {
	state = strings.TrimSpace(state)
	if state == "" || h.empty() {
		return false
	}
	if code, ok := usStateCode(state); ok {
		if h.hasCode(code) || h.containsPhrase(normalizePhrase(usStates[code])) {
			return true
		}
	}
	return h.containsPhrase(normalizePhrase(state))
}

// mentionsAnyUSState reports whether the hint names some US state.
func (h queryHints) mentionsAnyUSState() bool {
	if h.empty() {
		return false
	}
	for code, name := range usStates {
		if h.hasCode(code) || h.containsPhrase(normalizePhrase(name)) {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalizePhrase(s string) string {
	return strings.Join(splitWords(strings.ToLower(s)), " ")
}
