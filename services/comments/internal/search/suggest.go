package search

import (
	"strings"
)

// Suggester proposes a corrected query and alternative phrasings when a
// search returns nothing. Implementations are best-effort; returning empty
// values is always acceptable.
type Suggester interface {
	Suggest(terms []string) (corrected string, alternatives []string)
}

// EditDistanceSuggester corrects each term against a fixed vocabulary using
// Levenshtein distance, and offers pluralisation/synonym variants.
type EditDistanceSuggester struct {
	Vocabulary []string
	Synonyms   map[string][]string
	// MaxDistance is the largest edit distance still considered a correction.
	MaxDistance int
}

// NewSuggester builds the default suggester over the terms the dashboard's
// users actually search for.
func NewSuggester() *EditDistanceSuggester {
	return &EditDistanceSuggester{
		Vocabulary: []string{
			"great", "good", "bad", "terrible", "awesome", "love", "hate",
			"product", "service", "shipping", "delivery", "refund", "price",
			"quality", "support", "order", "broken", "amazing", "recommend",
			"launch", "update", "discount", "review", "spam",
		},
		Synonyms: map[string][]string{
			"great":    {"awesome", "excellent"},
			"bad":      {"terrible", "awful"},
			"love":     {"like", "adore"},
			"shipping": {"delivery"},
			"refund":   {"return"},
			"price":    {"cost"},
		},
		MaxDistance: 2,
	}
}

func (s *EditDistanceSuggester) Suggest(terms []string) (string, []string) {
	if len(terms) == 0 {
		return "", nil
	}

	corrected := make([]string, len(terms))
	changed := false
	for i, t := range terms {
		best := t
		bestDist := s.MaxDistance + 1
		for _, v := range s.Vocabulary {
			if v == t {
				best = t
				bestDist = 0
				break
			}
			if d := levenshtein(t, v); d < bestDist {
				best, bestDist = v, d
			}
		}
		corrected[i] = best
		if best != t {
			changed = true
		}
	}

	var correctedQuery string
	if changed {
		correctedQuery = strings.Join(corrected, " ")
	}

	alternatives := make([]string, 0, 4)
	seen := map[string]bool{strings.Join(terms, " "): true, correctedQuery: true}
	addAlt := func(alt string) {
		if alt != "" && !seen[alt] && len(alternatives) < 5 {
			seen[alt] = true
			alternatives = append(alternatives, alt)
		}
	}

	for i, t := range corrected {
		for _, syn := range s.Synonyms[t] {
			variant := make([]string, len(corrected))
			copy(variant, corrected)
			variant[i] = syn
			addAlt(strings.Join(variant, " "))
		}
		addAlt(strings.Join(replaceAt(corrected, i, togglePlural(t)), " "))
	}

	return correctedQuery, alternatives
}

func replaceAt(terms []string, i int, v string) []string {
	out := make([]string, len(terms))
	copy(out, terms)
	out[i] = v
	return out
}

// togglePlural flips a naive English plural.
func togglePlural(t string) string {
	if strings.HasSuffix(t, "s") && len(t) > 3 {
		return strings.TrimSuffix(t, "s")
	}
	return t + "s"
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
