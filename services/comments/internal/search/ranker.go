// Package search holds the pure functions applied to an already-fetched
// candidate set: relevance ranking, spell-correction suggestions, faceting
// and summary statistics. Nothing here touches the data store.
package search

import (
	"math"
	"sort"
	"strings"

	"github.com/example/social-pulse/services/comments/internal/querylang"
	"github.com/example/social-pulse/services/comments/internal/store"
)

// Relevance formula weights. Coverage dominates: matching more of the query
// beats repeating one term.
const (
	weightCoverage  = 0.5
	weightFrequency = 0.3
	weightPhrase    = 0.2

	// frequencySaturation caps the term-frequency contribution; beyond this
	// many hits, more repetition does not score higher.
	frequencySaturation = 4.0
)

// Scored is a candidate with its per-request score. Scores are transient and
// never persisted.
type Scored struct {
	store.Comment
	RelevanceScore     float64
	SemanticSimilarity float64
}

// Rank scores candidates lexically against the parsed query and returns them
// in non-increasing relevance order, ties broken by recency then id.
func Rank(candidates []store.Comment, q querylang.Query) []Scored {
	out := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Scored{Comment: c, RelevanceScore: lexicalScore(c.SearchText, q)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// RankSemantic orders candidates by externally computed similarity scores.
// similarities is indexed like candidates; missing entries score zero.
func RankSemantic(candidates []store.Comment, similarities []float64) []Scored {
	out := make([]Scored, 0, len(candidates))
	for i, c := range candidates {
		s := Scored{Comment: c}
		if i < len(similarities) {
			s.SemanticSimilarity = clamp01(similarities[i])
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SemanticSimilarity != out[j].SemanticSimilarity {
			return out[i].SemanticSimilarity > out[j].SemanticSimilarity
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func lexicalScore(text string, q querylang.Query) float64 {
	text = strings.ToLower(text)

	terms := q.Terms
	if len(terms) == 0 && q.Phrase == "" {
		return 0
	}

	var coverage, frequency, phrase float64

	if len(terms) > 0 {
		matched := 0
		hits := 0
		for _, t := range terms {
			n := strings.Count(text, t)
			if n > 0 {
				matched++
				hits += n
			}
		}
		coverage = float64(matched) / float64(len(terms))
		frequency = math.Min(1, float64(hits)/frequencySaturation)
	}

	switch {
	case q.Phrase != "" && strings.Contains(text, q.Phrase):
		phrase = 1
		if len(terms) == 0 {
			coverage = 1
			frequency = math.Min(1, float64(strings.Count(text, q.Phrase))/frequencySaturation)
		}
	case len(terms) > 1 && strings.Contains(text, strings.Join(terms, " ")):
		// All terms adjacent in order counts as an implicit phrase match.
		phrase = 1
	}

	return clamp01(weightCoverage*coverage + weightFrequency*frequency + weightPhrase*phrase)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
