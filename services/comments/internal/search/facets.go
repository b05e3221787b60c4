package search

import (
	"github.com/example/social-pulse/services/comments/internal/store"
)

// Facets is the distribution breakdown of a candidate set. Counts cover the
// full filtered set, not just the returned page.
type Facets struct {
	Platforms             map[string]int `json:"platforms"`
	Statuses              map[string]int `json:"statuses"`
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	DateDistribution      map[string]int `json:"date_distribution"`
}

// Aggregate computes facet counts over candidates. Sentiment buckets share
// the store's thresholds so filtering and faceting always agree; dates bucket
// by UTC day.
func Aggregate(candidates []store.Comment) Facets {
	f := Facets{
		Platforms:             map[string]int{},
		Statuses:              map[string]int{},
		SentimentDistribution: map[string]int{},
		DateDistribution:      map[string]int{},
	}
	for _, c := range candidates {
		f.Platforms[c.Platform]++
		f.Statuses[c.Status]++
		f.SentimentDistribution[store.SentimentBucket(c.SentimentScore)]++
		f.DateDistribution[c.CreatedAt.UTC().Format("2006-01-02")]++
	}
	return f
}

// PlatformBreakdown counts the returned set per platform, for the
// cross-platform search response.
func PlatformBreakdown(results []Scored) map[string]int {
	out := map[string]int{}
	for _, r := range results {
		out[r.Platform]++
	}
	return out
}
