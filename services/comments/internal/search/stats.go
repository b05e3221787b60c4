package search

import (
	"github.com/example/social-pulse/services/comments/internal/store"
)

// engagementKeys are the metrics the summary reports on. Unknown keys in a
// comment's metrics map are ignored rather than surfaced.
var engagementKeys = []string{"likes", "replies", "shares", "views", "saves"}

// EngagementSummary carries per-metric totals and per-comment averages.
// Averages divide by the full comment count, including comments missing the
// metric.
type EngagementSummary struct {
	Totals   map[string]float64 `json:"totals"`
	Averages map[string]float64 `json:"averages"`
}

// Statistics is the aggregate view of one user's comments on a platform.
type Statistics struct {
	TotalComments         int               `json:"total_comments"`
	ByStatus              map[string]int    `json:"by_status"`
	SentimentDistribution map[string]int    `json:"sentiment_distribution"`
	EngagementSummary     EngagementSummary `json:"engagement_summary"`
}

// Summarize computes statistics over the full candidate set. An empty set
// yields zero counts with all maps present, so clients never see nulls.
func Summarize(comments []store.Comment) Statistics {
	s := Statistics{
		ByStatus:              map[string]int{},
		SentimentDistribution: map[string]int{},
		EngagementSummary: EngagementSummary{
			Totals:   map[string]float64{},
			Averages: map[string]float64{},
		},
	}
	for _, k := range engagementKeys {
		s.EngagementSummary.Totals[k] = 0
		s.EngagementSummary.Averages[k] = 0
	}
	for _, st := range store.Statuses {
		s.ByStatus[st] = 0
	}

	s.TotalComments = len(comments)
	for _, c := range comments {
		s.ByStatus[c.Status]++
		s.SentimentDistribution[store.SentimentBucket(c.SentimentScore)]++
		for _, k := range engagementKeys {
			if v, ok := c.EngagementMetrics[k]; ok {
				s.EngagementSummary.Totals[k] += v
			}
		}
	}
	if s.TotalComments > 0 {
		for _, k := range engagementKeys {
			s.EngagementSummary.Averages[k] = s.EngagementSummary.Totals[k] / float64(s.TotalComments)
		}
	}
	return s
}
