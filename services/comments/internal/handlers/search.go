package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/social-pulse/internal/platform/api"
	"github.com/example/social-pulse/internal/platform/auth"
	"github.com/example/social-pulse/internal/platform/events"
	"github.com/example/social-pulse/services/comments/internal/cache"
	"github.com/example/social-pulse/services/comments/internal/querylang"
	"github.com/example/social-pulse/services/comments/internal/search"
	"github.com/example/social-pulse/services/comments/internal/store"
)

type performance struct {
	SearchTimeMS int64 `json:"search_time_ms"`
	TotalTimeMS  int64 `json:"total_time_ms"`
	Cached       bool  `json:"cached"`
}

type suggestions struct {
	CorrectedQuery     string   `json:"corrected_query,omitempty"`
	AlternativeQueries []string `json:"alternative_queries,omitempty"`
}

type crossPlatformAnalysis struct {
	PlatformBreakdown map[string]int `json:"platform_breakdown"`
}

type sentimentAnalysis struct {
	Distribution map[string]int `json:"distribution"`
	AverageScore *float64       `json:"average_score"`
}

type searchResponse struct {
	Success    bool           `json:"success"`
	Data       []CommentView  `json:"data"`
	Pagination Pagination     `json:"pagination"`
	Filters    map[string]any `json:"filters"`

	Query      string `json:"query"`
	SearchType string `json:"search_type"`

	Facets        *search.Facets         `json:"facets,omitempty"`
	CrossPlatform *crossPlatformAnalysis `json:"cross_platform_analysis,omitempty"`
	Sentiment     *sentimentAnalysis     `json:"sentiment_analysis,omitempty"`
	Suggestions   *suggestions           `json:"suggestions,omitempty"`
	Performance   performance            `json:"performance"`
}

// SearchComments handles GET /v1/comments/search.
func SearchComments(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "Authentication required")
			return
		}

		q := r.URL.Query()

		clean, err := d.Sanitizer.Query(q.Get("q"))
		if err != nil {
			d.rejectQuery(w, r, userID, q.Get("q"), err)
			return
		}

		page, perr := parsePage(q, d.Cfg.DefaultLimit, d.Cfg.MaxLimit, "Search limit too high. Maximum allowed: %d")
		if perr != nil {
			api.BadRequest(w, perr.Message, perr.Details)
			return
		}
		filters, echo, perr := parseFilters(q, userID)
		if perr != nil {
			api.BadRequest(w, perr.Message, perr.Details)
			return
		}

		rawPlatforms := q.Get("platforms")
		if rawPlatforms == "" {
			rawPlatforms = q.Get("platform")
		}
		platforms, perr := parsePlatforms(rawPlatforms)
		if perr != nil {
			api.BadRequest(w, perr.Message, perr.Details)
			return
		}

		semanticMode := boolFlag(q, "semantic")

		parsed := querylang.Parse(clean, store.ValidPlatform)
		filters.Terms = parsed.Terms
		filters.ExcludeTerms = parsed.ExcludeTerms
		filters.Phrase = parsed.Phrase
		filters.MatchAll = parsed.MatchAll

		// Explicit platform filters win; platform: scopes in the query apply
		// otherwise.
		switch {
		case len(platforms) > 0:
			filters.Platforms = platforms
		case len(parsed.Platforms) > 0:
			filters.Platforms = parsed.Platforms
		}
		if len(filters.Platforms) > 0 {
			echo["platforms"] = filters.Platforms
		}

		searchType := parsed.Type
		if semanticMode {
			searchType = querylang.TypeSemantic
		}

		cacheKey := cache.Key(userID, "search", r.URL.RawQuery)
		if d.Cache != nil {
			if hit, ok := d.Cache.Get(cacheKey); ok {
				if resp, ok := hit.(searchResponse); ok {
					// Replays keep the original search time but report their
					// own total.
					resp.Performance.TotalTimeMS = time.Since(started).Milliseconds()
					resp.Performance.Cached = true
					api.WriteJSON(w, http.StatusOK, resp)
					return
				}
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), d.Cfg.QueryTimeout)
		defer cancel()

		queryStarted := time.Now()
		candidates, total, err := d.Store.FindCandidates(ctx, filters, d.Cfg.CandidateCap)
		if err != nil {
			d.storeError(w, r, err, "Search request timed out")
			return
		}

		var ranked []search.Scored
		semanticRanked := false
		if semanticMode && d.Scorer != nil {
			ranked, err = d.rankSemantic(ctx, clean, candidates)
			switch {
			case err == nil:
				semanticRanked = true
			case errors.Is(err, context.DeadlineExceeded):
				api.WriteError(w, http.StatusInternalServerError, "Search request timed out", nil)
				return
			default:
				// Scorer trouble degrades to lexical ranking; the response
				// reports the ranking that actually ran.
				if d.Logger != nil {
					d.Logger.Warn("semantic scorer unavailable, falling back to lexical", zap.Error(err))
				}
				ranked = search.Rank(candidates, parsed)
				searchType = parsed.Type
			}
		} else {
			ranked = search.Rank(candidates, parsed)
		}
		searchTime := time.Since(queryStarted)

		pageResults := pageOf(ranked, page)
		views, attempted, failed := d.scoredViews(pageResults, semanticRanked)
		if allFieldsUndecryptable(attempted, failed) {
			api.Internal(w, "")
			return
		}

		resp := searchResponse{
			Success:    true,
			Data:       views,
			Pagination: paginate(page.Limit, page.Offset, total),
			Filters:    echo,
			Query:      clean,
			SearchType: searchType,
		}

		if len(ranked) == 0 && d.Suggester != nil {
			corrected, alts := d.Suggester.Suggest(parsed.Terms)
			if corrected != "" || len(alts) > 0 {
				resp.Suggestions = &suggestions{CorrectedQuery: corrected, AlternativeQueries: alts}
			}
		}
		if boolFlag(q, "facets") {
			f := search.Aggregate(candidates)
			resp.Facets = &f
		}
		if len(filters.Platforms) > 1 {
			resp.CrossPlatform = &crossPlatformAnalysis{PlatformBreakdown: search.PlatformBreakdown(pageResults)}
		}
		if boolFlag(q, "sentiment_analysis") {
			resp.Sentiment = summarizeSentiment(candidates)
		}

		d.Events.Publish(events.SubjectSearchPerformed, "search_performed", userID, map[string]any{
			"search_type": searchType,
			"total":       total,
			"query_len":   len(clean),
		})

		resp.Performance = performance{
			SearchTimeMS: searchTime.Milliseconds(),
			TotalTimeMS:  time.Since(started).Milliseconds(),
		}
		if d.Cache != nil {
			d.Cache.Set(cacheKey, resp)
		}
		api.WriteJSON(w, http.StatusOK, resp)
	}
}

func (d Deps) rankSemantic(ctx context.Context, query string, candidates []store.Comment) ([]search.Scored, error) {
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.SearchText
	}
	sims, err := d.Scorer.Score(ctx, query, texts)
	if err != nil {
		return nil, err
	}
	return search.RankSemantic(candidates, sims), nil
}

func pageOf(ranked []search.Scored, p store.Page) []search.Scored {
	if p.Offset >= len(ranked) {
		return nil
	}
	end := p.Offset + p.Limit
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[p.Offset:end]
}

func summarizeSentiment(candidates []store.Comment) *sentimentAnalysis {
	out := &sentimentAnalysis{Distribution: map[string]int{}}
	var sum float64
	var scoredCount int
	for _, c := range candidates {
		out.Distribution[store.SentimentBucket(c.SentimentScore)]++
		if c.SentimentScore != nil {
			sum += *c.SentimentScore
			scoredCount++
		}
	}
	if scoredCount > 0 {
		avg := sum / float64(scoredCount)
		out.AverageScore = &avg
	}
	return out
}
