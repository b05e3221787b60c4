// Package handlers wires the comment listing, search and moderation endpoints.
// Every request runs the same pipeline: rate limit, auth, validate/sanitize,
// query, shape (rank/facet/summarize), decrypt-and-mask for output, respond.
package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/example/social-pulse/internal/platform/events"
	"github.com/example/social-pulse/internal/platform/fieldcrypt"
	"github.com/example/social-pulse/services/comments/internal/cache"
	"github.com/example/social-pulse/services/comments/internal/config"
	"github.com/example/social-pulse/services/comments/internal/moderation"
	"github.com/example/social-pulse/services/comments/internal/sanitize"
	"github.com/example/social-pulse/services/comments/internal/search"
	"github.com/example/social-pulse/services/comments/internal/semantic"
	"github.com/example/social-pulse/services/comments/internal/store"
)

// Deps carries everything the endpoints need, constructed once in main and
// passed in explicitly.
type Deps struct {
	Cfg       config.Config
	Store     store.CommentStore
	Codec     *fieldcrypt.Codec
	Sanitizer *sanitize.Sanitizer
	Suggester search.Suggester
	// Scorer is nil when semantic search is not configured.
	Scorer semantic.Scorer
	// Cache fronts search responses; nil disables caching.
	Cache  cache.Cache
	Events *events.Publisher
	Logger *zap.Logger
}

// Moderator builds the moderation engine sharing the handler dependencies.
func (d Deps) Moderator(invalidate func(userID string)) *moderation.Engine {
	return &moderation.Engine{
		Store:      d.Store,
		Events:     d.Events,
		Invalidate: invalidate,
		Logger:     d.Logger,
	}
}

// CommentView is the outbound comment shape. Content and PlatformUserID are
// decrypted per request; a field that fails to decrypt is null rather than
// failing the whole response. PlatformUserID is always masked, never plaintext.
type CommentView struct {
	ID                 string             `json:"id"`
	Platform           string             `json:"platform"`
	PlatformCommentID  string             `json:"platform_comment_id"`
	PlatformPostID     string             `json:"platform_post_id,omitempty"`
	PlatformUserID     *string            `json:"platform_user_id"`
	Content            *string            `json:"content"`
	Status             string             `json:"status"`
	SentimentScore     *float64           `json:"sentiment_score"`
	EngagementMetrics  map[string]float64 `json:"engagement_metrics,omitempty"`
	RelevanceScore     *float64           `json:"relevance_score,omitempty"`
	SemanticSimilarity *float64           `json:"semantic_similarity,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          *time.Time         `json:"updated_at,omitempty"`
}

type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

func paginate(limit, offset, total int) Pagination {
	return Pagination{Limit: limit, Offset: offset, Total: total, HasMore: offset+limit < total}
}

type listResponse struct {
	Success    bool           `json:"success"`
	Data       []CommentView  `json:"data"`
	Pagination Pagination     `json:"pagination"`
	Filters    map[string]any `json:"filters"`

	// Platform-scoped listing extras.
	Platform   string             `json:"platform,omitempty"`
	Statistics *search.Statistics `json:"statistics,omitempty"`
}

// buildViews decrypts and masks each comment for output. It reports how many
// encrypted fields it attempted and how many failed so the caller can apply
// the all-fields-undecryptable failure rule.
func (d Deps) buildViews(comments []store.Comment) (views []CommentView, attempted, failed int) {
	views = make([]CommentView, 0, len(comments))
	for _, c := range comments {
		v := CommentView{
			ID:                c.ID,
			Platform:          c.Platform,
			PlatformCommentID: c.PlatformCommentID,
			PlatformPostID:    c.PlatformPostID,
			Status:            c.Status,
			SentimentScore:    c.SentimentScore,
			EngagementMetrics: c.EngagementMetrics,
			CreatedAt:         c.CreatedAt,
			UpdatedAt:         c.UpdatedAt,
		}

		if c.Content != "" {
			attempted++
			if plain, err := d.Codec.Decrypt(c.Content, c.UserID, c.Platform); err == nil {
				v.Content = &plain
			} else {
				failed++
				d.warnDecrypt(c.ID, "content", err)
			}
		}
		if c.PlatformUserID != "" {
			attempted++
			if plain, err := d.Codec.Decrypt(c.PlatformUserID, c.UserID, c.Platform); err == nil {
				masked := fieldcrypt.Mask(plain)
				v.PlatformUserID = &masked
			} else {
				failed++
				d.warnDecrypt(c.ID, "platform_user_id", err)
			}
		}

		views = append(views, v)
	}
	return views, attempted, failed
}

func (d Deps) warnDecrypt(commentID, field string, err error) {
	if d.Logger != nil {
		d.Logger.Warn("field decryption failed",
			zap.String("comment_id", commentID),
			zap.String("field", field),
			zap.Error(err))
	}
}

// allFieldsUndecryptable is the only decrypt outcome that fails a request.
func allFieldsUndecryptable(attempted, failed int) bool {
	return attempted > 0 && failed == attempted
}

// scoredViews shapes ranked search results, attaching the active score field.
func (d Deps) scoredViews(results []search.Scored, semanticMode bool) ([]CommentView, int, int) {
	comments := make([]store.Comment, len(results))
	for i, r := range results {
		comments[i] = r.Comment
	}
	views, attempted, failed := d.buildViews(comments)
	for i := range views {
		if semanticMode {
			s := results[i].SemanticSimilarity
			views[i].SemanticSimilarity = &s
		} else {
			s := results[i].RelevanceScore
			views[i].RelevanceScore = &s
		}
	}
	return views, attempted, failed
}
