// Package store persists comments aggregated from the connected social
// platforms and answers the filtered queries behind every endpoint.
package store

import (
	"context"
	"errors"
	"time"
)

// Platform and status enums. Filter values are validated against these fixed
// lists; anything else is rejected before a query runs.
var Platforms = []string{"instagram", "tiktok", "facebook", "twitter", "youtube", "linkedin", "threads"}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusFlagged  = "flagged"
)

var Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusFlagged}

// Sentiment bucket thresholds. Filtering, faceting and statistics all share
// these constants so a comment lands in the same bucket everywhere.
const (
	SentimentPositiveMin = 0.1
	SentimentNegativeMax = -0.1

	BucketPositive = "positive"
	BucketNeutral  = "neutral"
	BucketNegative = "negative"
	BucketUnscored = "unscored"
)

var SentimentBuckets = []string{BucketPositive, BucketNeutral, BucketNegative}

func ValidPlatform(p string) bool {
	for _, v := range Platforms {
		if v == p {
			return true
		}
	}
	return false
}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func ValidSentiment(s string) bool {
	for _, v := range SentimentBuckets {
		if v == s {
			return true
		}
	}
	return false
}

// SentimentBucket maps a score onto its bucket. A nil score means no
// sentiment pass has run yet.
func SentimentBucket(score *float64) string {
	if score == nil {
		return BucketUnscored
	}
	switch {
	case *score > SentimentPositiveMin:
		return BucketPositive
	case *score < SentimentNegativeMax:
		return BucketNegative
	default:
		return BucketNeutral
	}
}

// Comment is one stored comment row. Content and PlatformUserID hold
// ciphertext at rest; SearchText carries the normalized plaintext the text
// index matches against and is never returned to clients.
type Comment struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	Platform          string             `json:"platform"`
	PlatformCommentID string             `json:"platform_comment_id"`
	PlatformPostID    string             `json:"platform_post_id"`
	PlatformUserID    string             `json:"-"`
	Content           string             `json:"-"`
	SearchText        string             `json:"-"`
	ContentHash       string             `json:"-"`
	Status            string             `json:"status"`
	SentimentScore    *float64           `json:"sentiment_score"`
	EngagementMetrics map[string]float64 `json:"engagement_metrics,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         *time.Time         `json:"updated_at,omitempty"`
	UpdatedBy         string             `json:"-"`
	ModerationNote    string             `json:"-"`
}

// Filters is the validated, conjunctive filter set applied to a query.
// Every populated field narrows the candidate set.
type Filters struct {
	UserID    string
	Platforms []string
	Status    string
	Sentiment string // positive | neutral | negative
	DateFrom  *time.Time // inclusive lower bound on created_at
	DateTo    *time.Time // inclusive upper bound on created_at

	// Full-text terms extracted by the query parser. A comment matches when
	// it contains any term (all terms when MatchAll is set), contains the
	// Phrase when present, and contains none of the ExcludeTerms.
	Terms        []string
	ExcludeTerms []string
	Phrase       string
	MatchAll     bool
}

// HasTextQuery reports whether the filter set includes a full-text component.
func (f Filters) HasTextQuery() bool {
	return len(f.Terms) > 0 || f.Phrase != ""
}

// Page is limit/offset pagination, always applied after ordering with the
// comment id as a stable tiebreak.
type Page struct {
	Limit  int
	Offset int
}

// Sentinel errors.
var (
	ErrNotFound  = errors.New("comment not found")
	ErrDuplicate = errors.New("comment already ingested")
)

// CommentStore defines the contract for comment persistence.
type CommentStore interface {
	// Ingest stores a collected comment. A second comment with the same
	// (user_id, platform, platform_comment_id) tuple returns ErrDuplicate.
	Ingest(ctx context.Context, c Comment) (Comment, error)
	// List returns one page of filtered comments ordered by created_at DESC,
	// id DESC, plus the total match count.
	List(ctx context.Context, f Filters, p Page) ([]Comment, int, error)
	// FindCandidates returns the full filtered candidate set, capped, for
	// ranking, faceting and statistics. The total match count is reported
	// even when the cap truncates the returned slice.
	FindCandidates(ctx context.Context, f Filters, cap int) ([]Comment, int, error)
	// GetByIDs returns the comments for the given ids; missing ids are
	// simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]Comment, error)
	// UpdateStatus transitions one comment and stamps updated_at/updated_by.
	// It reports changed=false without error when the status already equals
	// the target, and ErrNotFound when the id does not exist.
	UpdateStatus(ctx context.Context, id, status, actor, note string) (changed bool, err error)
}
