package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCommentStore persists comments in Postgres (table "comments", with
// a unique index over (user_id, platform, platform_comment_id) and a trigram
// index over search_text).
type PostgresCommentStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentStore creates a store backed by Postgres.
func NewPostgresCommentStore(pool *pgxpool.Pool) *PostgresCommentStore {
	return &PostgresCommentStore{pool: pool}
}

const commentColumns = `id, user_id, platform, platform_comment_id, platform_post_id,
	platform_user_id, content, search_text, content_hash, status, sentiment_score,
	engagement_metrics, created_at, updated_at, updated_by, moderation_note`

func (s *PostgresCommentStore) Ingest(ctx context.Context, c Comment) (Comment, error) {
	const q = `INSERT INTO comments
	    (user_id, platform, platform_comment_id, platform_post_id, platform_user_id,
	     content, search_text, content_hash, status, sentiment_score, engagement_metrics)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE(NULLIF($9, ''), 'pending'), $10, $11)
	 RETURNING ` + commentColumns
	row := s.pool.QueryRow(ctx, q,
		c.UserID, c.Platform, c.PlatformCommentID, c.PlatformPostID, c.PlatformUserID,
		c.Content, c.SearchText, c.ContentHash, c.Status, c.SentimentScore, c.EngagementMetrics)
	out, err := scanComment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Comment{}, ErrDuplicate
		}
		return Comment{}, err
	}
	return out, nil
}

func (s *PostgresCommentStore) List(ctx context.Context, f Filters, p Page) ([]Comment, int, error) {
	where, args := buildWhere(f)

	total, err := s.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + commentColumns + ` FROM comments` + where +
		` ORDER BY created_at DESC, id DESC` +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, p.Limit, p.Offset)

	out, err := s.scanComments(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *PostgresCommentStore) FindCandidates(ctx context.Context, f Filters, cap int) ([]Comment, int, error) {
	where, args := buildWhere(f)

	total, err := s.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + commentColumns + ` FROM comments` + where +
		` ORDER BY created_at DESC, id DESC`
	if cap > 0 {
		q += ` LIMIT $` + strconv.Itoa(len(args)+1)
		args = append(args, cap)
	}

	out, err := s.scanComments(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *PostgresCommentStore) GetByIDs(ctx context.Context, ids []string) ([]Comment, error) {
	if len(ids) == 0 {
		return []Comment{}, nil
	}
	q := `SELECT ` + commentColumns + ` FROM comments WHERE id = ANY($1)`
	return s.scanComments(ctx, q, ids)
}

func (s *PostgresCommentStore) UpdateStatus(ctx context.Context, id, status, actor, note string) (bool, error) {
	const q = `UPDATE comments
	   SET status = $2, updated_at = now(), updated_by = $3, moderation_note = $4
	 WHERE id = $1 AND status <> $2`
	tag, err := s.pool.Exec(ctx, q, id, status, actor, note)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Either a no-op transition (already at target) or a missing row.
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *PostgresCommentStore) count(ctx context.Context, where string, args []any) (int, error) {
	var total int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments`+where, args...).Scan(&total)
	return total, err
}

// buildWhere composes the conjunctive predicate list for a filter set. Every
// value is passed as a bind parameter; the SQL text only ever contains
// placeholders.
func buildWhere(f Filters) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, vals ...any) {
		for _, v := range vals {
			args = append(args, v)
			cond = strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1)
		}
		conds = append(conds, cond)
	}

	if f.UserID != "" {
		add(`user_id = ?`, f.UserID)
	}
	if len(f.Platforms) == 1 {
		add(`platform = ?`, f.Platforms[0])
	} else if len(f.Platforms) > 1 {
		add(`platform = ANY(?)`, f.Platforms)
	}
	if f.Status != "" {
		add(`status = ?`, f.Status)
	}
	switch f.Sentiment {
	case BucketPositive:
		add(`sentiment_score > ?`, SentimentPositiveMin)
	case BucketNegative:
		add(`sentiment_score < ?`, SentimentNegativeMax)
	case BucketNeutral:
		add(`sentiment_score BETWEEN ? AND ?`, SentimentNegativeMax, SentimentPositiveMin)
	}
	if f.DateFrom != nil {
		add(`created_at >= ?`, *f.DateFrom)
	}
	if f.DateTo != nil {
		add(`created_at <= ?`, *f.DateTo)
	}

	if f.Phrase != "" {
		add(`search_text ILIKE ?`, likePattern(f.Phrase))
	}
	if len(f.Terms) > 0 {
		terms := make([]string, 0, len(f.Terms))
		for _, t := range f.Terms {
			args = append(args, likePattern(t))
			terms = append(terms, `search_text ILIKE $`+strconv.Itoa(len(args)))
		}
		joiner := " OR "
		if f.MatchAll {
			joiner = " AND "
		}
		conds = append(conds, "("+strings.Join(terms, joiner)+")")
	}
	for _, t := range f.ExcludeTerms {
		add(`search_text NOT ILIKE ?`, likePattern(t))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// likePattern wraps a term for substring ILIKE matching, escaping the LIKE
// metacharacters so user input cannot widen the match.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.UserID, &c.Platform, &c.PlatformCommentID, &c.PlatformPostID,
		&c.PlatformUserID, &c.Content, &c.SearchText, &c.ContentHash, &c.Status, &c.SentimentScore,
		&c.EngagementMetrics, &c.CreatedAt, &c.UpdatedAt, &c.UpdatedBy, &c.ModerationNote)
	return c, err
}

func (s *PostgresCommentStore) scanComments(ctx context.Context, q string, args ...any) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return out, nil
		}
		return nil, fmt.Errorf("scan comments: %w", err)
	}
	return out, nil
}
