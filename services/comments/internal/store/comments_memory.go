package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryCommentStore is a development-only in-memory implementation.
type InMemoryCommentStore struct {
	mu       sync.RWMutex
	comments map[string]Comment // id -> comment
	seen     map[string]string  // user|platform|platform_comment_id -> id
}

func NewInMemoryCommentStore() *InMemoryCommentStore {
	return &InMemoryCommentStore{
		comments: make(map[string]Comment),
		seen:     make(map[string]string),
	}
}

func ingestKey(c Comment) string {
	return c.UserID + "|" + c.Platform + "|" + c.PlatformCommentID
}

func (s *InMemoryCommentStore) Ingest(_ context.Context, c Comment) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[ingestKey(c)]; dup {
		return Comment{}, ErrDuplicate
	}
	c.ID = uuid.New().String()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	s.comments[c.ID] = c
	s.seen[ingestKey(c)] = c.ID
	return c, nil
}

func (s *InMemoryCommentStore) List(ctx context.Context, f Filters, p Page) ([]Comment, int, error) {
	matched, err := s.filtered(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total := len(matched)

	if p.Offset >= total {
		return []Comment{}, total, nil
	}
	matched = matched[p.Offset:]
	if p.Limit > 0 && len(matched) > p.Limit {
		matched = matched[:p.Limit]
	}
	return matched, total, nil
}

func (s *InMemoryCommentStore) FindCandidates(ctx context.Context, f Filters, cap int) ([]Comment, int, error) {
	matched, err := s.filtered(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total := len(matched)
	if cap > 0 && len(matched) > cap {
		matched = matched[:cap]
	}
	return matched, total, nil
}

// filtered returns all matching comments ordered by created_at DESC, id DESC.
func (s *InMemoryCommentStore) filtered(ctx context.Context, f Filters) ([]Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Comment, 0)
	for _, c := range s.comments {
		if matches(c, f) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return matched, nil
}

func matches(c Comment, f Filters) bool {
	if f.UserID != "" && c.UserID != f.UserID {
		return false
	}
	if len(f.Platforms) > 0 {
		ok := false
		for _, p := range f.Platforms {
			if c.Platform == p {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Sentiment != "" && SentimentBucket(c.SentimentScore) != f.Sentiment {
		return false
	}
	if f.DateFrom != nil && c.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && c.CreatedAt.After(*f.DateTo) {
		return false
	}
	return matchesText(c.SearchText, f)
}

func matchesText(text string, f Filters) bool {
	if !f.HasTextQuery() && len(f.ExcludeTerms) == 0 {
		return true
	}
	text = strings.ToLower(text)

	for _, t := range f.ExcludeTerms {
		if strings.Contains(text, strings.ToLower(t)) {
			return false
		}
	}
	if f.Phrase != "" && !strings.Contains(text, strings.ToLower(f.Phrase)) {
		return false
	}
	if len(f.Terms) == 0 {
		return true
	}
	hits := 0
	for _, t := range f.Terms {
		if strings.Contains(text, strings.ToLower(t)) {
			hits++
		}
	}
	if f.MatchAll {
		return hits == len(f.Terms)
	}
	return hits > 0
}

func (s *InMemoryCommentStore) GetByIDs(_ context.Context, ids []string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *InMemoryCommentStore) UpdateStatus(_ context.Context, id, status, actor, note string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return false, ErrNotFound
	}
	if c.Status == status {
		return false, nil
	}
	now := time.Now().UTC()
	c.Status = status
	c.UpdatedAt = &now
	c.UpdatedBy = actor
	c.ModerationNote = note
	s.comments[id] = c
	return true, nil
}
