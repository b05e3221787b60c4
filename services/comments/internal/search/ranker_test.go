package search

import (
	"testing"
	"time"

	"github.com/example/social-pulse/services/comments/internal/querylang"
	"github.com/example/social-pulse/services/comments/internal/store"
)

func candidate(id, text string, created time.Time) store.Comment {
	return store.Comment{ID: id, SearchText: text, CreatedAt: created}
}

func TestRankOrdersByRelevanceDescending(t *testing.T) {
	now := time.Now()
	q := querylang.Parse("product launch", store.ValidPlatform)

	candidates := []store.Comment{
		candidate("a", "unrelated chatter about weather", now),
		candidate("b", "the product launch went perfectly, best launch yet", now),
		candidate("c", "saw the product yesterday", now),
	}

	ranked := Rank(candidates, q)
	if got := []string{ranked[0].ID, ranked[1].ID, ranked[2].ID}; got[0] != "b" || got[1] != "c" || got[2] != "a" {
		t.Fatalf("order = %v, want [b c a]", got)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].RelevanceScore > ranked[i-1].RelevanceScore {
			t.Fatalf("scores not non-increasing: %v then %v", ranked[i-1].RelevanceScore, ranked[i].RelevanceScore)
		}
	}
}

func TestRankScoresWithinUnitInterval(t *testing.T) {
	q := querylang.Parse(`"great product" great product`, store.ValidPlatform)
	c := candidate("a", "great product great product great product great product", time.Now())

	ranked := Rank([]store.Comment{c}, q)
	if s := ranked[0].RelevanceScore; s < 0 || s > 1 {
		t.Fatalf("score %v outside [0,1]", s)
	}
	if ranked[0].RelevanceScore != 1 {
		t.Fatalf("saturated full match should score 1, got %v", ranked[0].RelevanceScore)
	}
}

func TestRankPhraseBeatsScatteredTerms(t *testing.T) {
	now := time.Now()
	q := querylang.Parse(`"fast shipping"`, store.ValidPlatform)

	candidates := []store.Comment{
		candidate("scattered", "shipping was not fast at all", now),
		candidate("exact", "fast shipping and great support", now),
	}
	ranked := Rank(candidates, q)
	if ranked[0].ID != "exact" {
		t.Fatalf("phrase match ranked %q first, want exact", ranked[0].ID)
	}
}

func TestRankTieBreaksByRecencyThenID(t *testing.T) {
	older := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	q := querylang.Parse("refund", store.ValidPlatform)

	candidates := []store.Comment{
		candidate("a", "need a refund", older),
		candidate("b", "need a refund", newer),
		candidate("c", "need a refund", older),
	}
	ranked := Rank(candidates, q)
	if got := []string{ranked[0].ID, ranked[1].ID, ranked[2].ID}; got[0] != "b" || got[1] != "c" || got[2] != "a" {
		t.Fatalf("tie-break order = %v, want [b c a]", got)
	}
}

func TestRankSemanticReordersBySimilarity(t *testing.T) {
	now := time.Now()
	candidates := []store.Comment{
		candidate("first", "alpha", now),
		candidate("second", "beta", now),
		candidate("third", "gamma", now),
	}

	ranked := RankSemantic(candidates, []float64{0.95, 0.72, 0.88})

	wantIDs := []string{"first", "third", "second"}
	wantScores := []float64{0.95, 0.88, 0.72}
	for i, r := range ranked {
		if r.ID != wantIDs[i] {
			t.Fatalf("position %d = %q, want %q", i, r.ID, wantIDs[i])
		}
		if r.SemanticSimilarity != wantScores[i] {
			t.Fatalf("position %d score = %v, want %v", i, r.SemanticSimilarity, wantScores[i])
		}
	}
}

func TestRankSemanticMissingScoresDefaultToZero(t *testing.T) {
	now := time.Now()
	candidates := []store.Comment{
		candidate("a", "alpha", now),
		candidate("b", "beta", now),
	}
	ranked := RankSemantic(candidates, []float64{0.4})
	if ranked[0].ID != "a" || ranked[1].SemanticSimilarity != 0 {
		t.Fatalf("unexpected ranking %+v", ranked)
	}
}

func TestRankEmptyQueryScoresZero(t *testing.T) {
	ranked := Rank([]store.Comment{candidate("a", "anything", time.Now())}, querylang.Query{})
	if ranked[0].RelevanceScore != 0 {
		t.Fatalf("empty query score = %v, want 0", ranked[0].RelevanceScore)
	}
}
