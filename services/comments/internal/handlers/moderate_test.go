package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/social-pulse/internal/platform/auth"
	"github.com/example/social-pulse/services/comments/internal/moderation"
	"github.com/example/social-pulse/services/comments/internal/store"
)

func postModerate(userID string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/v1/comments/moderate", bytes.NewReader(b))
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	return req
}

func TestModerateApprovesBatch(t *testing.T) {
	s := store.NewInMemoryCommentStore()
	d := testDeps(t, s)
	engine := &moderation.Engine{Store: s}

	ids := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		ids = append(ids, seedComment(t, d, s, seedOpts{userID: "u1", text: "pending comment"}).ID)
	}

	rr := httptest.NewRecorder()
	ModerateComments(d, engine).ServeHTTP(rr, postModerate("u1", moderateRequest{
		CommentIDs: ids, Action: "approve", Reason: "bulk cleanup",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	summary := body["summary"].(map[string]any)
	if summary["successfully_updated"].(float64) != 100 {
		t.Fatalf("successfully_updated = %v, want 100", summary["successfully_updated"])
	}

	got, _ := s.GetByIDs(context.Background(), ids)
	for _, c := range got {
		if c.Status != store.StatusApproved {
			t.Fatalf("comment %s status = %q", c.ID, c.Status)
		}
	}
}

func TestModerateRerunIsIdempotent(t *testing.T) {
	s := store.NewInMemoryCommentStore()
	d := testDeps(t, s)
	engine := &moderation.Engine{Store: s}
	id := seedComment(t, d, s, seedOpts{userID: "u1", text: "pending"}).ID

	h := ModerateComments(d, engine)
	req := moderateRequest{CommentIDs: []string{id}, Action: "approve"}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, postModerate("u1", req))
	if rr.Code != http.StatusOK {
		t.Fatalf("first run status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, postModerate("u1", req))
	if rr.Code != http.StatusOK {
		t.Fatalf("re-run status = %d", rr.Code)
	}
	summary := decodeBody(t, rr)["summary"].(map[string]any)
	if summary["successfully_updated"].(float64) != 0 {
		t.Fatalf("re-run successfully_updated = %v, want 0", summary["successfully_updated"])
	}
	if len(summary["failed"].([]any)) != 0 {
		t.Fatalf("re-run failed = %v, want none", summary["failed"])
	}
}

func TestModerateRequiresAuth(t *testing.T) {
	d := testDeps(t, store.NewInMemoryCommentStore())
	engine := &moderation.Engine{Store: d.Store}

	rr := httptest.NewRecorder()
	ModerateComments(d, engine).ServeHTTP(rr, postModerate("", moderateRequest{
		CommentIDs: []string{"x"}, Action: "approve",
	}))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestModerateValidation(t *testing.T) {
	d := testDeps(t, store.NewInMemoryCommentStore())
	engine := &moderation.Engine{Store: d.Store}
	h := ModerateComments(d, engine)

	cases := []struct {
		name string
		body any
		want string
	}{
		{"empty ids", moderateRequest{Action: "approve"}, "comment_ids is required"},
		{"missing action", moderateRequest{CommentIDs: []string{"x"}}, "action is required"},
		{"unknown action", moderateRequest{CommentIDs: []string{"x"}, Action: "escalate"}, "Invalid action"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, postModerate("u1", tc.body))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if body := decodeBody(t, rr); body["error"] != tc.want {
				t.Fatalf("error = %v, want %q", body["error"], tc.want)
			}
		})
	}
}

func TestModerateForeignCommentFailsPerID(t *testing.T) {
	s := store.NewInMemoryCommentStore()
	d := testDeps(t, s)
	engine := &moderation.Engine{Store: s}

	mine := seedComment(t, d, s, seedOpts{userID: "u1", text: "mine"}).ID
	theirs := seedComment(t, d, s, seedOpts{userID: "u2", text: "theirs"}).ID

	rr := httptest.NewRecorder()
	ModerateComments(d, engine).ServeHTTP(rr, postModerate("u1", moderateRequest{
		CommentIDs: []string{mine, theirs}, Action: "reject",
	}))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	summary := decodeBody(t, rr)["summary"].(map[string]any)
	if summary["successfully_updated"].(float64) != 1 {
		t.Fatalf("successfully_updated = %v, want 1", summary["successfully_updated"])
	}
	failed := summary["failed"].([]any)
	if len(failed) != 1 || failed[0].(map[string]any)["id"] != theirs {
		t.Fatalf("failed = %v", failed)
	}
}
