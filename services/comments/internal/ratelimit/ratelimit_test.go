package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/social-pulse/internal/platform/auth"
)

func TestMemoryLimiterExhaustsBudget(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Check(ctx, "user:u1", BucketWrite, 3, time.Minute)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d rejected inside budget", i+1)
		}
		if res.Remaining != 3-(i+1) {
			t.Fatalf("request %d remaining = %d", i+1, res.Remaining)
		}
	}

	res, err := l.Check(ctx, "user:u1", BucketWrite, 3, time.Minute)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Allowed || res.Remaining != 0 {
		t.Fatalf("4th request should be rejected with 0 remaining, got %+v", res)
	}
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	l := NewMemoryLimiter()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		l.Check(context.Background(), "ip:1.2.3.4", BucketRead, 2, time.Minute)
	}
	res, _ := l.Check(context.Background(), "ip:1.2.3.4", BucketRead, 2, time.Minute)
	if res.Allowed {
		t.Fatal("budget should be exhausted")
	}

	now = now.Add(61 * time.Second)
	res, _ = l.Check(context.Background(), "ip:1.2.3.4", BucketRead, 2, time.Minute)
	if !res.Allowed || res.Remaining != 1 {
		t.Fatalf("window should have reset, got %+v", res)
	}
}

func TestMemoryLimiterBucketsAreIndependent(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	l.Check(ctx, "user:u1", BucketWrite, 1, time.Minute)
	if res, _ := l.Check(ctx, "user:u1", BucketWrite, 1, time.Minute); res.Allowed {
		t.Fatal("write budget should be spent")
	}
	if res, _ := l.Check(ctx, "user:u1", BucketSearch, 1, time.Minute); !res.Allowed {
		t.Fatal("search budget should be untouched")
	}
	if res, _ := l.Check(ctx, "user:u2", BucketWrite, 1, time.Minute); !res.Allowed {
		t.Fatal("another user's budget should be untouched")
	}
}

func TestMiddlewareSetsHeadersAndRejects(t *testing.T) {
	l := NewMemoryLimiter()
	h := Middleware(l, BucketSearch, 1, time.Minute, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/comments/search?q=test", nil)
	req.RemoteAddr = "10.0.0.9:51234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "1" {
		t.Fatalf("X-RateLimit-Limit = %q", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("X-RateLimit-Remaining = %q", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
	var body struct {
		Success bool           `json:"success"`
		Error   string         `json:"error"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || body.Error != "Rate limit exceeded" {
		t.Fatalf("body = %+v", body)
	}
	if _, ok := body.Details["retryAfter"]; !ok {
		t.Fatal("details missing retryAfter")
	}
}

type failingLimiter struct{}

func (failingLimiter) Check(context.Context, string, string, int, time.Duration) (Result, error) {
	return Result{}, context.DeadlineExceeded
}

func TestMiddlewareFailsOpen(t *testing.T) {
	h := Middleware(failingLimiter{}, BucketRead, 100, time.Minute, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/comments", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when limiter is down", rec.Code)
	}
}

func TestIdentityPrefersUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:40000"
	if got := Identity(req); got != "ip:192.168.1.5" {
		t.Fatalf("anonymous identity = %q", got)
	}

	req = req.WithContext(auth.WithUserID(req.Context(), "u-42"))
	if got := Identity(req); got != "user:u-42" {
		t.Fatalf("authenticated identity = %q", got)
	}
}
