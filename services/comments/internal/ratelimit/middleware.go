package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/example/social-pulse/internal/platform/api"
	"github.com/example/social-pulse/internal/platform/auth"
	"github.com/example/social-pulse/internal/platform/events"
)

// Middleware charges each request against the named bucket before it reaches
// the handler. Identity is the authenticated user id, or the client IP for
// anonymous calls. If the limiter backend fails, the request is let through;
// losing rate limiting briefly is better than failing every request.
func Middleware(limiter Limiter, bucket string, limit int, window time.Duration, logger *zap.Logger, pub *events.Publisher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Check(r.Context(), Identity(r), bucket, limit, window)
			if err != nil {
				if logger != nil {
					logger.Warn("rate limiter unavailable, allowing request",
						zap.String("bucket", bucket), zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := int(time.Until(res.Reset).Seconds() + 0.999)
			if retryAfter < 1 {
				retryAfter = 1
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))

			if !res.Allowed {
				uid, _ := auth.UserIDFromContext(r.Context())
				pub.Publish(events.SubjectRateLimitExceeded, "ratelimit_exceeded", uid, map[string]any{
					"bucket": bucket,
					"limit":  res.Limit,
					"path":   r.URL.Path,
				})
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				api.RateLimited(w, "Rate limit exceeded", map[string]any{
					"retryAfter": retryAfter,
					"limit":      res.Limit,
					"remaining":  res.Remaining,
					"resetTime":  res.Reset.UTC().Format(time.RFC3339),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Identity picks the budget key for a request: user id for authenticated
// callers, client IP otherwise.
func Identity(r *http.Request) string {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok && uid != "" {
		return "user:" + uid
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
