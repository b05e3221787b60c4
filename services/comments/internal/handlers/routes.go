package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/example/social-pulse/internal/platform/auth"
	"github.com/example/social-pulse/services/comments/internal/moderation"
	"github.com/example/social-pulse/services/comments/internal/ratelimit"
)

// Mount wires the comment endpoints under /v1/comments. Auth runs before the
// rate limiter so budgets are keyed by user id rather than IP for
// authenticated traffic.
func Mount(r chi.Router, d Deps, verifier auth.JWTVerifier, limiter ratelimit.Limiter, engine *moderation.Engine) {
	read := ratelimit.Middleware(limiter, ratelimit.BucketRead, d.Cfg.ReadBudget, d.Cfg.RateWindow, d.Logger, d.Events)
	write := ratelimit.Middleware(limiter, ratelimit.BucketWrite, d.Cfg.WriteBudget, d.Cfg.RateWindow, d.Logger, d.Events)
	searchMW := ratelimit.Middleware(limiter, ratelimit.BucketSearch, d.Cfg.SearchBudget, d.Cfg.RateWindow, d.Logger, d.Events)

	r.Route("/v1/comments", func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))

		r.With(read).Get("/", ListComments(d))
		r.With(searchMW).Get("/search", SearchComments(d))
		r.With(read).Get("/platforms/{platform}", PlatformComments(d))
		r.With(write).Post("/moderate", ModerateComments(d, engine))
	})
}
