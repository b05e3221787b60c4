package auth

import (
	"net/http"

	"github.com/example/social-pulse/internal/platform/api"
)

// RequireModerator allows the request only if RequireUser already injected a
// moderator or admin role into the context.
func RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsModerator(r.Context()) {
			api.Forbidden(w, "Moderator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
