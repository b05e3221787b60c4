package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/social-pulse/internal/platform/api"
	"github.com/example/social-pulse/internal/platform/auth"
	"github.com/example/social-pulse/services/comments/internal/search"
	"github.com/example/social-pulse/services/comments/internal/store"
)

// PlatformComments handles GET /v1/comments/platforms/{platform}.
// With statistics=true the response carries a summary computed as a second
// pass over the same filtered set.
func PlatformComments(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "Authentication required")
			return
		}

		platform := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "platform")))
		if !store.ValidPlatform(platform) {
			api.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"success":         false,
				"error":           "Invalid platform",
				"valid_platforms": store.Platforms,
			})
			return
		}

		q := r.URL.Query()
		page, perr := parsePage(q, d.Cfg.DefaultLimit, d.Cfg.MaxLimit, "Limit too high. Maximum allowed: %d")
		if perr != nil {
			api.BadRequest(w, perr.Message, perr.Details)
			return
		}
		filters, echo, perr := parseFilters(q, userID)
		if perr != nil {
			api.BadRequest(w, perr.Message, perr.Details)
			return
		}
		filters.Platforms = []string{platform}
		echo["platform"] = platform

		ctx, cancel := context.WithTimeout(r.Context(), d.Cfg.QueryTimeout)
		defer cancel()

		comments, total, err := d.Store.List(ctx, filters, page)
		if err != nil {
			d.storeError(w, r, err, "Request timed out")
			return
		}

		views, attempted, failed := d.buildViews(comments)
		if allFieldsUndecryptable(attempted, failed) {
			api.Internal(w, "")
			return
		}

		resp := listResponse{
			Success:    true,
			Data:       views,
			Pagination: paginate(page.Limit, page.Offset, total),
			Filters:    echo,
			Platform:   platform,
		}

		if boolFlag(q, "statistics") {
			candidates, _, err := d.Store.FindCandidates(ctx, filters, d.Cfg.CandidateCap)
			if err != nil {
				d.storeError(w, r, err, "Request timed out")
				return
			}
			stats := search.Summarize(candidates)
			resp.Statistics = &stats
		}

		api.WriteJSON(w, http.StatusOK, resp)
	}
}
