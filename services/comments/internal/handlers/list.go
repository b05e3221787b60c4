package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/social-pulse/internal/platform/api"
	"github.com/example/social-pulse/internal/platform/auth"
	"github.com/example/social-pulse/internal/platform/events"
	"github.com/example/social-pulse/services/comments/internal/querylang"
	"github.com/example/social-pulse/services/comments/internal/sanitize"
	"github.com/example/social-pulse/services/comments/internal/store"
)

// ListComments handles GET /v1/comments.
func ListComments(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "Authentication required")
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
		platforms, perr := parsePlatforms(q.Get("platform"))
		if perr != nil {
			api.BadRequest(w, perr.Message, perr.Details)
			return
		}
		if len(platforms) > 0 {
			filters.Platforms = platforms
			echo["platforms"] = platforms
		}

		// The list endpoint accepts a plain text filter without ranking.
		if raw := q.Get("search"); raw != "" {
			clean, err := d.Sanitizer.Query(raw)
			if err != nil {
				d.rejectQuery(w, r, userID, raw, err)
				return
			}
			parsed := querylang.Parse(clean, store.ValidPlatform)
			filters.Terms = parsed.Terms
			filters.ExcludeTerms = parsed.ExcludeTerms
			filters.Phrase = parsed.Phrase
			filters.MatchAll = parsed.MatchAll
			echo["search"] = clean
		}

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

		api.WriteJSON(w, http.StatusOK, listResponse{
			Success:    true,
			Data:       views,
			Pagination: paginate(page.Limit, page.Offset, total),
			Filters:    echo,
		})
	}
}

// rejectQuery writes the 400 for a sanitizer rejection and records the
// security event. The echoed sanitized_query never contains the offending
// substrings.
func (d Deps) rejectQuery(w http.ResponseWriter, r *http.Request, userID, raw string, err error) {
	var sec *sanitize.SecurityError
	if errors.As(err, &sec) {
		if d.Logger != nil {
			d.Logger.Warn("search query rejected",
				zap.String("user_id", userID),
				zap.String("path", r.URL.Path),
				zap.String("sanitized_query", sec.SanitizedQuery))
		}
		d.Events.Publish(events.SubjectSecurityRejection, "query_rejected", userID, map[string]any{
			"path":            r.URL.Path,
			"sanitized_query": sec.SanitizedQuery,
		})
		api.BadRequest(w, sanitize.RejectedMessage, map[string]any{"sanitized_query": sec.SanitizedQuery})
		return
	}

	var val *sanitize.ValidationError
	if errors.As(err, &val) {
		api.BadRequest(w, val.Message, nil)
		return
	}
	api.BadRequest(w, err.Error(), nil)
}

// storeError maps store failures: deadline → the endpoint's timeout message,
// client cancellation → silent drop, anything else → opaque 500.
func (d Deps) storeError(w http.ResponseWriter, r *http.Request, err error, timeoutMsg string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		api.WriteError(w, http.StatusInternalServerError, timeoutMsg, nil)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		if d.Logger != nil {
			d.Logger.Error("store query failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		api.Internal(w, "")
	}
}
