package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/social-pulse/internal/platform/api"
	"github.com/example/social-pulse/internal/platform/auth"
	"github.com/example/social-pulse/services/comments/internal/moderation"
)

type moderateRequest struct {
	CommentIDs []string `json:"comment_ids"`
	Action     string   `json:"action"`
	Reason     string   `json:"reason,omitempty"`
}

type moderateResponse struct {
	Success bool                    `json:"success"`
	Summary moderation.Summary      `json:"summary"`
	Results []moderation.ItemResult `json:"results"`
}

// ModerateComments handles POST /v1/comments/moderate. Partial failures are
// reported per id in the body; the HTTP status stays 200.
func ModerateComments(d Deps, engine *moderation.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "Authentication required")
			return
		}

		var req moderateRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "Invalid JSON body", nil)
			return
		}
		if len(req.CommentIDs) == 0 {
			api.BadRequest(w, "comment_ids is required", nil)
			return
		}
		if req.Action == "" {
			api.BadRequest(w, "action is required", map[string]any{"valid_actions": moderation.ActionNames()})
			return
		}

		actor := moderation.Actor{UserID: userID, Moderator: auth.IsModerator(r.Context())}

		out, err := engine.Apply(r.Context(), req.CommentIDs, req.Action, req.Reason, actor)
		if err != nil {
			if errors.Is(err, moderation.ErrUnknownAction) {
				api.BadRequest(w, "Invalid action", map[string]any{"valid_actions": moderation.ActionNames()})
				return
			}
			d.storeError(w, r, err, "Request timed out")
			return
		}

		api.WriteJSON(w, http.StatusOK, moderateResponse{
			Success: true,
			Summary: out.Summary,
			Results: out.Results,
		})
	}
}
