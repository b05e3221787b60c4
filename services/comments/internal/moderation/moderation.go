// Package moderation applies bulk status transitions to comments with
// per-item accounting. A batch is never atomic: each id succeeds, is a
// no-op, or fails on its own, and failures never abort sibling ids.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/example/social-pulse/internal/platform/events"
	"github.com/example/social-pulse/services/comments/internal/store"
)

// Actions maps the request verb onto the target status. Reopen moves a
// moderated comment back to pending and is reserved for moderators.
var Actions = map[string]string{
	"approve": store.StatusApproved,
	"reject":  store.StatusRejected,
	"flag":    store.StatusFlagged,
	"reopen":  store.StatusPending,
}

// ActionNames returns the valid verbs in stable order, for error payloads.
func ActionNames() []string {
	names := make([]string, 0, len(Actions))
	for a := range Actions {
		names = append(names, a)
	}
	sort.Strings(names)
	return names
}

// ErrUnknownAction is returned for a verb outside Actions.
var ErrUnknownAction = errors.New("unknown moderation action")

// Per-item result states.
const (
	ItemUpdated   = "updated"
	ItemUnchanged = "unchanged"
	ItemFailed    = "failed"
)

type ItemResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type ItemFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Summary is the batch-level accounting. SuccessfullyUpdated counts only ids
// whose persisted status actually changed; no-op repeats are successes but do
// not inflate it.
type Summary struct {
	SuccessfullyUpdated int           `json:"successfully_updated"`
	Failed              []ItemFailure `json:"failed"`
}

type Outcome struct {
	Summary Summary      `json:"summary"`
	Results []ItemResult `json:"results"`
}

// Actor identifies who is running the batch.
type Actor struct {
	UserID    string
	Moderator bool
}

// Engine runs moderation batches against the comment store, emitting an audit
// event and invalidating affected users' cached searches afterwards.
type Engine struct {
	Store  store.CommentStore
	Events *events.Publisher
	// Invalidate drops cached search responses for one owner. Nil disables
	// invalidation.
	Invalidate func(userID string)
	Logger     *zap.Logger
}

// Apply transitions every id toward the action's target status. Ids are
// processed independently; the returned error is non-nil only for
// batch-level problems (unknown action, cancelled context).
func (e *Engine) Apply(ctx context.Context, ids []string, action, reason string, actor Actor) (Outcome, error) {
	target, ok := Actions[action]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	ids = dedupe(ids)

	found, err := e.Store.GetByIDs(ctx, ids)
	if err != nil {
		return Outcome{}, err
	}
	byID := make(map[string]store.Comment, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	out := Outcome{Summary: Summary{Failed: []ItemFailure{}}, Results: make([]ItemResult, 0, len(ids))}
	touched := map[string]struct{}{}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		res := e.applyOne(ctx, byID, id, action, target, reason, actor)
		out.Results = append(out.Results, res)
		switch res.Status {
		case ItemUpdated:
			out.Summary.SuccessfullyUpdated++
			touched[byID[id].UserID] = struct{}{}
		case ItemFailed:
			out.Summary.Failed = append(out.Summary.Failed, ItemFailure{ID: id, Reason: res.Reason})
		}
	}

	if e.Invalidate != nil {
		for uid := range touched {
			e.Invalidate(uid)
		}
	}
	e.Events.Publish(events.SubjectModerationApplied, "moderation_applied", actor.UserID, map[string]any{
		"action":               action,
		"requested":            len(ids),
		"successfully_updated": out.Summary.SuccessfullyUpdated,
		"failed":               len(out.Summary.Failed),
	})

	return out, nil
}

func (e *Engine) applyOne(ctx context.Context, byID map[string]store.Comment, id, action, target, reason string, actor Actor) ItemResult {
	c, ok := byID[id]
	if !ok {
		return ItemResult{ID: id, Status: ItemFailed, Reason: "comment not found"}
	}
	if !actor.Moderator && c.UserID != actor.UserID {
		return ItemResult{ID: id, Status: ItemFailed, Reason: "not authorized to moderate this comment"}
	}
	if target == store.StatusPending && !actor.Moderator {
		return ItemResult{ID: id, Status: ItemFailed, Reason: "reopen requires moderator role"}
	}
	if c.Status == target {
		return ItemResult{ID: id, Status: ItemUnchanged}
	}
	// Forward transitions start from pending; anything else needs a reopen
	// first.
	if target != store.StatusPending && c.Status != store.StatusPending {
		return ItemResult{ID: id, Status: ItemFailed, Reason: fmt.Sprintf("cannot %s a %s comment", action, c.Status)}
	}

	changed, err := e.Store.UpdateStatus(ctx, id, target, actor.UserID, reason)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ItemResult{ID: id, Status: ItemFailed, Reason: "comment not found"}
	case err != nil:
		if e.Logger != nil {
			e.Logger.Error("moderation transition failed", zap.String("comment_id", id), zap.Error(err))
		}
		return ItemResult{ID: id, Status: ItemFailed, Reason: "storage error"}
	case !changed:
		// Raced with an identical transition; already at the target.
		return ItemResult{ID: id, Status: ItemUnchanged}
	}
	return ItemResult{ID: id, Status: ItemUpdated}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
