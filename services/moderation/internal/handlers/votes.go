package handlers

import (
	"context"
	"net/http"

	"github.com/example/mentor-platform/internal/platform/api"
	"github.com/example/mentor-platform/services/moderation/internal/store"
	"github.com/example/mentor-platform/services/moderation/internal/votes"
)

type voteRequest struct {
	Direction string `json:"direction"`
}

// Vote handles POST /v1/{threads|answers}/{id}/vote
func Vote(d Deps, target store.TargetType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		req, ok := decodeJSON[voteRequest](w, r)
		if !ok {
			return
		}
		dir, err := votes.ParseDirection(req.Direction)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		updated, err := d.Votes.Vote(r.Context(), target, id, actor.ID, dir)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}

// Like handles POST /v1/{threads|answers}/{id}/like
func Like(d Deps, target store.TargetType) http.HandlerFunc {
	return toggle(d, target, d.Votes.Like)
}

// Dislike handles POST /v1/{threads|answers}/{id}/dislike
func Dislike(d Deps, target store.TargetType) http.HandlerFunc {
	return toggle(d, target, d.Votes.Dislike)
}

func toggle(d Deps, target store.TargetType, fn func(context.Context, store.TargetType, string, string) (store.Votable, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		updated, err := fn(r.Context(), target, id, actor.ID)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}
