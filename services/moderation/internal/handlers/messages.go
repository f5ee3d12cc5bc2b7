package handlers

import (
	"net/http"

	"github.com/example/mentor-platform/internal/platform/api"
	"github.com/example/mentor-platform/services/moderation/internal/stats"
	"github.com/example/mentor-platform/services/moderation/internal/store"
)

type sendMessageRequest struct {
	Text string `json:"text"`
}

type flagMessageRequest struct {
	Reason string `json:"reason"`
}

type messagesResponse struct {
	Messages []store.Message `json:"messages"`
}

// SendMessage handles POST /v1/connections/{id}/messages
//
// The sender is always the token subject. Whether the caller belongs to the
// connection is checked by the connections service in front of this one;
// the connection id is taken as given.
func SendMessage(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		connID, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		req, ok := decodeJSON[sendMessageRequest](w, r)
		if !ok {
			return
		}
		m, err := d.Store.Messages.Create(r.Context(), store.Message{
			ConnectionID: connID,
			SenderID:     actor.ID,
			Text:         req.Text,
		})
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, m)
	}
}

// ListMessages handles GET /v1/connections/{id}/messages
// Membership of the connection is enforced upstream, as for SendMessage.
func ListMessages(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connID, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		items, err := d.Store.Messages.ListByConnection(r.Context(), connID)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, messagesResponse{Messages: items})
	}
}

// FlagMessage handles POST /v1/messages/{id}/flag
func FlagMessage(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		req, ok := decodeJSON[flagMessageRequest](w, r)
		if !ok {
			return
		}
		m, err := d.Messages.Flag(r.Context(), actor, id, req.Reason)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, m)
	}
}

// UnflagMessage handles DELETE /v1/messages/{id}/flag
func UnflagMessage(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		m, err := d.Messages.Unflag(r.Context(), actor, id)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, m)
	}
}

// DeleteMessage handles DELETE /v1/messages/{id}
func DeleteMessage(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		deleted, err := d.Messages.Delete(r.Context(), actor, id)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		if !deleted {
			api.NotFound(w, api.CodeNotFound, "message not found", requestID(r))
			return
		}
		api.WriteJSON(w, http.StatusOK, deletedResponse{Deleted: true})
	}
}

// ListFlaggedMessages handles GET /v1/messages/flagged
func ListFlaggedMessages(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		items, err := d.Messages.ListFlagged(r.Context(), actor)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, messagesResponse{Messages: items})
	}
}

// AdminOverview handles GET /v1/admin/overview
func AdminOverview(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := stats.Compute(r.Context(), d.Store)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, o)
	}
}
