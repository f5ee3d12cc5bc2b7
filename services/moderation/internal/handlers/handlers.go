// Package handlers exposes the moderation service over REST.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/mentor-platform/internal/platform/api"
	"github.com/example/mentor-platform/internal/platform/auth"
	"github.com/example/mentor-platform/internal/platform/httpserver"
	"github.com/example/mentor-platform/services/moderation/internal/flags"
	"github.com/example/mentor-platform/services/moderation/internal/messages"
	"github.com/example/mentor-platform/services/moderation/internal/store"
	"github.com/example/mentor-platform/services/moderation/internal/votes"
)

// Deps is everything the handlers need. Log may be nil.
type Deps struct {
	Store    *store.Store
	Votes    *votes.Engine
	Flags    *flags.Manager
	Messages *messages.Service
	Log      *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// actorFrom builds the caller from the identity RequireUser put in the
// context. It writes 401 and returns false when there is none.
func actorFrom(w http.ResponseWriter, r *http.Request) (store.Actor, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		api.Unauthorized(w, "UNAUTHORIZED", "authentication required", requestID(r))
		return store.Actor{}, false
	}
	role, _ := auth.RoleFromContext(r.Context())
	return store.Actor{ID: userID, Role: store.Role(role)}, true
}

func urlID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, name))
	if id == "" {
		api.BadRequest(w, "MISSING_ID", name+" is required", requestID(r), nil)
		return "", false
	}
	return id, true
}

func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		api.BadRequest(w, "INVALID_JSON", "invalid JSON", requestID(r), nil)
		return req, false
	}
	return req, true
}

func requestID(r *http.Request) string {
	return httpserver.RequestIDFromContext(r.Context())
}

// writeError maps domain errors onto the API error envelope. Only unexpected
// failures are logged.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	rid := requestID(r)
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		api.Validation(w, verr.Field, verr.Error(), rid)
	case errors.Is(err, store.ErrNotFound):
		api.NotFound(w, api.CodeNotFound, "not found", rid)
	case errors.Is(err, votes.ErrSelfVote):
		api.Forbidden(w, "SELF_VOTE", "cannot vote on your own content", rid)
	case errors.Is(err, store.ErrForbidden):
		api.Forbidden(w, api.CodeForbidden, "admin role required", rid)
	case errors.Is(err, store.ErrConflict):
		api.Conflict(w, api.CodeConflict, "too many concurrent updates, retry", rid, nil)
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", rid),
			zap.Error(err))
		api.Internal(w, rid)
	}
}
