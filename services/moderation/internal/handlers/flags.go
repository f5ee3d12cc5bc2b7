package handlers

import (
	"net/http"
	"strings"

	"github.com/example/mentor-platform/internal/platform/api"
	"github.com/example/mentor-platform/services/moderation/internal/flags"
	"github.com/example/mentor-platform/services/moderation/internal/store"
)

type createFlagRequest struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	Reason     string `json:"reason"`
	Notes      string `json:"notes,omitempty"`
}

type updateFlagRequest struct {
	Status string `json:"status"`
}

type flagsResponse struct {
	Flags []store.Flag `json:"flags"`
}

// CreateFlag handles POST /v1/flags
func CreateFlag(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		req, ok := decodeJSON[createFlagRequest](w, r)
		if !ok {
			return
		}
		f, err := d.Flags.Create(r.Context(), flags.CreateInput{
			TargetType: store.TargetType(req.TargetType),
			TargetID:   req.TargetID,
			ReporterID: actor.ID,
			Reason:     req.Reason,
			Notes:      req.Notes,
		})
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, f)
	}
}

// ListFlags handles GET /v1/flags?targetType=thread,answer
// Results are newest first.
func ListFlags(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var types []store.TargetType
		for _, raw := range strings.Split(r.URL.Query().Get("targetType"), ",") {
			raw = strings.ToLower(strings.TrimSpace(raw))
			if raw == "" {
				continue
			}
			t := store.TargetType(raw)
			if !t.Valid() {
				writeError(w, r, d.logger(), store.Invalid("targetType", "must be thread, answer or message"))
				return
			}
			types = append(types, t)
		}
		items, err := d.Flags.List(r.Context(), types...)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		flags.SortNewestFirst(items)
		api.WriteJSON(w, http.StatusOK, flagsResponse{Flags: items})
	}
}

// ListFlagsForTarget handles GET /v1/flags/target/{type}/{id}
func ListFlagsForTarget(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		typ, ok := urlID(w, r, "type")
		if !ok {
			return
		}
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		items, err := d.Flags.ListForTarget(r.Context(), store.TargetType(strings.ToLower(typ)), id)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, flagsResponse{Flags: items})
	}
}

// UpdateFlagStatus handles PATCH /v1/flags/{id}
func UpdateFlagStatus(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		req, ok := decodeJSON[updateFlagRequest](w, r)
		if !ok {
			return
		}
		status := store.FlagStatus(strings.ToLower(strings.TrimSpace(req.Status)))
		f, err := d.Flags.UpdateStatus(r.Context(), actor, id, status)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, f)
	}
}
