package handlers

import (
	"net/http"

	"github.com/example/mentor-platform/internal/platform/api"
	"github.com/example/mentor-platform/services/moderation/internal/store"
)

type createThreadRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type createAnswerRequest struct {
	Content string `json:"content"`
}

type threadsResponse struct {
	Threads []store.Thread `json:"threads"`
}

type answersResponse struct {
	Answers []store.Answer `json:"answers"`
}

type deletedResponse struct {
	Deleted bool `json:"deleted"`
}

// CreateThread handles POST /v1/threads
func CreateThread(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		req, ok := decodeJSON[createThreadRequest](w, r)
		if !ok {
			return
		}
		th, err := d.Store.Threads.Create(r.Context(), store.Thread{
			AuthorID: actor.ID,
			Title:    req.Title,
			Content:  req.Content,
			Category: req.Category,
		})
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, th)
	}
}

// ListThreads handles GET /v1/threads
func ListThreads(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := d.Store.Threads.List(r.Context())
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, threadsResponse{Threads: items})
	}
}

// DeleteThread handles DELETE /v1/threads/{id}. Answers of the thread are
// removed with it.
func DeleteThread(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		deleted, err := d.Store.Threads.Delete(r.Context(), id)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		if !deleted {
			api.NotFound(w, api.CodeNotFound, "thread not found", requestID(r))
			return
		}
		api.WriteJSON(w, http.StatusOK, deletedResponse{Deleted: true})
	}
}

// CreateAnswer handles POST /v1/threads/{id}/answers
func CreateAnswer(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		threadID, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		req, ok := decodeJSON[createAnswerRequest](w, r)
		if !ok {
			return
		}
		a, err := d.Store.Answers.Create(r.Context(), store.Answer{
			ThreadID:       threadID,
			AuthorID:       actor.ID,
			Content:        req.Content,
			IsMentorAnswer: actor.Role == store.RoleMentor,
		})
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, a)
	}
}

// DeleteAnswer handles DELETE /v1/answers/{id}
func DeleteAnswer(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		deleted, err := d.Store.Answers.Delete(r.Context(), id)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		if !deleted {
			api.NotFound(w, api.CodeNotFound, "answer not found", requestID(r))
			return
		}
		api.WriteJSON(w, http.StatusOK, deletedResponse{Deleted: true})
	}
}

// ListAnswers handles GET /v1/threads/{id}/answers
func ListAnswers(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threadID, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		items, err := d.Store.Answers.ListByThread(r.Context(), threadID)
		if err != nil {
			writeError(w, r, d.logger(), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, answersResponse{Answers: items})
	}
}
