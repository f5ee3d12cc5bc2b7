package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/example/mentor-platform/internal/platform/auth"
	"github.com/example/mentor-platform/services/moderation/internal/store"
)

// Mount registers the /v1 routes. Reads of public content need no token;
// everything else runs behind RequireUser, and moderation routes behind
// RequireAdmin as well.
func Mount(r chi.Router, d Deps, verifier auth.JWTVerifier) {
	r.Get("/v1/threads", ListThreads(d))
	r.Get("/v1/threads/{id}/answers", ListAnswers(d))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))

		r.Post("/v1/threads", CreateThread(d))
		r.Post("/v1/threads/{id}/answers", CreateAnswer(d))
		for prefix, target := range map[string]store.TargetType{
			"/v1/threads/{id}": store.TargetThread,
			"/v1/answers/{id}": store.TargetAnswer,
		} {
			r.Post(prefix+"/vote", Vote(d, target))
			r.Post(prefix+"/like", Like(d, target))
			r.Post(prefix+"/dislike", Dislike(d, target))
		}

		r.Post("/v1/flags", CreateFlag(d))
		r.Post("/v1/connections/{id}/messages", SendMessage(d))
		r.Get("/v1/connections/{id}/messages", ListMessages(d))
		r.Post("/v1/messages/{id}/flag", FlagMessage(d))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Delete("/v1/threads/{id}", DeleteThread(d))
			r.Delete("/v1/answers/{id}", DeleteAnswer(d))
			r.Get("/v1/flags", ListFlags(d))
			r.Get("/v1/flags/target/{type}/{id}", ListFlagsForTarget(d))
			r.Patch("/v1/flags/{id}", UpdateFlagStatus(d))
			r.Get("/v1/messages/flagged", ListFlaggedMessages(d))
			r.Delete("/v1/messages/{id}/flag", UnflagMessage(d))
			r.Delete("/v1/messages/{id}", DeleteMessage(d))
			r.Get("/v1/admin/overview", AdminOverview(d))
		})
	})
}
