// internal/app/features/friends/routes.go
package friends

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the friends list and request flow.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)                     // mounted under /friends
	r.Get("/requests", h.ServeInbox)            // /friends/requests
	r.Post("/requests", h.ServeSend)            // /friends/requests
	r.Post("/requests/{id}/accept", h.ServeAccept)
	r.Post("/requests/{id}/reject", h.ServeReject)
	return r
}

// SearchRoutes returns a subrouter for user search, mounted under /users.
func SearchRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/search", h.ServeSearch)
	return r
}
