// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the signed-in user's profile.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeMe)                  // mounted under /profile
	r.Put("/", h.ServeUpdate)              // /profile
	r.Post("/picture", h.ServePicture)     // /profile/picture
	r.Post("/heartbeat", h.ServeHeartbeat) // /profile/heartbeat
	return r
}
