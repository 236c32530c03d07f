// internal/app/features/tournaments/routes.go
package tournaments

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for tournament listing, creation, and
// registration.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)   // mounted under /tournaments
	r.Post("/", h.ServeCreate)
	r.Get("/{id}", h.ServeGet)
	r.Post("/{id}/register", h.ServeRegister)
	return r
}
