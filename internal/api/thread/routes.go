package thread

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers conversation thread routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/threads", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Post("/messages", h.AddMessage)
			r.Put("/title", h.UpdateTitle)
			r.Post("/archive", h.Archive)
			r.Post("/activate", h.Activate)
		})
	})
}
