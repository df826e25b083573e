package prompt

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers prompt template routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/prompts", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/active", h.Active)
		r.Post("/select", h.Select)
		r.Post("/validate", h.Validate)
		r.Put("/custom", h.SetCustom)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/preview", h.Preview)
		})
	})
}
