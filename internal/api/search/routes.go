package search

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers advanced search routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/search", func(r chi.Router) {
		r.Post("/", h.Search)
		r.Post("/next", h.Next)
		r.Post("/previous", h.Previous)
		r.Get("/history", h.History)
		r.Delete("/history", h.ClearHistory)
	})
}
