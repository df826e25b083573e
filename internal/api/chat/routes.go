package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat and session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/messages", h.SendMessage)
		r.Get("/messages", h.Messages)
		r.Delete("/messages", h.ClearMessages)
		r.Post("/cancel", h.Cancel)
		r.Post("/history/load", h.LoadHistory)
		r.Get("/results", h.Results)
		r.Get("/config", h.Config)
		r.Patch("/config", h.UpdateConfig)
		r.Get("/quality", h.Quality)
		r.Post("/feedback", h.Feedback)
		r.Post("/vector-search", h.VectorSearch)
		r.Get("/export", h.Export)
	})

	r.Get("/session", h.Session)
	r.Post("/session/reset", h.ResetSession)
}
