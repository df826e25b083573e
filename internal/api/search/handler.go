package search

import (
	"net/http"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/pkg/logger"
	"github.com/futig/rag-playground/internal/pkg/response"
)

type Handler struct {
	service  SearchService
	sessions SessionProvider
}

func NewHandler(service SearchService, sessions SessionProvider) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
	}
}

// Search handles POST /search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AdvancedSearch")

	var req entity.AdvancedSearchRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	resp, err := h.service.Search(ctx, sessionID, req)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, resp)
}

// Next handles POST /search/next
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SearchNextPage")

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	resp, err := h.service.NextPage(ctx, sessionID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, resp)
}

// Previous handles POST /search/previous
func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SearchPreviousPage")

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	resp, err := h.service.PreviousPage(ctx, sessionID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, resp)
}

// History handles GET /search/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SearchHistory")

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	entries, err := h.service.History(ctx, sessionID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	if entries == nil {
		entries = []entity.SearchHistoryEntry{}
	}
	response.Success(w, entries)
}

// ClearHistory handles DELETE /search/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ClearSearchHistory")

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	if err := h.service.ClearHistory(ctx, sessionID); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.NoContent(w)
}
