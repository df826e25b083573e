package thread

import (
	"context"
	"net/http"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/pkg/logger"
	"github.com/futig/rag-playground/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	store        ThreadStore
	sessions     SessionProvider
	conversation Conversation
}

func NewHandler(store ThreadStore, sessions SessionProvider, conversation Conversation) *Handler {
	return &Handler{
		store:        store,
		sessions:     sessions,
		conversation: conversation,
	}
}

type activateResponse struct {
	Messages []entity.Message `json:"messages"`
}

// List handles GET /threads
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListThreads")

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	threads, err := h.store.ListForSession(ctx, sessionID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, threads)
}

// Create handles POST /threads
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateThread")

	var req entity.CreateThreadRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	thread, err := h.store.Create(ctx, sessionID, &req)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Created(w, thread)
}

// Get handles GET /threads/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := h.threadContext(r, "GetThread")

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	thread, err := h.store.Get(ctx, sessionID, chi.URLParam(r, "id"))
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, thread)
}

// Delete handles DELETE /threads/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := h.threadContext(r, "DeleteThread")

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	if err := h.store.Delete(ctx, sessionID, chi.URLParam(r, "id")); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.NoContent(w)
}

// AddMessage handles POST /threads/{id}/messages
func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	ctx := h.threadContext(r, "AddThreadMessage")

	var req entity.AddMessageRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	thread, err := h.store.AppendMessage(ctx, sessionID, chi.URLParam(r, "id"), &req)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, thread)
}

// UpdateTitle handles PUT /threads/{id}/title
func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	ctx := h.threadContext(r, "UpdateThreadTitle")

	var req entity.UpdateTitleRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	thread, err := h.store.UpdateTitle(ctx, sessionID, chi.URLParam(r, "id"), req.Title)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, thread)
}

// Archive handles POST /threads/{id}/archive
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	ctx := h.threadContext(r, "ArchiveThread")

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	if err := h.store.Archive(ctx, sessionID, chi.URLParam(r, "id")); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.NoContent(w)
}

// Activate handles POST /threads/{id}/activate and loads the thread into the conversation
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	ctx := h.threadContext(r, "ActivateThread")

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	messages, err := h.store.Activate(ctx, sessionID, chi.URLParam(r, "id"))
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	h.conversation.ReplaceMessages(messages)
	ctxzap.Info(ctx, "thread activated", zap.Int("messages", len(messages)))

	response.Success(w, activateResponse{Messages: messages})
}

func (h *Handler) threadContext(r *http.Request, action string) context.Context {
	return logger.AddFields(logger.WithAction(r.Context(), action), zap.String("thread_id", chi.URLParam(r, "id")))
}
