package prompt

import (
	"fmt"
	"net/http"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/pkg/logger"
	"github.com/futig/rag-playground/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	engine PromptEngine
}

func NewHandler(engine PromptEngine) *Handler {
	return &Handler{engine: engine}
}

type textRequest struct {
	Text string `json:"text"`
}

type selectRequest struct {
	ID string `json:"id"`
}

type activeResponse struct {
	Selected string `json:"selected"`
	Custom   string `json:"custom,omitempty"`
}

type previewRequest struct {
	Query         string                `json:"query"`
	SearchResults []entity.SearchResult `json:"searchResults,omitempty"`
	Metadata      map[string]string     `json:"metadata,omitempty"`
}

type previewResponse struct {
	Prompt string `json:"prompt"`
}

// List handles GET /prompts?category=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		response.Success(w, h.engine.TemplatesByCategory(entity.TemplateCategory(category)))
		return
	}
	response.Success(w, h.engine.Templates())
}

// Get handles GET /prompts/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, ok := h.engine.Template(id)
	if !ok {
		response.UsecaseError(r.Context(), w, fmt.Errorf("%w: %s", entity.ErrTemplateNotFound, id))
		return
	}
	response.Success(w, t)
}

// Create handles POST /prompts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateTemplate")

	var req entity.PromptTemplate
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	t, err := h.engine.AddTemplate(req)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "template created", zap.String("template_id", t.ID))
	response.Created(w, t)
}

// Update handles PUT /prompts/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := logger.AddFields(logger.WithAction(r.Context(), "UpdateTemplate"), zap.String("template_id", chi.URLParam(r, "id")))

	var patch entity.PromptTemplatePatch
	if err := response.DecodeJSON(r, &patch); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	t, err := h.engine.UpdateTemplate(chi.URLParam(r, "id"), patch)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, t)
}

// Delete handles DELETE /prompts/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "DeleteTemplate")

	if err := h.engine.DeleteTemplate(chi.URLParam(r, "id")); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.NoContent(w)
}

// Preview handles POST /prompts/{id}/preview
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "PreviewTemplate")

	var req previewRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	text, err := h.engine.RenderTemplate(chi.URLParam(r, "id"), entity.PromptContext{
		UserQuery:     req.Query,
		SearchResults: req.SearchResults,
		Metadata:      req.Metadata,
	})
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, previewResponse{Prompt: text})
}

// Select handles POST /prompts/select
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SelectTemplate")

	var req selectRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	if err := h.engine.SelectTemplate(req.ID); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	h.Active(w, r)
}

// Active handles GET /prompts/active
func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	response.Success(w, activeResponse{
		Selected: h.engine.Selected(),
		Custom:   h.engine.CustomPrompt(),
	})
}

// Validate handles POST /prompts/validate
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(r.Context(), w, err)
		return
	}
	response.Success(w, h.engine.ValidatePrompt(req.Text))
}

// SetCustom handles PUT /prompts/custom. Blank text clears the override.
func (h *Handler) SetCustom(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SetCustomPrompt")

	var req textRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	if err := h.engine.SetCustomPrompt(req.Text); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	h.Active(w, r)
}
