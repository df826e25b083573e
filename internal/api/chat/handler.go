package chat

import (
	"net/http"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/pkg/logger"
	"github.com/futig/rag-playground/internal/pkg/response"
	"github.com/futig/rag-playground/internal/usecase/quality"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	orchestrator Orchestrator
	defaultMode  entity.Mode
}

func NewHandler(orchestrator Orchestrator, defaultMode entity.Mode) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		defaultMode:  defaultMode,
	}
}

// SendMessage handles POST /chat/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SendMessage")

	var req sendMessageRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	if req.Mode == "" {
		req.Mode = h.defaultMode
	}

	msg, err := h.orchestrator.SendMessage(ctx, req.Content, req.Mode)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	resp := sendMessageResponse{Message: msg}
	if req.Mode == entity.ModeChat {
		resp.SearchResults = h.orchestrator.SearchResults()
	}
	response.Success(w, resp)
}

// Cancel handles POST /chat/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	canceled := h.orchestrator.Cancel()
	ctxzap.Info(r.Context(), "cancel requested", zap.Bool("canceled", canceled))
	response.Success(w, cancelResponse{Canceled: canceled})
}

// Messages handles GET /chat/messages
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	response.Success(w, messagesResponse{
		Messages: h.orchestrator.Messages(),
		Loading:  h.orchestrator.Loading(),
	})
}

// ClearMessages handles DELETE /chat/messages
func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.ClearMessages(logger.WithAction(r.Context(), "ClearMessages"))
	response.NoContent(w)
}

// LoadHistory handles POST /chat/history/load
func (h *Handler) LoadHistory(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "LoadHistory")

	messages, err := h.orchestrator.LoadHistory(ctx)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, messagesResponse{Messages: messages})
}

// Results handles GET /chat/results
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	response.Success(w, resultsResponse{Results: h.orchestrator.SearchResults()})
}

// Config handles GET /chat/config
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.orchestrator.Config())
}

// UpdateConfig handles PATCH /chat/config. Valid fields are applied even when others are rejected.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UpdateConfig")

	var patch entity.RAGConfigPatch
	if err := response.DecodeJSON(r, &patch); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	cfg, err := h.orchestrator.UpdateConfig(patch)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, cfg)
}

// Quality handles GET /chat/quality
func (h *Handler) Quality(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.orchestrator.EvaluateSearchQuality())
}

// Feedback handles POST /chat/feedback
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Feedback")

	var req feedbackRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	feedback, err := quality.ParseFeedback(req.Feedback)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	report := h.orchestrator.EvaluateSearchQuality()
	applied, cfg, err := h.orchestrator.OptimizeParameters(feedback)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "parameters optimized",
		zap.String("feedback", string(feedback)),
		zap.Int("top_k", cfg.TopK),
		zap.Float64("threshold", cfg.Threshold),
	)
	response.Success(w, feedbackResponse{Applied: applied, Config: cfg, Report: report})
}

// VectorSearch handles POST /chat/vector-search
func (h *Handler) VectorSearch(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "VectorSearch")

	var req vectorSearchRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	results, err := h.orchestrator.SearchByEmbedding(ctx, req.Embedding, req.TopK)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, resultsResponse{Results: results})
}

// Export handles GET /chat/export?format=md|pdf|docx
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Export")

	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(entity.FormatMarkdown)
	}
	format, err := entity.ParseExportFormat(raw)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	export, err := h.orchestrator.ExportTranscript(format)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		ctxzap.Warn(ctx, "failed to write export", zap.Error(err))
	}
}

// Session handles GET /session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	response.Success(w, sessionResponse{SessionID: h.orchestrator.SessionID()})
}

// ResetSession handles POST /session/reset
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ResetSession")

	id, err := h.orchestrator.ResetSession(ctx)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, sessionResponse{SessionID: id})
}
