package document

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

// multipart parts above this size are spilled to temporary files
const formMemory = 10 << 20

type Handler struct {
	coordinator DocumentCoordinator
	sessions    SessionProvider
}

func NewHandler(coordinator DocumentCoordinator, sessions SessionProvider) *Handler {
	return &Handler{
		coordinator: coordinator,
		sessions:    sessions,
	}
}

// Upload handles POST /documents
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadDocument")

	if err := r.ParseMultipartForm(formMemory); err != nil {
		ctxzap.Warn(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(ctx, w, http.StatusBadRequest, "invalid form data", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.UsecaseError(ctx, w, fmt.Errorf("%w: file", entity.ErrMissingField))
		return
	}
	defer file.Close()

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	upload := entity.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}
	meta := entity.UploadMetadata{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}

	ctxzap.Info(ctx, "uploading document",
		zap.String("filename", upload.Filename),
		zap.Int64("size", upload.Size),
	)

	doc, err := h.coordinator.Upload(ctx, sessionID, upload, meta, nil)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Created(w, doc)
}

// List handles GET /documents
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListDocuments")

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	docs, err := h.coordinator.List(ctx, sessionID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, docs)
}

// Get handles GET /documents/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "id")
	ctx := logger.AddFields(logger.WithAction(r.Context(), "GetDocument"), zap.String("document_id", documentID))

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	doc, err := h.coordinator.Get(ctx, sessionID, documentID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.Success(w, doc)
}

// Delete handles DELETE /documents/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "id")
	ctx := logger.AddFields(logger.WithAction(r.Context(), "DeleteDocument"), zap.String("document_id", documentID))

	sessionID, err := h.sessions.Require()
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	if err := h.coordinator.Delete(ctx, sessionID, documentID); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}
	response.NoContent(w)
}
