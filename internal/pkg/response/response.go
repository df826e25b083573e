package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/futig/rag-playground/internal/entity"
	pkghttp "github.com/futig/rag-playground/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// Status is already sent; an encode failure can only be dropped.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error logs err and writes an error response
func Error(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	fields := []zap.Field{zap.Int("status", status)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, fields...)
	} else {
		ctxzap.Warn(ctx, message, fields...)
	}

	JSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created response
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON reads a request body into v. An empty body leaves v untouched.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", entity.ErrInvalidFormat, err)
	}
	return nil
}

var statusBySentinel = []struct {
	target error
	status int
}{
	{entity.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{entity.ErrUnsupportedContentType, http.StatusUnsupportedMediaType},
	{entity.ErrTemplateNotFound, http.StatusNotFound},
	{entity.ErrThreadNotFound, http.StatusNotFound},
	{entity.ErrDocumentNotFound, http.StatusNotFound},
	{entity.ErrThreadDeleted, http.StatusGone},
	{entity.ErrRequestInFlight, http.StatusConflict},
	{entity.ErrRequestCanceled, http.StatusConflict},
	{entity.ErrRequestSuperseded, http.StatusConflict},
	{entity.ErrUploadInProgress, http.StatusConflict},
	{entity.ErrLastTemplate, http.StatusConflict},
	{entity.ErrInvalidThreadTransition, http.StatusConflict},
	{entity.ErrNoNextPage, http.StatusConflict},
	{entity.ErrNoPreviousPage, http.StatusConflict},
	{entity.ErrUploadFailed, http.StatusUnprocessableEntity},
	{entity.ErrSessionUnavailable, http.StatusServiceUnavailable},
	{pkghttp.ErrEmptyResponse, http.StatusBadGateway},
	{pkghttp.ErrMalformedResponse, http.StatusBadGateway},
}

var badRequest = []error{
	entity.ErrEmptyMessage,
	entity.ErrInvalidMode,
	entity.ErrInvalidConfig,
	entity.ErrInvalidFeedback,
	entity.ErrInvalidEmbedding,
	entity.ErrEmptyPrompt,
	entity.ErrEmptyVariable,
	entity.ErrInvalidTemplate,
	entity.ErrMissingField,
	entity.ErrInvalidFormat,
	entity.ErrInvalidParameter,
}

// UsecaseError maps domain and backend errors onto HTTP statuses.
func UsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		Error(ctx, w, http.StatusBadGateway, "backend error: "+httpErr.Message, err)
		return
	}

	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) && !errors.Is(err, context.Canceled) {
		Error(ctx, w, http.StatusBadGateway, "backend unreachable", err)
		return
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.target) {
			Error(ctx, w, s.status, err.Error(), err)
			return
		}
	}

	for _, target := range badRequest {
		if errors.Is(err, target) {
			Error(ctx, w, http.StatusBadRequest, err.Error(), err)
			return
		}
	}

	Error(ctx, w, http.StatusInternalServerError, "internal server error", err)
}
