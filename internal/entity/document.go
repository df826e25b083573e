package entity

import (
	"fmt"
	"io"
	"strings"
	"time"
)

type DocumentStatus string

const (
	DocumentStatusUploading  DocumentStatus = "UPLOADING"
	DocumentStatusProcessing DocumentStatus = "PROCESSING"
	DocumentStatusCompleted  DocumentStatus = "COMPLETED"
	DocumentStatusFailed     DocumentStatus = "FAILED"
)

type DocumentInfo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	TotalChunks int       `json:"totalChunks"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// FileUpload is a file selected for upload. Size and ContentType are what the caller declares.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadMetadata travels as the JSON "metadata" part of the multipart request.
type UploadMetadata struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	SessionID   string         `json:"sessionId,omitempty"`
}

type DocumentUploadResponse struct {
	DocumentID      string         `json:"documentId"`
	Title           string         `json:"title"`
	Status          DocumentStatus `json:"status"`
	TotalChunks     int            `json:"totalChunks"`
	ProcessedChunks int            `json:"processedChunks"`
	UploadedAt      time.Time      `json:"uploadedAt"`
	Errors          []string       `json:"errors,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// UploadFailedError carries the terminal status and the backend-reported errors.
type UploadFailedError struct {
	Status DocumentStatus
	Errors []string
}

func (e *UploadFailedError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s: status %s", ErrUploadFailed, e.Status)
	}
	return fmt.Sprintf("%s: status %s: %s", ErrUploadFailed, e.Status, strings.Join(e.Errors, "; "))
}

func (e *UploadFailedError) Unwrap() error {
	return ErrUploadFailed
}
