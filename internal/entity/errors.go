package entity

import "errors"

// Domain errors
var (
	// Chat errors
	ErrEmptyMessage       = errors.New("message is empty")
	ErrRequestInFlight    = errors.New("a request is already in flight")
	ErrRequestCanceled    = errors.New("request canceled")
	ErrRequestSuperseded  = errors.New("request superseded by a newer one")
	ErrInvalidMode        = errors.New("invalid chat mode")
	ErrInvalidFeedback    = errors.New("invalid feedback")
	ErrInvalidConfig      = errors.New("invalid rag config")
	ErrInvalidEmbedding   = errors.New("invalid embedding")
	ErrSessionUnavailable = errors.New("session is not initialized")

	// Prompt errors
	ErrEmptyPrompt      = errors.New("prompt is empty")
	ErrEmptyVariable    = errors.New("prompt contains an empty variable name")
	ErrInvalidTemplate  = errors.New("invalid prompt template")
	ErrTemplateNotFound = errors.New("prompt template not found")
	ErrLastTemplate     = errors.New("cannot delete the last remaining template")

	// Thread errors
	ErrThreadNotFound          = errors.New("thread not found")
	ErrThreadDeleted           = errors.New("thread is deleted")
	ErrInvalidThreadTransition = errors.New("invalid thread status transition")

	// Document errors
	ErrFileTooLarge           = errors.New("file too large")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrUploadInProgress       = errors.New("an upload is already in progress")
	ErrUploadFailed           = errors.New("document upload failed")
	ErrDocumentNotFound       = errors.New("document not found")

	// Search errors
	ErrNoNextPage     = errors.New("no next page")
	ErrNoPreviousPage = errors.New("no previous page")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
