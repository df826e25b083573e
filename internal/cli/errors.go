package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/rag-playground/internal/entity"
	pkghttp "github.com/futig/rag-playground/pkg/http"
)

// describeError turns a use case error into a line for the terminal.
func describeError(err error) string {
	var (
		httpErr *pkghttp.HTTPError
		netErr  *pkghttp.NetworkError
	)

	switch {
	case errors.Is(err, entity.ErrRequestInFlight):
		return "A request is already running. Use /cancel or Ctrl+C to stop it."
	case errors.Is(err, entity.ErrRequestSuperseded):
		return "The request was replaced by a newer one."
	case errors.Is(err, entity.ErrRequestCanceled), errors.Is(err, context.Canceled):
		return "Request canceled."
	case errors.Is(err, entity.ErrUploadInProgress):
		return "Another upload is still running."
	case errors.Is(err, entity.ErrSessionUnavailable):
		return "No session yet. Try /reset."
	case errors.As(err, &httpErr):
		return fmt.Sprintf("Backend error (%d): %s", httpErr.StatusCode, httpErr.Message)
	case errors.As(err, &netErr):
		return "Backend is unreachable: " + netErr.Error()
	case errors.Is(err, pkghttp.ErrEmptyResponse):
		return "The server returned an empty response."
	case errors.Is(err, pkghttp.ErrMalformedResponse):
		return "The server returned a response that could not be read."
	default:
		return err.Error()
	}
}
