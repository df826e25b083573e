package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrEmptyResponse is returned when a call that must produce a body returned none.
	ErrEmptyResponse = errors.New("empty response body")
	// ErrMalformedResponse is returned when the response body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response body")
)

// HTTPError represents a non-2xx response from the backend
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// newHTTPError extracts a human readable message from the body, falling back to the status text.
func newHTTPError(statusCode int, body []byte) *HTTPError {
	raw := strings.TrimSpace(string(body))

	msg := ""
	if raw != "" {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			msg = payload.Message
			if msg == "" {
				msg = payload.Error
			}
		} else {
			msg = raw
		}
	}

	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d %s", statusCode, http.StatusText(statusCode))
	}

	return &HTTPError{
		StatusCode: statusCode,
		Message:    msg,
		Body:       raw,
	}
}

// NetworkError represents a network-level error (connection, timeout, cancellation, etc.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeJSON decodes a response body, classifying empty and invalid payloads.
func DecodeJSON(body []byte, v any) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return ErrEmptyResponse
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return nil
}
