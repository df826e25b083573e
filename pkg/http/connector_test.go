package http

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()}, WithRequestLogging())
}

func TestDoRequest_SessionHeaderAndQuery(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sess-1", r.Header.Get(SessionHeader))
		assert.Equal(t, "sess-1", r.URL.Query().Get("sessionId"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"content":"ok"}`))
	})

	var resp struct {
		Content string `json:"content"`
	}
	err := conn.DoRequest(context.Background(), http.MethodPost, "/ask", map[string]string{"query": "q"}, &resp,
		WithSessionID("sess-1"), WithQuery("sessionId", "sess-1"))

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
}

func TestDoRequest_NoSessionHeaderWhenEmpty(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header[SessionHeader]
		assert.False(t, present)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, conn.DoRequest(context.Background(), http.MethodDelete, "/threads/1", nil, nil, WithSessionID("")))
}

func TestDoRequest_HTTPErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "json message", body: `{"message":"thread not found"}`, wantMsg: "thread not found"},
		{name: "json error", body: `{"error":"bad input"}`, wantMsg: "bad input"},
		{name: "plain text", body: "boom", wantMsg: "boom"},
		{name: "empty body", body: "", wantMsg: "request failed with status 404 Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(tt.body))
			})

			err := conn.DoRequest(context.Background(), http.MethodGet, "/threads/x", nil, &struct{}{})

			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
		})
	}
}

func TestDoRequest_EmptyAndMalformedBodies(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.Write([]byte("{not json"))
		}
	})

	var out map[string]any
	err := conn.DoRequest(context.Background(), http.MethodPost, "/empty", nil, &out, WithRequiredBody())
	assert.ErrorIs(t, err, ErrEmptyResponse)

	err = conn.DoRequest(context.Background(), http.MethodPost, "/empty", nil, &out)
	assert.NoError(t, err)

	err = conn.DoRequest(context.Background(), http.MethodPost, "/bad", nil, &out)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDoRequest_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := conn.DoRequest(ctx, http.MethodPost, "/chat", map[string]string{}, &struct{}{})

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDoMultipartRequest_ReportsProgress(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "notes.txt", header.Filename)
		assert.Equal(t, "hello", string(data))
		w.Write([]byte(`{"status":"COMPLETED"}`))
	})

	var last, total int64
	body, err := conn.DoMultipartRequest(context.Background(), http.MethodPost, "/documents/upload",
		func(w *multipart.Writer) error {
			part, err := w.CreateFormFile("file", "notes.txt")
			if err != nil {
				return err
			}
			_, err = part.Write([]byte("hello"))
			return err
		},
		WithUploadProgress(func(sent, all int64) {
			last, total = sent, all
		}),
	)

	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"COMPLETED"}`, string(body))
	assert.Greater(t, total, int64(0))
	assert.Equal(t, total, last)
}

func TestStaticHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "rag-playground/test", r.Header.Get("User-Agent"))
		w.Write([]byte("user: hi"))
	}))
	defer srv.Close()

	conn := NewConnector(&ConnectorConfig{BaseURL: srv.URL}, WithAuthToken("secret"), WithUserAgent("rag-playground/test"))

	text, err := conn.DoTextRequest(context.Background(), http.MethodGet, "/history")
	require.NoError(t, err)
	assert.Equal(t, "user: hi", text)
}

func TestInsecureSkipVerify(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	strict := NewConnector(&ConnectorConfig{BaseURL: srv.URL}, WithRequestTimeout(5*time.Second))
	_, err := strict.DoTextRequest(context.Background(), http.MethodGet, "/")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)

	lenient := NewConnector(&ConnectorConfig{BaseURL: srv.URL}, WithRequestTimeout(5*time.Second), WithInsecureSkipVerify(true))
	text, err := lenient.DoTextRequest(context.Background(), http.MethodGet, "/")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}
