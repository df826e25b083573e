package thread

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/rag-playground/internal/config"
	"github.com/futig/rag-playground/internal/entity"
	pkghttp "github.com/futig/rag-playground/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.BackendConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: srv.URL},
		ThreadsEndpoint:  "/threads",
	}
	return NewConnector(cfg, zap.NewNop())
}

func TestAddMessage_SendsBody(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/threads/t-1/messages", r.URL.Path)
		assert.Equal(t, "s1", r.Header.Get(pkghttp.SessionHeader))

		var req entity.AddMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ASSISTANT", req.Role)
		assert.Equal(t, "hello", req.Content)

		w.Write([]byte(`{"id":"t-1","status":"ACTIVE","messages":[{"id":"m-1","content":"hello","role":"ASSISTANT"}]}`))
	})

	thread, err := conn.AddMessage(context.Background(), "s1", "t-1", &entity.AddMessageRequest{Content: "hello", Role: "ASSISTANT"})
	require.NoError(t, err)
	require.Len(t, thread.Messages, 1)
	assert.Equal(t, entity.RoleAssistant, thread.ToMessages()[0].Role)
}

func TestArchive_HTTPError(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"thread already archived"}`))
	})

	err := conn.Archive(context.Background(), "s1", "t-1")

	var httpErr *pkghttp.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.StatusCode)
	assert.Equal(t, "thread already archived", httpErr.Message)
}
