package thread

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/futig/rag-playground/internal/config"
	"github.com/futig/rag-playground/internal/entity"
	threadapi "github.com/futig/rag-playground/internal/integration/thread"
	"github.com/futig/rag-playground/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const session = "session_test"

type flakyConnector struct {
	*threadapi.MockConnector
	failList bool
	calls    int
}

func (c *flakyConnector) List(ctx context.Context, sessionID string) ([]entity.ConversationThread, error) {
	if c.failList {
		return nil, errors.New("list unavailable")
	}
	return c.MockConnector.List(ctx, sessionID)
}

func (c *flakyConnector) Archive(ctx context.Context, sessionID, threadID string) error {
	c.calls++
	return c.MockConnector.Archive(ctx, sessionID, threadID)
}

type opRecorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *opRecorder) ObserveThreadOp(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, operation+":"+outcome)
}

func newTestStore(t *testing.T) (*Store, *flakyConnector, *opRecorder) {
	t.Helper()

	conn := &flakyConnector{MockConnector: threadapi.NewMockConnector(zap.NewNop())}
	rec := &opRecorder{}
	store := NewStore(
		conn,
		validator.NewValidator(config.UploadConfig{MaxFileSize: 1 << 20}),
		rec,
		config.CacheConfig{TTL: time.Minute, CleanupInterval: time.Minute},
		zap.NewNop(),
	)
	return store, conn, rec
}

func TestStore_CreateRefreshesMirror(t *testing.T) {
	store, _, rec := newTestStore(t)
	ctx := context.Background()

	_, cached := store.Cached(session)
	assert.False(t, cached)

	thread, err := store.Create(ctx, session, &entity.CreateThreadRequest{Title: "Research"})
	require.NoError(t, err)
	assert.Equal(t, entity.ThreadStatusActive, thread.Status)

	threads, cached := store.Cached(session)
	require.True(t, cached)
	require.Len(t, threads, 1)
	assert.Equal(t, thread.ID, threads[0].ID)
	assert.Equal(t, []string{"create:success"}, rec.ops)
}

func TestStore_CreateValidatesTitle(t *testing.T) {
	store, _, _ := newTestStore(t)

	_, err := store.Create(context.Background(), session, &entity.CreateThreadRequest{Title: "  "})
	assert.ErrorIs(t, err, entity.ErrMissingField)

	threads, err := store.ListForSession(context.Background(), session)
	require.NoError(t, err)
	assert.Empty(t, threads)
}

func TestStore_ArchiveTwiceIsRejectedLocally(t *testing.T) {
	store, conn, rec := newTestStore(t)
	ctx := context.Background()

	thread, err := store.Create(ctx, session, &entity.CreateThreadRequest{Title: "t"})
	require.NoError(t, err)

	require.NoError(t, store.Archive(ctx, session, thread.ID))
	cached, _ := store.Cached(session)
	assert.Equal(t, entity.ThreadStatusArchived, cached[0].Status)

	err = store.Archive(ctx, session, thread.ID)
	assert.ErrorIs(t, err, entity.ErrInvalidThreadTransition)
	assert.Equal(t, 1, conn.calls, "rejected transition must not reach the backend")
	assert.Contains(t, rec.ops, "archive:rejected")
}

func TestStore_DeletedThreadIsTerminal(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	thread, err := store.Create(ctx, session, &entity.CreateThreadRequest{Title: "t"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, session, thread.ID))

	cached, ok := store.Cached(session)
	require.True(t, ok)
	assert.Empty(t, cached)

	_, err = store.Get(ctx, session, thread.ID)
	assert.ErrorIs(t, err, entity.ErrThreadDeleted)
	assert.ErrorIs(t, store.Archive(ctx, session, thread.ID), entity.ErrThreadDeleted)
	assert.ErrorIs(t, store.Delete(ctx, session, thread.ID), entity.ErrThreadDeleted)
	_, err = store.AppendMessage(ctx, session, thread.ID, &entity.AddMessageRequest{Content: "x", Role: "user"})
	assert.ErrorIs(t, err, entity.ErrThreadDeleted)
}

func TestStore_AppendAndActivate(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	thread, err := store.Create(ctx, session, &entity.CreateThreadRequest{Title: "t"})
	require.NoError(t, err)

	_, err = store.AppendMessage(ctx, session, thread.ID, &entity.AddMessageRequest{Content: "question", Role: "USER"})
	require.NoError(t, err)
	_, err = store.AppendMessage(ctx, session, thread.ID, &entity.AddMessageRequest{Content: "answer", Role: "Assistant"})
	require.NoError(t, err)

	_, err = store.AppendMessage(ctx, session, thread.ID, &entity.AddMessageRequest{Content: "x", Role: "robot"})
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)

	messages, err := store.Activate(ctx, session, thread.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, entity.RoleUser, messages[0].Role)
	assert.Equal(t, "question", messages[0].Content)
	assert.Equal(t, entity.RoleAssistant, messages[1].Role)
}

func TestStore_AppendMessageSendsUpperCaseRole(t *testing.T) {
	var roles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`[]`))
			return
		}

		var req entity.AddMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		roles = append(roles, req.Role)
		w.Write([]byte(`{"id":"t-1","status":"ACTIVE"}`))
	}))
	t.Cleanup(srv.Close)

	conn := threadapi.NewConnector(config.BackendConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: srv.URL},
		ThreadsEndpoint:  "/threads",
	}, zap.NewNop())
	store := NewStore(
		conn,
		validator.NewValidator(config.UploadConfig{MaxFileSize: 1 << 20}),
		&opRecorder{},
		config.CacheConfig{TTL: time.Minute, CleanupInterval: time.Minute},
		zap.NewNop(),
	)

	for _, role := range []string{"USER", "assistant", " System "} {
		_, err := store.AppendMessage(context.Background(), session, "t-1", &entity.AddMessageRequest{Content: "x", Role: role})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"USER", "ASSISTANT", "SYSTEM"}, roles)
}

func TestStore_UpdateTitle(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	thread, err := store.Create(ctx, session, &entity.CreateThreadRequest{Title: "old"})
	require.NoError(t, err)

	_, err = store.UpdateTitle(ctx, session, thread.ID, "")
	assert.ErrorIs(t, err, entity.ErrMissingField)

	updated, err := store.UpdateTitle(ctx, session, thread.ID, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)

	cached, _ := store.Cached(session)
	assert.Equal(t, "new", cached[0].Title)
}

func TestStore_FailedRefreshInvalidatesMirror(t *testing.T) {
	store, conn, _ := newTestStore(t)
	ctx := context.Background()

	thread, err := store.Create(ctx, session, &entity.CreateThreadRequest{Title: "t"})
	require.NoError(t, err)
	_, ok := store.Cached(session)
	require.True(t, ok)

	conn.failList = true
	_, err = store.UpdateTitle(ctx, session, thread.ID, "renamed")
	require.NoError(t, err, "the mutation itself succeeded")

	_, ok = store.Cached(session)
	assert.False(t, ok)
}

func TestStore_UnknownThread(t *testing.T) {
	store, _, _ := newTestStore(t)

	_, err := store.Activate(context.Background(), session, "missing")
	assert.ErrorIs(t, err, entity.ErrThreadNotFound)
}
