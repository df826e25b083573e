package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/futig/rag-playground/internal/config"
	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/integration/rag"
	"github.com/futig/rag-playground/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, docs int) *Service {
	t.Helper()

	backend, err := rag.NewMockConnector(zap.NewNop())
	require.NoError(t, err)
	for i := 0; i < docs; i++ {
		_, err := backend.IndexDocument(context.Background(), fmt.Sprintf("gopher-%02d", i), "Gophers", fmt.Sprintf("gopher fact number %d", i))
		require.NoError(t, err)
	}

	return NewService(backend, validator.NewValidator(config.UploadConfig{MaxFileSize: 1}), zap.NewNop())
}

func TestSearch_PagingNavigation(t *testing.T) {
	svc := newTestService(t, 12)
	ctx := context.Background()

	_, err := svc.NextPage(ctx, "s1")
	assert.ErrorIs(t, err, entity.ErrNoNextPage)

	first, err := svc.Search(ctx, "s1", entity.AdvancedSearchRequest{
		Query:      "gopher",
		SearchType: entity.SearchTypeKeyword,
		Size:       5,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, first.TotalElements)
	assert.Equal(t, 3, first.TotalPages)
	assert.Len(t, first.Results, 5)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrevious)

	_, err = svc.PreviousPage(ctx, "s1")
	assert.ErrorIs(t, err, entity.ErrNoPreviousPage)

	second, err := svc.NextPage(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Page)

	third, err := svc.NextPage(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, third.Results, 2)
	assert.False(t, third.HasNext)

	_, err = svc.NextPage(ctx, "s1")
	assert.ErrorIs(t, err, entity.ErrNoNextPage)

	back, err := svc.PreviousPage(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, back.Page)
}

type sessionRecorder struct {
	*rag.MockConnector
	sessions []string
}

func (r *sessionRecorder) AdvancedSearch(ctx context.Context, req *entity.AdvancedSearchRequest) (*entity.AdvancedSearchResponse, error) {
	r.sessions = append(r.sessions, req.SessionID)
	return r.MockConnector.AdvancedSearch(ctx, req)
}

func TestSearch_PagingFollowsRotatedSession(t *testing.T) {
	backend, err := rag.NewMockConnector(zap.NewNop())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := backend.IndexDocument(context.Background(), fmt.Sprintf("gopher-%02d", i), "Gophers", "gopher fact")
		require.NoError(t, err)
	}
	rec := &sessionRecorder{MockConnector: backend}
	svc := NewService(rec, validator.NewValidator(config.UploadConfig{MaxFileSize: 1}), zap.NewNop())
	ctx := context.Background()

	_, err = svc.Search(ctx, "old", entity.AdvancedSearchRequest{Query: "gopher", SearchType: entity.SearchTypeKeyword, Size: 2})
	require.NoError(t, err)

	next, err := svc.NextPage(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, 1, next.Page)

	_, err = svc.PreviousPage(ctx, "newer")
	require.NoError(t, err)

	assert.Equal(t, []string{"old", "new", "newer"}, rec.sessions)
}

func TestSearch_DefaultsAndValidation(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	resp, err := svc.Search(ctx, "s1", entity.AdvancedSearchRequest{Query: "threads"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, resp.Size)
	assert.Equal(t, string(entity.SearchTypeSemantic), resp.SearchType)

	_, err = svc.Search(ctx, "s1", entity.AdvancedSearchRequest{Query: " "})
	assert.ErrorIs(t, err, entity.ErrMissingField)

	_, err = svc.Search(ctx, "s1", entity.AdvancedSearchRequest{
		Query:   "x",
		Filters: []entity.SearchFilter{{Field: "title", Operator: entity.FilterBetween, Value: "a"}},
	})
	assert.ErrorIs(t, err, entity.ErrMissingField)
}

func TestSearch_History(t *testing.T) {
	svc := newTestService(t, 2)
	ctx := context.Background()

	_, err := svc.Search(ctx, "s1", entity.AdvancedSearchRequest{Query: "gopher", SearchType: entity.SearchTypeKeyword})
	require.NoError(t, err)

	entries, err := svc.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "gopher", entries[0].Query)
	assert.Equal(t, 2, entries[0].ResultCount)

	require.NoError(t, svc.ClearHistory(ctx, "s1"))
	entries, err = svc.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
