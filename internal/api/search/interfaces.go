package search

import (
	"context"

	"github.com/futig/rag-playground/internal/entity"
)

type SearchService interface {
	Search(ctx context.Context, sessionID string, req entity.AdvancedSearchRequest) (*entity.AdvancedSearchResponse, error)
	NextPage(ctx context.Context, sessionID string) (*entity.AdvancedSearchResponse, error)
	PreviousPage(ctx context.Context, sessionID string) (*entity.AdvancedSearchResponse, error)
	History(ctx context.Context, sessionID string) ([]entity.SearchHistoryEntry, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

type SessionProvider interface {
	Require() (string, error)
}
