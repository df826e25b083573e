package search

import (
	"context"

	"github.com/futig/rag-playground/internal/entity"
)

type SearchConnector interface {
	AdvancedSearch(ctx context.Context, req *entity.AdvancedSearchRequest) (*entity.AdvancedSearchResponse, error)
	SearchHistory(ctx context.Context, sessionID string) ([]entity.SearchHistoryEntry, error)
	ClearSearchHistory(ctx context.Context, sessionID string) error
}
