package chat

import (
	"context"
	"time"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/usecase/quality"
)

type RAGConnector interface {
	Ask(ctx context.Context, req *entity.AskRequest) (*entity.ChatResponse, error)
	Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
	Search(ctx context.Context, sessionID string, req *entity.SearchRequest) ([]entity.SearchResult, error)
	SearchByEmbedding(ctx context.Context, sessionID string, req *entity.EmbeddingSearchRequest) ([]entity.SearchResult, error)
	FetchHistory(ctx context.Context, sessionID string) (string, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

type PromptRenderer interface {
	RenderPrompt(pc entity.PromptContext) string
	ActiveTemplateID() string
}

type QualityEvaluator interface {
	Evaluate(results []entity.SearchResult) quality.Report
	Optimize(results []entity.SearchResult, feedback quality.Feedback, current entity.RAGConfig) entity.RAGConfigPatch
}

type SessionStore interface {
	ID() string
	Set(id string) error
	Reset() (string, error)
}

type MetricsRecorder interface {
	ObserveRequest(mode, outcome string, elapsed time.Duration)
	ObserveSearch(resultCount int, rating string)
	HistoryClearFailed()
}
