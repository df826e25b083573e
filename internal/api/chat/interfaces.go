package chat

import (
	"context"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/usecase/quality"
)

type Orchestrator interface {
	SendMessage(ctx context.Context, content string, mode entity.Mode) (*entity.Message, error)
	Cancel() bool
	Loading() bool
	Messages() []entity.Message
	SearchResults() []entity.SearchResult
	ClearMessages(ctx context.Context)
	LoadHistory(ctx context.Context) ([]entity.Message, error)
	Config() entity.RAGConfig
	UpdateConfig(patch entity.RAGConfigPatch) (entity.RAGConfig, error)
	EvaluateSearchQuality() quality.Report
	OptimizeParameters(feedback quality.Feedback) (entity.RAGConfigPatch, entity.RAGConfig, error)
	SearchByEmbedding(ctx context.Context, raw string, topK int) ([]entity.SearchResult, error)
	ExportTranscript(format entity.ExportFormat) (*entity.Export, error)
	SessionID() string
	ResetSession(ctx context.Context) (string, error)
}
