package cli

import (
	"context"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/usecase/document"
	"github.com/futig/rag-playground/internal/usecase/quality"
)

type Conversation interface {
	SendMessage(ctx context.Context, content string, mode entity.Mode) (*entity.Message, error)
	Cancel() bool
	Loading() bool
	Messages() []entity.Message
	SearchResults() []entity.SearchResult
	ClearMessages(ctx context.Context)
	LoadHistory(ctx context.Context) ([]entity.Message, error)
	ReplaceMessages(messages []entity.Message)
	Config() entity.RAGConfig
	UpdateConfig(patch entity.RAGConfigPatch) (entity.RAGConfig, error)
	EvaluateSearchQuality() quality.Report
	OptimizeParameters(feedback quality.Feedback) (entity.RAGConfigPatch, entity.RAGConfig, error)
	SearchByEmbedding(ctx context.Context, raw string, topK int) ([]entity.SearchResult, error)
	ExportTranscript(format entity.ExportFormat) (*entity.Export, error)
	SessionID() string
	ResetSession(ctx context.Context) (string, error)
}

type PromptCatalog interface {
	Templates() []entity.PromptTemplate
	SelectTemplate(id string) error
	Selected() string
	SetCustomPrompt(text string) error
	CustomPrompt() string
	ValidatePrompt(text string) entity.ValidationResult
}

type ThreadStore interface {
	Create(ctx context.Context, sessionID string, req *entity.CreateThreadRequest) (*entity.ConversationThread, error)
	ListForSession(ctx context.Context, sessionID string) ([]entity.ConversationThread, error)
	Archive(ctx context.Context, sessionID, threadID string) error
	Delete(ctx context.Context, sessionID, threadID string) error
	Activate(ctx context.Context, sessionID, threadID string) ([]entity.Message, error)
}

type DocumentCoordinator interface {
	Upload(
		ctx context.Context,
		sessionID string,
		file entity.FileUpload,
		meta entity.UploadMetadata,
		progress document.ProgressFunc,
	) (*entity.DocumentInfo, error)
	List(ctx context.Context, sessionID string) ([]entity.DocumentInfo, error)
}

type SearchService interface {
	Search(ctx context.Context, sessionID string, req entity.AdvancedSearchRequest) (*entity.AdvancedSearchResponse, error)
	NextPage(ctx context.Context, sessionID string) (*entity.AdvancedSearchResponse, error)
	PreviousPage(ctx context.Context, sessionID string) (*entity.AdvancedSearchResponse, error)
}

type SessionProvider interface {
	Require() (string, error)
}
