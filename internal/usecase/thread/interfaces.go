package thread

import (
	"context"

	"github.com/futig/rag-playground/internal/entity"
)

type ThreadConnector interface {
	Create(ctx context.Context, sessionID string, req *entity.CreateThreadRequest) (*entity.ConversationThread, error)
	Get(ctx context.Context, sessionID, threadID string) (*entity.ConversationThread, error)
	List(ctx context.Context, sessionID string) ([]entity.ConversationThread, error)
	AddMessage(ctx context.Context, sessionID, threadID string, req *entity.AddMessageRequest) (*entity.ConversationThread, error)
	UpdateTitle(ctx context.Context, sessionID, threadID, title string) (*entity.ConversationThread, error)
	Archive(ctx context.Context, sessionID, threadID string) error
	Delete(ctx context.Context, sessionID, threadID string) error
}

type MetricsRecorder interface {
	ObserveThreadOp(operation, outcome string)
}
