package thread

import (
	"context"

	"github.com/futig/rag-playground/internal/entity"
)

type ThreadStore interface {
	Create(ctx context.Context, sessionID string, req *entity.CreateThreadRequest) (*entity.ConversationThread, error)
	Get(ctx context.Context, sessionID, threadID string) (*entity.ConversationThread, error)
	ListForSession(ctx context.Context, sessionID string) ([]entity.ConversationThread, error)
	AppendMessage(ctx context.Context, sessionID, threadID string, req *entity.AddMessageRequest) (*entity.ConversationThread, error)
	UpdateTitle(ctx context.Context, sessionID, threadID, title string) (*entity.ConversationThread, error)
	Archive(ctx context.Context, sessionID, threadID string) error
	Delete(ctx context.Context, sessionID, threadID string) error
	Activate(ctx context.Context, sessionID, threadID string) ([]entity.Message, error)
}

type SessionProvider interface {
	Require() (string, error)
}

// Conversation receives the messages of an activated thread.
type Conversation interface {
	ReplaceMessages(messages []entity.Message)
}
