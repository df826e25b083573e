package thread

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector keeps threads in memory, keyed by session.
type MockConnector struct {
	logger *zap.Logger

	mu      sync.Mutex
	threads map[string]map[string]*entity.ConversationThread
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger:  logger,
		threads: make(map[string]map[string]*entity.ConversationThread),
	}
}

func (m *MockConnector) Create(ctx context.Context, sessionID string, req *entity.CreateThreadRequest) (*entity.ConversationThread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	thread := &entity.ConversationThread{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		SessionID:   sessionID,
		Messages:    []entity.ThreadMessage{},
		CreatedAt:   now,
		UpdatedAt:   now,
		Status:      entity.ThreadStatusActive,
	}

	if m.threads[sessionID] == nil {
		m.threads[sessionID] = make(map[string]*entity.ConversationThread)
	}
	m.threads[sessionID][thread.ID] = thread

	ctxzap.Info(ctx, "[MOCK] thread created", zap.String("thread_id", thread.ID))
	return copyThread(thread), nil
}

func (m *MockConnector) Get(_ context.Context, sessionID, threadID string) (*entity.ConversationThread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	thread, err := m.lookup(sessionID, threadID)
	if err != nil {
		return nil, err
	}
	return copyThread(thread), nil
}

func (m *MockConnector) List(_ context.Context, sessionID string) ([]entity.ConversationThread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	threads := make([]entity.ConversationThread, 0, len(m.threads[sessionID]))
	for _, t := range m.threads[sessionID] {
		threads = append(threads, *copyThread(t))
	}
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].UpdatedAt.After(threads[j].UpdatedAt)
	})
	return threads, nil
}

func (m *MockConnector) AddMessage(_ context.Context, sessionID, threadID string, req *entity.AddMessageRequest) (*entity.ConversationThread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	thread, err := m.lookup(sessionID, threadID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	thread.Messages = append(thread.Messages, entity.ThreadMessage{
		ID:        uuid.NewString(),
		Content:   req.Content,
		Role:      req.Role,
		Timestamp: now,
	})
	thread.UpdatedAt = now

	return copyThread(thread), nil
}

func (m *MockConnector) UpdateTitle(_ context.Context, sessionID, threadID, title string) (*entity.ConversationThread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	thread, err := m.lookup(sessionID, threadID)
	if err != nil {
		return nil, err
	}

	thread.Title = title
	thread.UpdatedAt = time.Now()
	return copyThread(thread), nil
}

func (m *MockConnector) Archive(_ context.Context, sessionID, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	thread, err := m.lookup(sessionID, threadID)
	if err != nil {
		return err
	}
	if !thread.Status.CanTransitionTo(entity.ThreadStatusArchived) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrInvalidThreadTransition, thread.Status, entity.ThreadStatusArchived)
	}

	thread.Status = entity.ThreadStatusArchived
	thread.UpdatedAt = time.Now()
	return nil
}

func (m *MockConnector) Delete(_ context.Context, sessionID, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(sessionID, threadID); err != nil {
		return err
	}
	delete(m.threads[sessionID], threadID)
	return nil
}

func (m *MockConnector) lookup(sessionID, threadID string) (*entity.ConversationThread, error) {
	thread, ok := m.threads[sessionID][threadID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrThreadNotFound, threadID)
	}
	return thread, nil
}

func copyThread(t *entity.ConversationThread) *entity.ConversationThread {
	c := *t
	c.Messages = append([]entity.ThreadMessage(nil), t.Messages...)
	return &c
}
