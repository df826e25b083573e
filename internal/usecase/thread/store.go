package thread

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/futig/rag-playground/internal/config"
	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/metrics"
	"github.com/futig/rag-playground/internal/pkg/logger"
	"github.com/futig/rag-playground/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	opCreate  = "create"
	opMessage = "add_message"
	opTitle   = "update_title"
	opArchive = "archive"
	opDelete  = "delete"
)

// Store fronts the thread service and mirrors each session's thread list.
// The mirror is only ever replaced by a fresh list, never patched in place.
type Store struct {
	connector ThreadConnector
	validator *validator.Validator
	metrics   MetricsRecorder
	logger    *zap.Logger

	mirror *cache.Cache

	mu      sync.Mutex
	deleted map[string]struct{}
}

func NewStore(
	connector ThreadConnector,
	validator *validator.Validator,
	metricsRecorder MetricsRecorder,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) *Store {
	return &Store{
		connector: connector,
		validator: validator,
		metrics:   metricsRecorder,
		logger:    logger,
		mirror:    cache.New(cacheCfg.TTL, cacheCfg.CleanupInterval),
		deleted:   make(map[string]struct{}),
	}
}

func mirrorKey(sessionID string) string {
	return "threads:" + sessionID
}

func (s *Store) Create(ctx context.Context, sessionID string, req *entity.CreateThreadRequest) (*entity.ConversationThread, error) {
	ctx = logger.WithSession(logger.WithAction(ctx, "create_thread"), sessionID)

	if err := s.validator.ValidateCreateThread(req); err != nil {
		return nil, err
	}

	thread, err := s.connector.Create(ctx, sessionID, req)
	s.metrics.ObserveThreadOp(opCreate, metrics.Outcome(err))
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}

	ctxzap.Info(ctx, "thread created", zap.String("thread_id", thread.ID))
	s.refresh(ctx, sessionID)

	return thread, nil
}

func (s *Store) Get(ctx context.Context, sessionID, threadID string) (*entity.ConversationThread, error) {
	if err := s.checkNotDeleted(threadID); err != nil {
		return nil, err
	}

	thread, err := s.connector.Get(ctx, sessionID, threadID)
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}
	return thread, nil
}

// ListForSession fetches the session's threads and replaces the mirror with them.
func (s *Store) ListForSession(ctx context.Context, sessionID string) ([]entity.ConversationThread, error) {
	threads, err := s.connector.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	s.mirror.Set(mirrorKey(sessionID), threads, cache.DefaultExpiration)
	return threads, nil
}

// Cached returns the last fetched list without a network call.
func (s *Store) Cached(sessionID string) ([]entity.ConversationThread, bool) {
	if x, found := s.mirror.Get(mirrorKey(sessionID)); found {
		return x.([]entity.ConversationThread), true
	}
	return nil, false
}

func (s *Store) AppendMessage(ctx context.Context, sessionID, threadID string, req *entity.AddMessageRequest) (*entity.ConversationThread, error) {
	ctx = logger.AddFields(logger.WithAction(ctx, "append_thread_message"), zap.String("thread_id", threadID))

	if err := s.checkNotDeleted(threadID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateAddMessage(req); err != nil {
		return nil, err
	}

	normalized := *req
	normalized.Role = entity.ThreadRole(entity.RoleFromString(req.Role))

	thread, err := s.connector.AddMessage(ctx, sessionID, threadID, &normalized)
	s.metrics.ObserveThreadOp(opMessage, metrics.Outcome(err))
	if err != nil {
		return nil, fmt.Errorf("add thread message: %w", err)
	}

	s.refresh(ctx, sessionID)
	return thread, nil
}

func (s *Store) UpdateTitle(ctx context.Context, sessionID, threadID, title string) (*entity.ConversationThread, error) {
	ctx = logger.AddFields(logger.WithAction(ctx, "update_thread_title"), zap.String("thread_id", threadID))

	if err := s.checkNotDeleted(threadID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title", entity.ErrMissingField)
	}

	thread, err := s.connector.UpdateTitle(ctx, sessionID, threadID, title)
	s.metrics.ObserveThreadOp(opTitle, metrics.Outcome(err))
	if err != nil {
		return nil, fmt.Errorf("update thread title: %w", err)
	}

	s.refresh(ctx, sessionID)
	return thread, nil
}

// Archive moves an active thread to ARCHIVED. The transition is checked against the
// last known status before any request is sent.
func (s *Store) Archive(ctx context.Context, sessionID, threadID string) error {
	ctx = logger.AddFields(logger.WithAction(ctx, "archive_thread"), zap.String("thread_id", threadID))

	if err := s.checkTransition(sessionID, threadID, entity.ThreadStatusArchived); err != nil {
		s.metrics.ObserveThreadOp(opArchive, metrics.OutcomeRejected)
		return err
	}

	err := s.connector.Archive(ctx, sessionID, threadID)
	s.metrics.ObserveThreadOp(opArchive, metrics.Outcome(err))
	if err != nil {
		return fmt.Errorf("archive thread: %w", err)
	}

	ctxzap.Info(ctx, "thread archived")
	s.refresh(ctx, sessionID)
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID, threadID string) error {
	ctx = logger.AddFields(logger.WithAction(ctx, "delete_thread"), zap.String("thread_id", threadID))

	if err := s.checkTransition(sessionID, threadID, entity.ThreadStatusDeleted); err != nil {
		s.metrics.ObserveThreadOp(opDelete, metrics.OutcomeRejected)
		return err
	}

	err := s.connector.Delete(ctx, sessionID, threadID)
	s.metrics.ObserveThreadOp(opDelete, metrics.Outcome(err))
	if err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}

	s.mu.Lock()
	s.deleted[threadID] = struct{}{}
	s.mu.Unlock()

	ctxzap.Info(ctx, "thread deleted")
	s.refresh(ctx, sessionID)
	return nil
}

// Activate loads a thread and returns its entries as conversation messages.
func (s *Store) Activate(ctx context.Context, sessionID, threadID string) ([]entity.Message, error) {
	thread, err := s.Get(ctx, sessionID, threadID)
	if err != nil {
		return nil, err
	}
	if thread.Status == entity.ThreadStatusDeleted {
		return nil, fmt.Errorf("%w: %s", entity.ErrThreadDeleted, threadID)
	}

	return thread.ToMessages(), nil
}

func (s *Store) checkNotDeleted(threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deleted[threadID]; ok {
		return fmt.Errorf("%w: %s", entity.ErrThreadDeleted, threadID)
	}
	return nil
}

func (s *Store) checkTransition(sessionID, threadID string, next entity.ThreadStatus) error {
	if err := s.checkNotDeleted(threadID); err != nil {
		return err
	}

	current, known := s.knownStatus(sessionID, threadID)
	if !known {
		return nil
	}
	if current == entity.ThreadStatusDeleted {
		return fmt.Errorf("%w: %s", entity.ErrThreadDeleted, threadID)
	}
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrInvalidThreadTransition, current, next)
	}
	return nil
}

func (s *Store) knownStatus(sessionID, threadID string) (entity.ThreadStatus, bool) {
	threads, ok := s.Cached(sessionID)
	if !ok {
		return "", false
	}
	for _, t := range threads {
		if t.ID == threadID {
			return t.Status, true
		}
	}
	return "", false
}

// refresh re-fetches the list after a mutation. On failure the mirror is dropped so
// stale entries are never served.
func (s *Store) refresh(ctx context.Context, sessionID string) {
	if _, err := s.ListForSession(ctx, sessionID); err != nil {
		s.mirror.Delete(mirrorKey(sessionID))
		ctxzap.Warn(ctx, "thread list refresh failed, mirror invalidated", zap.Error(err))
	}
}
