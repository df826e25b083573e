package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/pkg/logger"
	"github.com/futig/rag-playground/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const DefaultPageSize = 10

// Service runs filtered, paged searches and remembers the last page for navigation.
type Service struct {
	connector SearchConnector
	validator *validator.Validator
	logger    *zap.Logger

	mu       sync.Mutex
	lastReq  *entity.AdvancedSearchRequest
	lastResp *entity.AdvancedSearchResponse
}

func NewService(connector SearchConnector, validator *validator.Validator, logger *zap.Logger) *Service {
	return &Service{
		connector: connector,
		validator: validator,
		logger:    logger,
	}
}

func (s *Service) Search(ctx context.Context, sessionID string, req entity.AdvancedSearchRequest) (*entity.AdvancedSearchResponse, error) {
	ctx = logger.WithSession(logger.WithAction(ctx, "advanced_search"), sessionID)

	if req.SearchType == "" {
		req.SearchType = entity.SearchTypeSemantic
	}
	if req.Size == 0 {
		req.Size = DefaultPageSize
	}
	req.SessionID = sessionID

	if err := s.validator.ValidateAdvancedSearch(&req); err != nil {
		return nil, err
	}

	resp, err := s.connector.AdvancedSearch(ctx, &req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastReq = &req
	s.lastResp = resp
	s.mu.Unlock()

	ctxzap.Info(ctx, "advanced search finished",
		zap.String("search_type", string(req.SearchType)),
		zap.Int("page", resp.Page),
		zap.Int("total", resp.TotalElements),
	)

	return resp, nil
}

// NextPage repeats the last search one page further under the caller's current session.
func (s *Service) NextPage(ctx context.Context, sessionID string) (*entity.AdvancedSearchResponse, error) {
	req, err := s.adjacent(true)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, sessionID, req)
}

func (s *Service) PreviousPage(ctx context.Context, sessionID string) (*entity.AdvancedSearchResponse, error) {
	req, err := s.adjacent(false)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, sessionID, req)
}

func (s *Service) adjacent(next bool) (entity.AdvancedSearchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if next {
		if s.lastResp == nil || !s.lastResp.HasNext {
			return entity.AdvancedSearchRequest{}, entity.ErrNoNextPage
		}
		req := *s.lastReq
		req.Page = s.lastResp.Page + 1
		return req, nil
	}

	if s.lastResp == nil || !s.lastResp.HasPrevious {
		return entity.AdvancedSearchRequest{}, entity.ErrNoPreviousPage
	}
	req := *s.lastReq
	req.Page = s.lastResp.Page - 1
	return req, nil
}

// Last returns the most recent page, if any.
func (s *Service) Last() (*entity.AdvancedSearchResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastResp, s.lastResp != nil
}

func (s *Service) History(ctx context.Context, sessionID string) ([]entity.SearchHistoryEntry, error) {
	entries, err := s.connector.SearchHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Service) ClearHistory(ctx context.Context, sessionID string) error {
	if err := s.connector.ClearSearchHistory(ctx, sessionID); err != nil {
		return fmt.Errorf("clear search history: %w", err)
	}

	ctxzap.Info(logger.WithSession(ctx, sessionID), "search history cleared")
	return nil
}
