package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/futig/rag-playground/internal/config"
	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/integration/common"
	pkghttp "github.com/futig/rag-playground/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.BackendConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.BackendConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Ask requests a direct answer without retrieval
// POST {ask_endpoint}
func (c *Connector) Ask(ctx context.Context, req *entity.AskRequest) (*entity.ChatResponse, error) {
	ctxzap.Debug(ctx, "asking backend directly")

	var resp entity.ChatResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.AskEndpoint, req, &resp,
		pkghttp.WithSessionID(req.SessionID),
		pkghttp.WithRequiredBody(),
	)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	return &resp, nil
}

// Chat requests an answer grounded on the given search results
// POST {chat_endpoint}
func (c *Connector) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	ctxzap.Debug(ctx, "requesting rag answer", zap.Int("search_results", len(req.SearchResults)))

	var resp entity.ChatResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.ChatEndpoint, req, &resp,
		pkghttp.WithSessionID(req.SessionID),
		pkghttp.WithRequiredBody(),
	)
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	return &resp, nil
}

// Search runs a text retrieval
// POST {search_endpoint}
func (c *Connector) Search(ctx context.Context, sessionID string, req *entity.SearchRequest) ([]entity.SearchResult, error) {
	results, err := c.search(ctx, sessionID, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	ctxzap.Debug(ctx, "search completed", zap.Int("result_count", len(results)))
	return results, nil
}

// SearchByEmbedding runs a retrieval for a raw query vector on the same endpoint
func (c *Connector) SearchByEmbedding(ctx context.Context, sessionID string, req *entity.EmbeddingSearchRequest) ([]entity.SearchResult, error) {
	results, err := c.search(ctx, sessionID, req)
	if err != nil {
		return nil, fmt.Errorf("search by embedding: %w", err)
	}

	ctxzap.Debug(ctx, "embedding search completed",
		zap.Int("dimensions", len(req.Embedding)),
		zap.Int("result_count", len(results)),
	)
	return results, nil
}

func (c *Connector) search(ctx context.Context, sessionID string, req any) ([]entity.SearchResult, error) {
	var raw json.RawMessage
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.SearchEndpoint, req, &raw,
		pkghttp.WithSessionID(sessionID),
	)
	if err != nil {
		return nil, err
	}

	return normalizeResults(raw), nil
}

// normalizeResults accepts a bare array or an object wrapping it in "results".
// Anything else yields no results.
func normalizeResults(raw json.RawMessage) []entity.SearchResult {
	var items []entity.RawSearchResult
	if err := json.Unmarshal(raw, &items); err != nil {
		var wrapped struct {
			Results []entity.RawSearchResult `json:"results"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return []entity.SearchResult{}
		}
		items = wrapped.Results
	}

	results := make([]entity.SearchResult, 0, len(items))
	for i, item := range items {
		results = append(results, item.Normalize(i))
	}
	return results
}

// FetchHistory returns the prefixed transcript kept by the backend
// GET {history_endpoint}?sessionId={id}
func (c *Connector) FetchHistory(ctx context.Context, sessionID string) (string, error) {
	text, err := c.connector.DoTextRequest(ctx, http.MethodGet, c.config.HistoryEndpoint,
		pkghttp.WithQuery("sessionId", sessionID),
		pkghttp.WithSessionID(sessionID),
	)
	if err != nil {
		return "", fmt.Errorf("fetch history: %w", err)
	}

	return text, nil
}

// ClearHistory drops the server-side transcript of the session
// DELETE {history_endpoint}?sessionId={id}
func (c *Connector) ClearHistory(ctx context.Context, sessionID string) error {
	err := c.connector.DoRequest(ctx, http.MethodDelete, c.config.HistoryEndpoint, nil, nil,
		pkghttp.WithQuery("sessionId", sessionID),
		pkghttp.WithSessionID(sessionID),
	)
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	return nil
}

// AdvancedSearch runs a filtered, paged search
// POST {advanced_search_endpoint}
func (c *Connector) AdvancedSearch(ctx context.Context, req *entity.AdvancedSearchRequest) (*entity.AdvancedSearchResponse, error) {
	var resp entity.AdvancedSearchResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.AdvancedSearchEndpoint, req, &resp,
		pkghttp.WithSessionID(req.SessionID),
		pkghttp.WithRequiredBody(),
	)
	if err != nil {
		return nil, fmt.Errorf("advanced search: %w", err)
	}

	if resp.Results == nil {
		resp.Results = []entity.SearchResult{}
	}

	return &resp, nil
}

// SearchHistory lists the queries recorded for the session
// GET {search_history_endpoint}?sessionId={id}
func (c *Connector) SearchHistory(ctx context.Context, sessionID string) ([]entity.SearchHistoryEntry, error) {
	entries := []entity.SearchHistoryEntry{}
	err := c.connector.DoRequest(ctx, http.MethodGet, c.config.SearchHistoryEndpoint, nil, &entries,
		pkghttp.WithQuery("sessionId", sessionID),
		pkghttp.WithSessionID(sessionID),
	)
	if err != nil {
		return nil, fmt.Errorf("search history: %w", err)
	}

	return entries, nil
}

// ClearSearchHistory drops the recorded queries of the session
// DELETE {search_history_endpoint}?sessionId={id}
func (c *Connector) ClearSearchHistory(ctx context.Context, sessionID string) error {
	err := c.connector.DoRequest(ctx, http.MethodDelete, c.config.SearchHistoryEndpoint, nil, nil,
		pkghttp.WithQuery("sessionId", sessionID),
		pkghttp.WithSessionID(sessionID),
	)
	if err != nil {
		return fmt.Errorf("clear search history: %w", err)
	}

	return nil
}
