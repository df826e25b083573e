package rag

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

const (
	mockCollection = "playground"
	mockModel      = "mock-llm"
	chunkSize      = 500

	historyUserPrefix = "사용자: "
	historyAIPrefix   = "AI: "
)

var seedDocuments = []struct {
	id, title, content string
}{
	{
		id:      "seed-rag",
		title:   "What is RAG",
		content: "Retrieval-Augmented Generation answers a question by first retrieving relevant passages from a vector index and then asking a language model to answer using those passages as context.",
	},
	{
		id:      "seed-params",
		title:   "Retrieval parameters",
		content: "topK limits how many passages are retrieved per query. threshold is the minimum similarity score for a passage to be considered relevant. Lowering the threshold and raising topK widens the search.",
	},
	{
		id:      "seed-threads",
		title:   "Conversation threads",
		content: "A conversation thread is a named multi-turn record stored by the backend. Threads move from active to archived to deleted and are never restored.",
	},
}

// MockConnector serves retrieval and generation from an in-memory chromem collection.
type MockConnector struct {
	logger     *zap.Logger
	collection *chromem.Collection

	mu            sync.Mutex
	history       map[string][]string
	searchHistory map[string][]entity.SearchHistoryEntry
}

func NewMockConnector(logger *zap.Logger) (*MockConnector, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(mockCollection, nil, hashingEmbedder())
	if err != nil {
		return nil, fmt.Errorf("create mock collection: %w", err)
	}

	m := &MockConnector{
		logger:        logger,
		collection:    collection,
		history:       make(map[string][]string),
		searchHistory: make(map[string][]entity.SearchHistoryEntry),
	}

	for _, doc := range seedDocuments {
		if _, err := m.IndexDocument(context.Background(), doc.id, doc.title, doc.content); err != nil {
			return nil, fmt.Errorf("seed mock collection: %w", err)
		}
	}

	return m, nil
}

// IndexDocument chunks content into the collection and returns the chunk count.
func (m *MockConnector) IndexDocument(ctx context.Context, documentID, title, content string) (int, error) {
	chunks := chunkText(content, chunkSize)
	for i, chunk := range chunks {
		err := m.collection.AddDocument(ctx, chromem.Document{
			ID:      fmt.Sprintf("%s_chunk_%d", documentID, i),
			Content: chunk,
			Metadata: map[string]string{
				"document_id":  documentID,
				"title":        title,
				"chunk_index":  strconv.Itoa(i),
				"total_chunks": strconv.Itoa(len(chunks)),
				"indexed_at":   time.Now().UTC().Format(time.RFC3339),
			},
		})
		if err != nil {
			return 0, fmt.Errorf("add chunk %d: %w", i, err)
		}
	}

	ctxzap.Debug(ctx, "[MOCK] document indexed",
		zap.String("document_id", documentID),
		zap.Int("chunks", len(chunks)),
	)
	return len(chunks), nil
}

func (m *MockConnector) RemoveDocument(ctx context.Context, documentID string) error {
	return m.collection.Delete(ctx, map[string]string{"document_id": documentID}, nil)
}

func (m *MockConnector) Ask(ctx context.Context, req *entity.AskRequest) (*entity.ChatResponse, error) {
	ctxzap.Info(ctx, "[MOCK] ask", zap.String("session_id", req.SessionID))

	content := fmt.Sprintf("Mock answer to %q without retrieval.", req.Query)
	m.recordTurn(req.SessionID, req.Query, content)

	return &entity.ChatResponse{
		Content:   content,
		SessionID: req.SessionID,
		Model:     mockModel,
		Tokens:    len(tokenize(content)),
	}, nil
}

func (m *MockConnector) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	ctxzap.Info(ctx, "[MOCK] chat",
		zap.String("session_id", req.SessionID),
		zap.Int("search_results", len(req.SearchResults)),
	)

	var b strings.Builder
	fmt.Fprintf(&b, "Mock answer to %q grounded on %d passage(s).", req.Query, len(req.SearchResults))
	if len(req.SearchResults) > 0 {
		top := req.SearchResults[0]
		fmt.Fprintf(&b, "\nMost relevant (%s): %s", top.Source, top.Content)
	}
	content := b.String()
	m.recordTurn(req.SessionID, req.Query, content)

	return &entity.ChatResponse{
		Content:   content,
		SessionID: req.SessionID,
		Model:     mockModel,
		Tokens:    len(tokenize(content)),
	}, nil
}

// Search ignores the threshold: hashing similarities are not calibrated like model embeddings.
func (m *MockConnector) Search(ctx context.Context, sessionID string, req *entity.SearchRequest) ([]entity.SearchResult, error) {
	n := min(req.TopK, m.collection.Count())
	if n <= 0 {
		return []entity.SearchResult{}, nil
	}

	res, err := m.collection.Query(ctx, req.Query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("mock search: %w", err)
	}

	return toSearchResults(res), nil
}

func (m *MockConnector) SearchByEmbedding(ctx context.Context, sessionID string, req *entity.EmbeddingSearchRequest) ([]entity.SearchResult, error) {
	if len(req.Embedding) != EmbeddingDimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", entity.ErrInvalidEmbedding, EmbeddingDimensions, len(req.Embedding))
	}

	n := min(req.TopK, m.collection.Count())
	if n <= 0 {
		return []entity.SearchResult{}, nil
	}

	embedding := normalize(append([]float32(nil), req.Embedding...))
	res, err := m.collection.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("mock embedding search: %w", err)
	}

	return toSearchResults(res), nil
}

func (m *MockConnector) FetchHistory(_ context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return strings.Join(m.history[sessionID], "\n"), nil
}

func (m *MockConnector) ClearHistory(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.history, sessionID)
	ctxzap.Info(ctx, "[MOCK] history cleared", zap.String("session_id", sessionID))
	return nil
}

func (m *MockConnector) AdvancedSearch(ctx context.Context, req *entity.AdvancedSearchRequest) (*entity.AdvancedSearchResponse, error) {
	size := req.Size
	if size <= 0 {
		size = 10
	}

	var all []entity.SearchResult
	if count := m.collection.Count(); count > 0 {
		res, err := m.collection.Query(ctx, req.Query, count, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("mock advanced search: %w", err)
		}
		all = toSearchResults(res)
	}

	matched := make([]entity.SearchResult, 0, len(all))
	for _, r := range all {
		if req.SearchType == entity.SearchTypeKeyword && !containsFold(r.Content, req.Query) {
			continue
		}
		if !matchesFilters(r, req.Filters) {
			continue
		}
		matched = append(matched, r)
	}
	sortResults(matched, req.Sort)

	start := min(req.Page*size, len(matched))
	end := min(start+size, len(matched))
	totalPages := (len(matched) + size - 1) / size

	m.mu.Lock()
	m.searchHistory[req.SessionID] = append(m.searchHistory[req.SessionID], entity.SearchHistoryEntry{
		Query:       req.Query,
		ResultCount: len(matched),
		Timestamp:   time.Now(),
	})
	m.mu.Unlock()

	return &entity.AdvancedSearchResponse{
		Results:       matched[start:end],
		Page:          req.Page,
		Size:          size,
		TotalElements: len(matched),
		SearchType:    string(req.SearchType),
		TotalPages:    totalPages,
		HasNext:       req.Page+1 < totalPages,
		HasPrevious:   req.Page > 0,
	}, nil
}

func (m *MockConnector) SearchHistory(_ context.Context, sessionID string) ([]entity.SearchHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]entity.SearchHistoryEntry{}, m.searchHistory[sessionID]...), nil
}

func (m *MockConnector) ClearSearchHistory(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.searchHistory, sessionID)
	return nil
}

func (m *MockConnector) recordTurn(sessionID, query, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history[sessionID] = append(m.history[sessionID],
		historyUserPrefix+query,
		historyAIPrefix+strings.ReplaceAll(answer, "\n", " "),
	)
}

func toSearchResults(res []chromem.Result) []entity.SearchResult {
	results := make([]entity.SearchResult, 0, len(res))
	for _, r := range res {
		metadata := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			metadata[k] = v
		}

		results = append(results, entity.SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Score:    float64(r.Similarity),
			Metadata: metadata,
			Source:   r.Metadata["title"],
		})
	}
	return results
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// matchesFilters applies string filters to metadata. Range operators compare
// numerically and pass when either side is not a number.
func matchesFilters(r entity.SearchResult, filters []entity.SearchFilter) bool {
	for _, f := range filters {
		value := fmt.Sprint(r.Metadata[f.Field])
		if f.Field == "score" {
			value = strconv.FormatFloat(r.Score, 'f', -1, 64)
		}
		want := fmt.Sprint(f.Value)

		switch f.Operator {
		case entity.FilterEquals:
			if value != want {
				return false
			}
		case entity.FilterNotEquals:
			if value == want {
				return false
			}
		case entity.FilterContains:
			if !containsFold(value, want) {
				return false
			}
		case entity.FilterIn:
			if !inList(value, f.Value) {
				return false
			}
		case entity.FilterGreaterThan, entity.FilterLessThan, entity.FilterBetween:
			if !inRange(value, f) {
				return false
			}
		}
	}
	return true
}

func inList(value string, list any) bool {
	items, ok := list.([]any)
	if !ok {
		return value == fmt.Sprint(list)
	}
	for _, item := range items {
		if value == fmt.Sprint(item) {
			return true
		}
	}
	return false
}

func inRange(value string, f entity.SearchFilter) bool {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return true
	}
	lo, err := strconv.ParseFloat(fmt.Sprint(f.Value), 64)
	if err != nil {
		return true
	}

	switch f.Operator {
	case entity.FilterGreaterThan:
		return v > lo
	case entity.FilterLessThan:
		return v < lo
	default:
		hi, err := strconv.ParseFloat(fmt.Sprint(f.Value2), 64)
		if err != nil {
			return true
		}
		return v >= lo && v <= hi
	}
}

func sortResults(results []entity.SearchResult, s *entity.SearchSort) {
	if s == nil {
		return
	}

	less := func(a, b entity.SearchResult) bool {
		if s.Field == "score" {
			return a.Score < b.Score
		}
		return fmt.Sprint(a.Metadata[s.Field]) < fmt.Sprint(b.Metadata[s.Field])
	}

	sort.SliceStable(results, func(i, j int) bool {
		if s.Direction == entity.SortDesc {
			return less(results[j], results[i])
		}
		return less(results[i], results[j])
	})
}
