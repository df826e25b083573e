package document

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Indexer is the retrieval side of the offline backend.
type Indexer interface {
	IndexDocument(ctx context.Context, documentID, title, content string) (int, error)
	RemoveDocument(ctx context.Context, documentID string) error
}

// MockConnector stores document records in memory and indexes text into the offline retrieval backend.
type MockConnector struct {
	logger  *zap.Logger
	indexer Indexer

	mu   sync.Mutex
	docs map[string]map[string]entity.DocumentInfo
}

func NewMockConnector(indexer Indexer, logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger:  logger,
		indexer: indexer,
		docs:    make(map[string]map[string]entity.DocumentInfo),
	}
}

func (m *MockConnector) Upload(
	ctx context.Context,
	sessionID string,
	file entity.FileUpload,
	meta *entity.UploadMetadata,
	onProgress func(sent, total int64),
) (*entity.DocumentUploadResponse, error) {
	data, err := io.ReadAll(file.Content)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if onProgress != nil {
		onProgress(int64(len(data)), int64(len(data)))
	}

	id := uuid.NewString()
	text := meta.Title + "\n" + meta.Description
	if strings.HasPrefix(file.ContentType, "text/") {
		text = string(data)
	}

	chunks, err := m.indexer.IndexDocument(ctx, id, meta.Title, text)
	if err != nil {
		return &entity.DocumentUploadResponse{
			DocumentID: id,
			Title:      meta.Title,
			Status:     entity.DocumentStatusFailed,
			UploadedAt: time.Now(),
			Errors:     []string{err.Error()},
		}, nil
	}

	info := entity.DocumentInfo{
		ID:          id,
		Title:       meta.Title,
		Description: meta.Description,
		Category:    meta.Category,
		TotalChunks: chunks,
		UploadedAt:  time.Now(),
	}

	m.mu.Lock()
	if m.docs[sessionID] == nil {
		m.docs[sessionID] = make(map[string]entity.DocumentInfo)
	}
	m.docs[sessionID][id] = info
	m.mu.Unlock()

	ctxzap.Info(ctx, "[MOCK] document uploaded", zap.String("document_id", id), zap.Int("chunks", chunks))

	return &entity.DocumentUploadResponse{
		DocumentID:      id,
		Title:           info.Title,
		Status:          entity.DocumentStatusCompleted,
		TotalChunks:     chunks,
		ProcessedChunks: chunks,
		UploadedAt:      info.UploadedAt,
		Metadata:        meta.Metadata,
	}, nil
}

func (m *MockConnector) List(_ context.Context, sessionID string) ([]entity.DocumentInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := make([]entity.DocumentInfo, 0, len(m.docs[sessionID]))
	for _, d := range m.docs[sessionID] {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

func (m *MockConnector) Get(_ context.Context, sessionID, documentID string) (*entity.DocumentInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[sessionID][documentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrDocumentNotFound, documentID)
	}
	return &doc, nil
}

func (m *MockConnector) Delete(ctx context.Context, sessionID, documentID string) error {
	m.mu.Lock()
	_, ok := m.docs[sessionID][documentID]
	delete(m.docs[sessionID], documentID)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrDocumentNotFound, documentID)
	}
	return m.indexer.RemoveDocument(ctx, documentID)
}
