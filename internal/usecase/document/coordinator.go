package document

import (
	"context"
	"errors"
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

// Coordinator validates and uploads documents, one at a time.
type Coordinator struct {
	connector DocumentConnector
	validator *validator.Validator
	metrics   MetricsRecorder
	logger    *zap.Logger

	mirror *cache.Cache

	mu        sync.Mutex
	uploading bool
}

func NewCoordinator(
	connector DocumentConnector,
	validator *validator.Validator,
	metricsRecorder MetricsRecorder,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		connector: connector,
		validator: validator,
		metrics:   metricsRecorder,
		logger:    logger,
		mirror:    cache.New(cacheCfg.TTL, cacheCfg.CleanupInterval),
	}
}

// multipart clients send this for any file they cannot classify
const genericContentType = "application/octet-stream"

func mirrorKey(sessionID string) string {
	return "documents:" + sessionID
}

// Validate checks a file locally. A missing or generic content type is guessed from the file name.
func (c *Coordinator) Validate(file entity.FileUpload) error {
	return c.validator.ValidateUpload(withContentType(file))
}

func withContentType(file entity.FileUpload) entity.FileUpload {
	contentType := validator.NormalizeContentType(file.ContentType)
	if contentType == "" || contentType == genericContentType {
		contentType = validator.ContentTypeFor(file.Filename)
	}
	file.ContentType = contentType
	return file
}

// Uploading reports whether an upload is running.
func (c *Coordinator) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

func (c *Coordinator) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.uploading {
		return false
	}
	c.uploading = true
	return true
}

func (c *Coordinator) end() {
	c.mu.Lock()
	c.uploading = false
	c.mu.Unlock()
}

// Upload validates the file, streams it with its metadata and reports progress.
// Only a COMPLETED status counts as success; any other status yields an *entity.UploadFailedError.
func (c *Coordinator) Upload(
	ctx context.Context,
	sessionID string,
	file entity.FileUpload,
	meta entity.UploadMetadata,
	progress ProgressFunc,
) (*entity.DocumentInfo, error) {
	ctx = logger.AddFields(logger.WithSession(logger.WithAction(ctx, "upload_document"), sessionID), zap.String("filename", file.Filename))

	file = withContentType(file)
	if err := c.validator.ValidateUpload(file); err != nil {
		c.metrics.ObserveUpload(metrics.OutcomeRejected, file.Size)
		return nil, err
	}
	if file.Content == nil {
		return nil, fmt.Errorf("%w: file content", entity.ErrMissingField)
	}

	if !c.begin() {
		c.metrics.ObserveUpload(metrics.OutcomeRejected, file.Size)
		return nil, entity.ErrUploadInProgress
	}
	defer c.end()

	if strings.TrimSpace(meta.Title) == "" {
		meta.Title = validator.TitleFromFilename(file.Filename)
	}
	meta.SessionID = sessionID

	report := newProgressReporter(progress)
	report.set(0)

	resp, err := c.connector.Upload(ctx, sessionID, file, &meta, report.bytes)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, context.Canceled) {
			outcome = metrics.OutcomeCanceled
		}
		c.metrics.ObserveUpload(outcome, file.Size)
		return nil, err
	}

	if resp.Status != entity.DocumentStatusCompleted {
		c.metrics.ObserveUpload(metrics.OutcomeError, file.Size)
		ctxzap.Warn(ctx, "document processing did not complete",
			zap.String("status", string(resp.Status)),
			zap.Strings("errors", resp.Errors),
		)
		return nil, &entity.UploadFailedError{Status: resp.Status, Errors: resp.Errors}
	}

	report.set(1)
	c.metrics.ObserveUpload(metrics.OutcomeSuccess, file.Size)
	ctxzap.Info(ctx, "document ready",
		zap.String("document_id", resp.DocumentID),
		zap.Int("chunks", resp.TotalChunks),
	)

	c.refresh(ctx, sessionID)

	return &entity.DocumentInfo{
		ID:          resp.DocumentID,
		Title:       resp.Title,
		Description: meta.Description,
		Category:    meta.Category,
		TotalChunks: resp.TotalChunks,
		UploadedAt:  resp.UploadedAt,
	}, nil
}

func (c *Coordinator) List(ctx context.Context, sessionID string) ([]entity.DocumentInfo, error) {
	docs, err := c.connector.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	c.mirror.Set(mirrorKey(sessionID), docs, cache.DefaultExpiration)
	return docs, nil
}

// Cached returns the last fetched document list without a network call.
func (c *Coordinator) Cached(sessionID string) ([]entity.DocumentInfo, bool) {
	if x, found := c.mirror.Get(mirrorKey(sessionID)); found {
		return x.([]entity.DocumentInfo), true
	}
	return nil, false
}

func (c *Coordinator) Get(ctx context.Context, sessionID, documentID string) (*entity.DocumentInfo, error) {
	doc, err := c.connector.Get(ctx, sessionID, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (c *Coordinator) Delete(ctx context.Context, sessionID, documentID string) error {
	ctx = logger.AddFields(logger.WithAction(ctx, "delete_document"), zap.String("document_id", documentID))

	if err := c.connector.Delete(ctx, sessionID, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	ctxzap.Info(ctx, "document deleted")
	c.refresh(ctx, sessionID)
	return nil
}

func (c *Coordinator) refresh(ctx context.Context, sessionID string) {
	if _, err := c.List(ctx, sessionID); err != nil {
		c.mirror.Delete(mirrorKey(sessionID))
		ctxzap.Warn(ctx, "document list refresh failed, mirror invalidated", zap.Error(err))
	}
}

// progressReporter turns byte counts into non-decreasing fractions.
type progressReporter struct {
	mu   sync.Mutex
	fn   ProgressFunc
	last float64
}

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn, last: -1}
}

func (p *progressReporter) bytes(sent, total int64) {
	if total <= 0 {
		return
	}
	p.set(float64(sent) / float64(total))
}

func (p *progressReporter) set(fraction float64) {
	if p.fn == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fraction = min(max(fraction, 0), 1)
	if fraction <= p.last {
		return
	}
	p.last = fraction
	p.fn(fraction)
}
