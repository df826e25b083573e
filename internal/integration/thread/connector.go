package thread

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

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

func (c *Connector) threadPath(threadID string, suffix string) string {
	return c.config.ThreadsEndpoint + "/" + url.PathEscape(threadID) + suffix
}

// Create creates a thread
// POST {threads_endpoint}
func (c *Connector) Create(ctx context.Context, sessionID string, req *entity.CreateThreadRequest) (*entity.ConversationThread, error) {
	var thread entity.ConversationThread
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.ThreadsEndpoint, req, &thread,
		pkghttp.WithSessionID(sessionID),
		pkghttp.WithRequiredBody(),
	)
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}

	ctxzap.Debug(ctx, "thread created", zap.String("thread_id", thread.ID))
	return &thread, nil
}

// Get fetches a thread with its messages
// GET {threads_endpoint}/{id}
func (c *Connector) Get(ctx context.Context, sessionID, threadID string) (*entity.ConversationThread, error) {
	var thread entity.ConversationThread
	err := c.connector.DoRequest(ctx, http.MethodGet, c.threadPath(threadID, ""), nil, &thread,
		pkghttp.WithSessionID(sessionID),
		pkghttp.WithRequiredBody(),
	)
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}

	return &thread, nil
}

// List returns the threads of the session
// GET {threads_endpoint}
func (c *Connector) List(ctx context.Context, sessionID string) ([]entity.ConversationThread, error) {
	threads := []entity.ConversationThread{}
	err := c.connector.DoRequest(ctx, http.MethodGet, c.config.ThreadsEndpoint, nil, &threads,
		pkghttp.WithSessionID(sessionID),
	)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	return threads, nil
}

// AddMessage appends a message and returns the updated thread
// POST {threads_endpoint}/{id}/messages
func (c *Connector) AddMessage(ctx context.Context, sessionID, threadID string, req *entity.AddMessageRequest) (*entity.ConversationThread, error) {
	var thread entity.ConversationThread
	err := c.connector.DoRequest(ctx, http.MethodPost, c.threadPath(threadID, "/messages"), req, &thread,
		pkghttp.WithSessionID(sessionID),
		pkghttp.WithRequiredBody(),
	)
	if err != nil {
		return nil, fmt.Errorf("add thread message: %w", err)
	}

	return &thread, nil
}

// UpdateTitle renames a thread
// PUT {threads_endpoint}/{id}/title
func (c *Connector) UpdateTitle(ctx context.Context, sessionID, threadID, title string) (*entity.ConversationThread, error) {
	var thread entity.ConversationThread
	err := c.connector.DoRequest(ctx, http.MethodPut, c.threadPath(threadID, "/title"), &entity.UpdateTitleRequest{Title: title}, &thread,
		pkghttp.WithSessionID(sessionID),
		pkghttp.WithRequiredBody(),
	)
	if err != nil {
		return nil, fmt.Errorf("update thread title: %w", err)
	}

	return &thread, nil
}

// Archive archives a thread
// POST {threads_endpoint}/{id}/archive
func (c *Connector) Archive(ctx context.Context, sessionID, threadID string) error {
	err := c.connector.DoRequest(ctx, http.MethodPost, c.threadPath(threadID, "/archive"), struct{}{}, nil,
		pkghttp.WithSessionID(sessionID),
	)
	if err != nil {
		return fmt.Errorf("archive thread: %w", err)
	}

	return nil
}

// Delete deletes a thread
// DELETE {threads_endpoint}/{id}
func (c *Connector) Delete(ctx context.Context, sessionID, threadID string) error {
	err := c.connector.DoRequest(ctx, http.MethodDelete, c.threadPath(threadID, ""), nil, nil,
		pkghttp.WithSessionID(sessionID),
	)
	if err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}

	return nil
}
