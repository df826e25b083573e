package document

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
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

// Upload sends the file and its metadata as one multipart request
// POST {document_upload_endpoint} with multipart/form-data: file, metadata
func (c *Connector) Upload(
	ctx context.Context,
	sessionID string,
	file entity.FileUpload,
	meta *entity.UploadMetadata,
	onProgress func(sent, total int64),
) (*entity.DocumentUploadResponse, error) {
	ctxzap.Info(ctx, "uploading document",
		zap.String("filename", file.Filename),
		zap.Int64("size", file.Size),
	)

	prepareBody := func(writer *multipart.Writer) error {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Filename))
		header.Set("Content-Type", file.ContentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("write file content: %w", err)
		}

		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		return writer.WriteField("metadata", string(metaJSON))
	}

	opts := []pkghttp.RequestOpt{pkghttp.WithSessionID(sessionID)}
	if onProgress != nil {
		opts = append(opts, pkghttp.WithUploadProgress(onProgress))
	}

	body, err := c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.DocumentUploadEndpoint, prepareBody, opts...)
	if err != nil {
		ctxzap.Error(ctx, "failed to upload document", zap.Error(err))
		return nil, fmt.Errorf("upload document: %w", err)
	}

	var resp entity.DocumentUploadResponse
	if err := pkghttp.DecodeJSON(body, &resp); err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	ctxzap.Info(ctx, "document uploaded",
		zap.String("document_id", resp.DocumentID),
		zap.String("status", string(resp.Status)),
	)
	return &resp, nil
}

// List returns the documents of the session
// GET {documents_endpoint}
func (c *Connector) List(ctx context.Context, sessionID string) ([]entity.DocumentInfo, error) {
	docs := []entity.DocumentInfo{}
	err := c.connector.DoRequest(ctx, http.MethodGet, c.config.DocumentsEndpoint, nil, &docs,
		pkghttp.WithSessionID(sessionID),
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

// Get fetches a single document
// GET {documents_endpoint}/{id}
func (c *Connector) Get(ctx context.Context, sessionID, documentID string) (*entity.DocumentInfo, error) {
	var doc entity.DocumentInfo
	err := c.connector.DoRequest(ctx, http.MethodGet, c.config.DocumentsEndpoint+"/"+url.PathEscape(documentID), nil, &doc,
		pkghttp.WithSessionID(sessionID),
		pkghttp.WithRequiredBody(),
	)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// Delete deletes a document and its chunks
// DELETE {documents_endpoint}/{id}
func (c *Connector) Delete(ctx context.Context, sessionID, documentID string) error {
	err := c.connector.DoRequest(ctx, http.MethodDelete, c.config.DocumentsEndpoint+"/"+url.PathEscape(documentID), nil, nil,
		pkghttp.WithSessionID(sessionID),
	)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	return nil
}
