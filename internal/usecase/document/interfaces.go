package document

import (
	"context"

	"github.com/futig/rag-playground/internal/entity"
)

type DocumentConnector interface {
	Upload(
		ctx context.Context,
		sessionID string,
		file entity.FileUpload,
		meta *entity.UploadMetadata,
		onProgress func(sent, total int64),
	) (*entity.DocumentUploadResponse, error)
	List(ctx context.Context, sessionID string) ([]entity.DocumentInfo, error)
	Get(ctx context.Context, sessionID, documentID string) (*entity.DocumentInfo, error)
	Delete(ctx context.Context, sessionID, documentID string) error
}

type MetricsRecorder interface {
	ObserveUpload(outcome string, size int64)
}

// ProgressFunc receives the uploaded fraction of the request body, from 0 to 1.
type ProgressFunc func(fraction float64)
