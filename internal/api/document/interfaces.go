package document

import (
	"context"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/usecase/document"
)

type DocumentCoordinator interface {
	Upload(
		ctx context.Context,
		sessionID string,
		file entity.FileUpload,
		meta entity.UploadMetadata,
		progress document.ProgressFunc,
	) (*entity.DocumentInfo, error)
	List(ctx context.Context, sessionID string) ([]entity.DocumentInfo, error)
	Get(ctx context.Context, sessionID, documentID string) (*entity.DocumentInfo, error)
	Delete(ctx context.Context, sessionID, documentID string) error
}

type SessionProvider interface {
	Require() (string, error)
}
