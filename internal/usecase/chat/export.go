package chat

import (
	"fmt"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/pkg/formatter"
)

const transcriptTitle = "RAG Playground conversation"

// ExportTranscript renders the current conversation in the requested format.
func (o *Orchestrator) ExportTranscript(format entity.ExportFormat) (*entity.Export, error) {
	f, err := formatter.NewFactory().Create(format)
	if err != nil {
		return nil, err
	}

	now := o.now()
	data, err := f.Format(entity.Transcript{
		Title:       transcriptTitle,
		SessionID:   o.sessions.ID(),
		GeneratedAt: now,
		Messages:    o.Messages(),
	})
	if err != nil {
		return nil, fmt.Errorf("format transcript: %w", err)
	}

	return &entity.Export{
		Filename:    "conversation-" + now.Format("20060102-150405") + f.FileExtension(),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}
