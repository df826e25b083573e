package formatter

import (
	"testing"
	"time"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTranscript() entity.Transcript {
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	count := 2
	return entity.Transcript{
		Title:       "Conversation",
		SessionID:   "session_1",
		GeneratedAt: at,
		Messages: []entity.Message{
			{Role: entity.RoleUser, Content: "What is RAG?", Timestamp: at},
			{
				Role:      entity.RoleAssistant,
				Content:   "Retrieval-augmented generation.",
				Timestamp: at,
				Metadata: &entity.MessageMetadata{
					Model:             "gpt-test",
					Tokens:            42,
					ProcessingTime:    1500 * time.Millisecond,
					SearchResultCount: &count,
				},
			},
			{Role: entity.RoleAssistant, Content: "model overloaded", Timestamp: at, Error: true},
		},
	}
}

func TestFactory_Create(t *testing.T) {
	f := NewFactory()

	for _, format := range []entity.ExportFormat{entity.FormatMarkdown, entity.FormatPDF, entity.FormatDOCX} {
		formatter, err := f.Create(format)
		require.NoError(t, err, format)
		assert.Equal(t, "."+string(format), formatter.FileExtension())
	}

	_, err := f.Create("html")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleTranscript())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# Conversation\n")
	assert.Contains(t, text, "Session: `session_1`")
	assert.Contains(t, text, "### User · 2026-03-01 12:30:00\n\nWhat is RAG?")
	assert.Contains(t, text, "_model: gpt-test, tokens: 42, time: 1.5s, sources: 2_")
	assert.Contains(t, text, "### Assistant (error)")
}

func TestPDFFormatter(t *testing.T) {
	out, err := NewPDFFormatter().Format(sampleTranscript())
	require.NoError(t, err)
	assert.True(t, len(out) > 4 && string(out[:4]) == "%PDF")
}
