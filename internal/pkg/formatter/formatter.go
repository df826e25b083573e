package formatter

import (
	"fmt"
	"time"

	"github.com/futig/rag-playground/internal/entity"
)

const timestampLayout = "2006-01-02 15:04:05"

type Formatter interface {
	Format(t entity.Transcript) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ExportFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", entity.ErrInvalidParameter, format)
	}
}

// speaker is the heading printed above each message.
func speaker(m entity.Message) string {
	label := "User"
	switch m.Role {
	case entity.RoleAssistant:
		label = "Assistant"
	case entity.RoleSystem:
		label = "System"
	}
	if m.Error {
		label += " (error)"
	}
	return fmt.Sprintf("%s · %s", label, m.Timestamp.Format(timestampLayout))
}

// details summarizes assistant metadata in one line, or returns "" when there is none.
func details(m entity.Message) string {
	if m.Metadata == nil {
		return ""
	}
	md := m.Metadata
	s := fmt.Sprintf("model: %s, tokens: %d, time: %s", md.Model, md.Tokens, md.ProcessingTime.Round(time.Millisecond))
	if md.SearchResultCount != nil {
		s += fmt.Sprintf(", sources: %d", *md.SearchResultCount)
	}
	if md.PromptTemplate != "" {
		s += ", template: " + md.PromptTemplate
	}
	return s
}
