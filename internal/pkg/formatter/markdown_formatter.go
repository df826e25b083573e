package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/rag-playground/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(t entity.Transcript) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", t.Title)
	if t.SessionID != "" {
		fmt.Fprintf(&buf, "Session: `%s`  \n", t.SessionID)
	}
	fmt.Fprintf(&buf, "Exported: %s\n", t.GeneratedAt.Format(timestampLayout))

	for _, m := range t.Messages {
		fmt.Fprintf(&buf, "\n### %s\n\n%s\n", speaker(m), m.Content)
		if d := details(m); d != "" {
			fmt.Fprintf(&buf, "\n_%s_\n", d)
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
