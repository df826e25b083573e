package entity

import (
	"fmt"
	"time"
)

type ExportFormat string

const (
	FormatMarkdown ExportFormat = "md"
	FormatPDF      ExportFormat = "pdf"
	FormatDOCX     ExportFormat = "docx"
)

func (f ExportFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return true
	default:
		return false
	}
}

func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(s)
	if s == "markdown" {
		f = FormatMarkdown
	}
	if !f.IsValid() {
		return "", fmt.Errorf("%w: unsupported export format %q", ErrInvalidParameter, s)
	}
	return f, nil
}

// Transcript is the printable form of a conversation.
type Transcript struct {
	Title       string
	SessionID   string
	GeneratedAt time.Time
	Messages    []Message
}

// Export is a rendered transcript ready to be written or served.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}
