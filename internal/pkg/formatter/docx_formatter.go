package formatter

import (
	"bytes"
	"strings"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(t entity.Transcript) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(t.Title)

	metaRun := doc.AddParagraph().AddRun()
	metaRun.Properties().SetItalic(true)
	meta := "Exported: " + t.GeneratedAt.Format(timestampLayout)
	if t.SessionID != "" {
		meta = "Session: " + t.SessionID + "   " + meta
	}
	metaRun.AddText(meta)

	for _, m := range t.Messages {
		head := doc.AddParagraph()
		head.SetStyle("Heading3")
		head.AddRun().AddText(speaker(m))

		body := doc.AddParagraph()
		run := body.AddRun()
		for i, line := range strings.Split(m.Content, "\n") {
			if i > 0 {
				run.AddBreak()
			}
			run.AddText(line)
		}

		if d := details(m); d != "" {
			detailRun := doc.AddParagraph().AddRun()
			detailRun.Properties().SetItalic(true)
			detailRun.AddText(d)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
