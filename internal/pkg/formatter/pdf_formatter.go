package formatter

import (
	"bytes"
	"os"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the gofpdf family name of the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Runtime layout copies fonts next to the binary; the source path serves `go run` from the repo root.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
	pdfFontEnv         = "PDF_FONT_PATH"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func resolveFontPath() string {
	candidates := []string{os.Getenv(pdfFontEnv), pdfFontRuntimePath, pdfFontSourcePath}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (pf *PDFFormatter) Format(t entity.Transcript) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Without the bundled font, fall back to a core font and map text to cp1252.
	fontName := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		pdf.AddUTF8Font(pdfFontName, "I", fontPath)
		fontName = pdfFontName
		tr = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, tr(t.Title))
	pdf.Ln(10)

	pdf.SetFont(fontName, "", 9)
	meta := "Exported: " + t.GeneratedAt.Format(timestampLayout)
	if t.SessionID != "" {
		meta = "Session: " + t.SessionID + "   " + meta
	}
	pdf.Cell(0, 6, tr(meta))
	pdf.Ln(10)

	for _, m := range t.Messages {
		pdf.SetFont(fontName, "B", 11)
		if m.Error {
			pdf.SetTextColor(180, 0, 0)
		}
		pdf.Cell(0, 7, tr(speaker(m)))
		pdf.Ln(7)

		pdf.SetFont(fontName, "", 11)
		_, lineHeight := pdf.GetFontSize()
		pdf.MultiCell(0, lineHeight*1.5, tr(m.Content), "", "", false)
		pdf.SetTextColor(0, 0, 0)

		if d := details(m); d != "" {
			pdf.SetFont(fontName, "I", 8)
			pdf.MultiCell(0, 5, tr(d), "", "", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
