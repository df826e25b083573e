package validator

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/futig/rag-playground/internal/config"
	"github.com/futig/rag-playground/internal/entity"
)

const (
	ContentTypePDF      = "application/pdf"
	ContentTypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeDOC      = "application/msword"
	ContentTypeText     = "text/plain"
	ContentTypeMarkdown = "text/markdown"
)

var AllowedContentTypes = map[string]bool{
	ContentTypePDF:      true,
	ContentTypeDOCX:     true,
	ContentTypeDOC:      true,
	ContentTypeText:     true,
	ContentTypeMarkdown: true,
}

var extensionContentTypes = map[string]string{
	".pdf":      ContentTypePDF,
	".docx":     ContentTypeDOCX,
	".doc":      ContentTypeDOC,
	".txt":      ContentTypeText,
	".md":       ContentTypeMarkdown,
	".markdown": ContentTypeMarkdown,
}

// Validator validates document uploads and facade requests
type Validator struct {
	cfg config.UploadConfig
}

func NewValidator(cfg config.UploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

func (v *Validator) MaxFileSize() int64 {
	return v.cfg.MaxFileSize
}

// ValidateUpload checks the declared size and content type of a file.
func (v *Validator) ValidateUpload(file entity.FileUpload) error {
	if file.Filename == "" {
		return fmt.Errorf("%w: file name", entity.ErrMissingField)
	}

	if file.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, file.Filename, file.Size, v.cfg.MaxFileSize)
	}

	contentType := NormalizeContentType(file.ContentType)
	if !AllowedContentTypes[contentType] {
		return fmt.Errorf("%w: '%s' (allowed: pdf, docx, doc, txt, md)", entity.ErrUnsupportedContentType, file.ContentType)
	}

	return nil
}

// NormalizeContentType strips parameters such as charset from a media type.
func NormalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// ContentTypeFor guesses the media type of a local file from its extension.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := extensionContentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return NormalizeContentType(ct)
	}
	return "application/octet-stream"
}

// TitleFromFilename drops the directory and the extension.
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SanitizeFilename sanitizes a filename for safe transfer
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	return replacer.Replace(filename)
}
