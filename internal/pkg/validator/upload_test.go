package validator

import (
	"testing"

	"github.com/futig/rag-playground/internal/config"
	"github.com/futig/rag-playground/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestValidateUpload(t *testing.T) {
	v := NewValidator(config.UploadConfig{MaxFileSize: 10 * 1024 * 1024})

	tests := []struct {
		name    string
		file    entity.FileUpload
		wantErr error
	}{
		{
			name: "pdf within limit",
			file: entity.FileUpload{Filename: "a.pdf", ContentType: ContentTypePDF, Size: 1024},
		},
		{
			name: "exactly at limit",
			file: entity.FileUpload{Filename: "a.txt", ContentType: "text/plain; charset=utf-8", Size: 10 * 1024 * 1024},
		},
		{
			name:    "eleven megabytes",
			file:    entity.FileUpload{Filename: "big.pdf", ContentType: ContentTypePDF, Size: 11 * 1024 * 1024},
			wantErr: entity.ErrFileTooLarge,
		},
		{
			name:    "image rejected",
			file:    entity.FileUpload{Filename: "a.png", ContentType: "image/png", Size: 10},
			wantErr: entity.ErrUnsupportedContentType,
		},
		{
			name:    "missing name",
			file:    entity.FileUpload{ContentType: ContentTypePDF, Size: 10},
			wantErr: entity.ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.file)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, ContentTypeMarkdown, ContentTypeFor("notes/README.md"))
	assert.Equal(t, ContentTypeDOCX, ContentTypeFor("report.DOCX"))
	assert.Equal(t, ContentTypePDF, ContentTypeFor("a.pdf"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("blob"))
}

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "report.v2", TitleFromFilename("/tmp/report.v2.pdf"))
	assert.Equal(t, "plain", TitleFromFilename("plain"))
}

func TestValidateAdvancedSearch(t *testing.T) {
	v := NewValidator(config.UploadConfig{MaxFileSize: 1})

	ok := &entity.AdvancedSearchRequest{Query: "q", SearchType: entity.SearchTypeHybrid}
	assert.NoError(t, v.ValidateAdvancedSearch(ok))

	between := &entity.AdvancedSearchRequest{
		Query:      "q",
		SearchType: entity.SearchTypeSemantic,
		Filters:    []entity.SearchFilter{{Field: "score", Operator: entity.FilterBetween, Value: 0.1}},
	}
	assert.ErrorIs(t, v.ValidateAdvancedSearch(between), entity.ErrMissingField)

	badType := &entity.AdvancedSearchRequest{Query: "q", SearchType: "FUZZY"}
	assert.ErrorIs(t, v.ValidateAdvancedSearch(badType), entity.ErrInvalidParameter)
}
