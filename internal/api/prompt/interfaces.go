package prompt

import "github.com/futig/rag-playground/internal/entity"

type PromptEngine interface {
	Templates() []entity.PromptTemplate
	TemplatesByCategory(category entity.TemplateCategory) []entity.PromptTemplate
	Template(id string) (*entity.PromptTemplate, bool)
	AddTemplate(t entity.PromptTemplate) (*entity.PromptTemplate, error)
	UpdateTemplate(id string, patch entity.PromptTemplatePatch) (*entity.PromptTemplate, error)
	DeleteTemplate(id string) error
	SelectTemplate(id string) error
	Selected() string
	ValidatePrompt(text string) entity.ValidationResult
	SetCustomPrompt(text string) error
	CustomPrompt() string
	RenderTemplate(id string, pc entity.PromptContext) (string, error)
}
