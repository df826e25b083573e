package entity

import "time"

type TemplateCategory string

const (
	CategoryGeneral  TemplateCategory = "general"
	CategoryRAG      TemplateCategory = "rag"
	CategoryAnalysis TemplateCategory = "analysis"
	CategoryCreative TemplateCategory = "creative"
)

type PromptTemplate struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Template    string           `json:"template"`
	Variables   []string         `json:"variables"`
	Version     string           `json:"version"`
	Category    TemplateCategory `json:"category"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// PromptTemplatePatch updates a template in place; nil fields are kept.
type PromptTemplatePatch struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Template    *string           `json:"template,omitempty"`
	Variables   []string          `json:"variables,omitempty"`
	Version     *string           `json:"version,omitempty"`
	Category    *TemplateCategory `json:"category,omitempty"`
}

// PromptContext is everything a template can draw from.
type PromptContext struct {
	UserQuery           string            `json:"userQuery"`
	SearchResults       []SearchResult    `json:"searchResults,omitempty"`
	ConversationHistory []Message         `json:"conversationHistory,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
