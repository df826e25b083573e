package prompt

import (
	"time"

	"github.com/futig/rag-playground/internal/entity"
)

const (
	TemplateGeneralQA   = "general-qa"
	TemplateRAGEnhanced = "rag-enhanced"
	TemplateAnalysis    = "analysis"

	// CustomTemplateID marks messages rendered from a custom override prompt.
	CustomTemplateID = "custom"
)

func builtinTemplates(now time.Time) []entity.PromptTemplate {
	return []entity.PromptTemplate{
		{
			ID:          TemplateGeneralQA,
			Name:        "General Q&A",
			Description: "Plain question answering",
			Template:    "User question: {userQuery}\n\nProvide an accurate and helpful answer to the question above.",
			Variables:   []string{"userQuery"},
			Version:     "1.0.0",
			Category:    entity.CategoryGeneral,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          TemplateRAGEnhanced,
			Name:        "RAG Enhanced",
			Description: "Answer grounded on retrieved passages",
			Template: "Answer the user's question using the search results below.\n\n" +
				"Search results:\n{searchResults}\n\n" +
				"User question: {userQuery}\n\n" +
				"Give an accurate and detailed answer based on the search results. Say explicitly when something is not covered by them.",
			Variables: []string{"userQuery", "searchResults"},
			Version:   "1.0.0",
			Category:  entity.CategoryRAG,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          TemplateAnalysis,
			Name:        "Data Analysis",
			Description: "Analyse supplied data and derive insights",
			Template: "Analyse the following data and derive insights:\n\n" +
				"Data: {data}\n" +
				"Analysis request: {userQuery}\n\n" +
				"Structure the result and include the key insights and recommendations.",
			Variables: []string{"userQuery", "data"},
			Version:   "1.0.0",
			Category:  entity.CategoryAnalysis,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
