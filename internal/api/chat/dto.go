package chat

import (
	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/usecase/quality"
)

type sendMessageRequest struct {
	Content string      `json:"content"`
	Mode    entity.Mode `json:"mode,omitempty"`
}

type sendMessageResponse struct {
	Message       *entity.Message       `json:"message"`
	SearchResults []entity.SearchResult `json:"searchResults,omitempty"`
}

type messagesResponse struct {
	Messages []entity.Message `json:"messages"`
	Loading  bool             `json:"loading"`
}

type resultsResponse struct {
	Results []entity.SearchResult `json:"results"`
}

type cancelResponse struct {
	Canceled bool `json:"canceled"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

type feedbackResponse struct {
	Applied entity.RAGConfigPatch `json:"applied"`
	Config  entity.RAGConfig      `json:"config"`
	Report  quality.Report        `json:"report"`
}

type vectorSearchRequest struct {
	Embedding string `json:"embedding"`
	TopK      int    `json:"topK,omitempty"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
}
