package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type SearchMode string

const (
	SearchModeSimilarity SearchMode = "similarity"
	SearchModeMMR        SearchMode = "mmr"
	SearchModeHybrid     SearchMode = "hybrid"
)

func (m SearchMode) Validate() error {
	switch m {
	case SearchModeSimilarity, SearchModeMMR, SearchModeHybrid:
		return nil
	default:
		return fmt.Errorf("%w: unknown search mode %q", ErrInvalidConfig, m)
	}
}

type RAGConfig struct {
	TopK        int        `json:"topK"`
	Threshold   float64    `json:"threshold"`
	MaxTokens   int        `json:"maxTokens"`
	Temperature float64    `json:"temperature"`
	SearchMode  SearchMode `json:"searchMode"`
}

// DefaultRAGConfig mirrors the values the backend is tuned for.
func DefaultRAGConfig() RAGConfig {
	return RAGConfig{
		TopK:        10,
		Threshold:   0.7,
		MaxTokens:   4000,
		Temperature: 0.7,
		SearchMode:  SearchModeSimilarity,
	}
}

func (c RAGConfig) Validate() error {
	_, err := RAGConfig{}.Merge(RAGConfigPatch{
		TopK:        &c.TopK,
		Threshold:   &c.Threshold,
		MaxTokens:   &c.MaxTokens,
		Temperature: &c.Temperature,
		SearchMode:  &c.SearchMode,
	})
	return err
}

// RAGConfigPatch is a partial update; nil fields are left untouched.
type RAGConfigPatch struct {
	TopK        *int        `json:"topK,omitempty"`
	Threshold   *float64    `json:"threshold,omitempty"`
	MaxTokens   *int        `json:"maxTokens,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`
	SearchMode  *SearchMode `json:"searchMode,omitempty"`
}

func (p RAGConfigPatch) IsEmpty() bool {
	return p.TopK == nil && p.Threshold == nil && p.MaxTokens == nil && p.Temperature == nil && p.SearchMode == nil
}

// Merge applies every valid field of the patch over c. Invalid fields are skipped and
// reported in the returned error, so the result is never partially invalid.
func (c RAGConfig) Merge(p RAGConfigPatch) (RAGConfig, error) {
	merged := c
	var errs []error

	if p.TopK != nil {
		if *p.TopK >= 1 {
			merged.TopK = *p.TopK
		} else {
			errs = append(errs, fmt.Errorf("%w: topK must be >= 1, got %d", ErrInvalidConfig, *p.TopK))
		}
	}

	if p.Threshold != nil {
		if *p.Threshold >= 0 && *p.Threshold <= 1 {
			merged.Threshold = *p.Threshold
		} else {
			errs = append(errs, fmt.Errorf("%w: threshold must be within [0,1], got %g", ErrInvalidConfig, *p.Threshold))
		}
	}

	if p.MaxTokens != nil {
		if *p.MaxTokens > 0 {
			merged.MaxTokens = *p.MaxTokens
		} else {
			errs = append(errs, fmt.Errorf("%w: maxTokens must be > 0, got %d", ErrInvalidConfig, *p.MaxTokens))
		}
	}

	if p.Temperature != nil {
		if *p.Temperature >= 0 {
			merged.Temperature = *p.Temperature
		} else {
			errs = append(errs, fmt.Errorf("%w: temperature must be >= 0, got %g", ErrInvalidConfig, *p.Temperature))
		}
	}

	if p.SearchMode != nil {
		if err := p.SearchMode.Validate(); err == nil {
			merged.SearchMode = *p.SearchMode
		} else {
			errs = append(errs, err)
		}
	}

	return merged, errors.Join(errs...)
}

type SearchResult struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
	Source   string         `json:"source"`
}

// RawSearchResult is a retrieval item as backends actually return it.
type RawSearchResult struct {
	ID         any            `json:"id"`
	Content    string         `json:"content"`
	Text       string         `json:"text"`
	Score      *float64       `json:"score"`
	Similarity *float64       `json:"similarity"`
	Metadata   map[string]any `json:"metadata"`
	Source     string         `json:"source"`
	URL        string         `json:"url"`
}

// Normalize fills the gaps left by loosely shaped backend items.
func (r RawSearchResult) Normalize(index int) SearchResult {
	res := SearchResult{
		ID:       fmt.Sprintf("result_%d", index),
		Content:  r.Content,
		Metadata: r.Metadata,
		Source:   r.Source,
	}

	if r.ID != nil && fmt.Sprint(r.ID) != "" {
		res.ID = fmt.Sprint(r.ID)
	}
	if res.Content == "" {
		res.Content = r.Text
	}
	if r.Score != nil {
		res.Score = *r.Score
	} else if r.Similarity != nil {
		res.Score = *r.Similarity
	}
	if res.Metadata == nil {
		res.Metadata = map[string]any{}
	}
	if res.Source == "" {
		res.Source = r.URL
	}
	if res.Source == "" {
		res.Source = "Unknown"
	}

	return res
}

type SearchRequest struct {
	Query     string   `json:"query"`
	TopK      int      `json:"topK"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type EmbeddingSearchRequest struct {
	Embedding []float32 `json:"embedding"`
	TopK      int       `json:"topK"`
}

// AskRequest is the direct-answer call: no retrieval and no rendered prompt.
type AskRequest struct {
	Query     string     `json:"query"`
	Config    *RAGConfig `json:"config,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
}

type ChatRequest struct {
	Query         string         `json:"query"`
	Prompt        string         `json:"prompt,omitempty"`
	SearchResults []SearchResult `json:"searchResults"`
	Config        RAGConfig      `json:"config"`
	SessionID     string         `json:"sessionId,omitempty"`
}

type ChatResponse struct {
	Content   string `json:"content"`
	SessionID string `json:"sessionId,omitempty"`
	Model     string `json:"model,omitempty"`
	Tokens    int    `json:"tokens,omitempty"`
}

// UnmarshalJSON accepts both the object form and a bare JSON string answer.
func (r *ChatResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var content string
		if err := json.Unmarshal(trimmed, &content); err != nil {
			return err
		}
		*r = ChatResponse{Content: content}
		return nil
	}

	type plain ChatResponse
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*r = ChatResponse(p)
	return nil
}

// Answer is a completed generation with client-side measurements.
type Answer struct {
	Content        string
	SessionID      string
	Model          string
	Tokens         int
	ProcessingTime time.Duration
}
