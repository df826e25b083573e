package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ParseEmbedding reads a vector typed by hand: "0.1, 0.2", "[0.1,0.2]" or "(0.1 0.2)".
func ParseEmbedding(text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	trimmed = strings.TrimPrefix(trimmed, "(")
	trimmed = strings.TrimSuffix(trimmed, ")")

	fields := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no values", entity.ErrInvalidEmbedding)
	}

	vec := make([]float32, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: value %d %q is not a number", entity.ErrInvalidEmbedding, i+1, f)
		}
		vec = append(vec, float32(v))
	}

	return vec, nil
}

// SearchByEmbedding runs a vector search with a raw embedding. It does not touch
// the conversation's current search results.
func (o *Orchestrator) SearchByEmbedding(ctx context.Context, raw string, topK int) ([]entity.SearchResult, error) {
	vec, err := ParseEmbedding(raw)
	if err != nil {
		return nil, err
	}
	if topK < 1 {
		topK = o.Config().TopK
	}

	results, err := o.backend.SearchByEmbedding(ctx, o.sessions.ID(), &entity.EmbeddingSearchRequest{
		Embedding: vec,
		TopK:      topK,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding search: %w", err)
	}

	ctxzap.Info(ctx, "embedding search finished",
		zap.Int("dimensions", len(vec)),
		zap.Int("results", len(results)),
	)

	return results, nil
}
