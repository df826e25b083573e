package quality

import (
	"testing"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scores(values ...float64) []entity.SearchResult {
	results := make([]entity.SearchResult, 0, len(values))
	for _, v := range values {
		results = append(results, entity.SearchResult{Score: v})
	}
	return results
}

func TestEvaluate(t *testing.T) {
	e := NewEvaluator()

	tests := []struct {
		name    string
		results []entity.SearchResult
		want    Report
	}{
		{
			name:    "empty",
			results: nil,
			want:    Report{AverageScore: 0, HighQualityCount: 0, QualityRating: RatingPoor},
		},
		{
			name:    "excellent",
			results: scores(0.9, 0.85),
			want:    Report{AverageScore: 0.875, HighQualityCount: 2, QualityRating: RatingExcellent},
		},
		{
			name:    "exactly 0.8 is only good",
			results: scores(0.8, 0.8),
			want:    Report{AverageScore: 0.8, HighQualityCount: 0, QualityRating: RatingGood},
		},
		{
			name:    "fair",
			results: scores(0.5),
			want:    Report{AverageScore: 0.5, HighQualityCount: 0, QualityRating: RatingFair},
		},
		{
			name:    "poor",
			results: scores(0.4, 0.2),
			want:    Report{AverageScore: 0.30000000000000004, HighQualityCount: 0, QualityRating: RatingPoor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(tt.results)
			assert.InDelta(t, tt.want.AverageScore, got.AverageScore, 1e-9)
			assert.Equal(t, tt.want.HighQualityCount, got.HighQualityCount)
			assert.Equal(t, tt.want.QualityRating, got.QualityRating)
		})
	}
}

func TestOptimize_NegativeFeedbackSaturates(t *testing.T) {
	e := NewEvaluator()
	cfg := entity.DefaultRAGConfig()
	results := scores(0.9, 0.9)

	patch := e.Optimize(results, FeedbackNegative, cfg)
	require.NotNil(t, patch.TopK)
	require.NotNil(t, patch.Threshold)
	assert.Equal(t, 15, *patch.TopK)
	assert.Equal(t, 0.6, *patch.Threshold)

	for range 10 {
		var err error
		cfg, err = cfg.Merge(e.Optimize(results, FeedbackNegative, cfg))
		require.NoError(t, err)
	}
	assert.Equal(t, 20, cfg.TopK)
	assert.Equal(t, 0.3, cfg.Threshold)

	patch = e.Optimize(results, FeedbackNegative, cfg)
	assert.Equal(t, 20, *patch.TopK)
	assert.Equal(t, 0.3, *patch.Threshold)
}

func TestOptimize_KeepsThresholdPrecision(t *testing.T) {
	e := NewEvaluator()

	tests := []struct {
		threshold float64
		want      float64
	}{
		{0.755, 0.655},
		{0.7, 0.6},
		{0.42, 0.32},
		{0.35, 0.3},
	}

	for _, tt := range tests {
		cfg := entity.DefaultRAGConfig()
		cfg.Threshold = tt.threshold

		patch := e.Optimize(nil, FeedbackNegative, cfg)
		require.NotNil(t, patch.Threshold)
		assert.Equal(t, tt.want, *patch.Threshold, "threshold %v", tt.threshold)
	}
}

func TestOptimize_NoChangeCases(t *testing.T) {
	e := NewEvaluator()
	cfg := entity.DefaultRAGConfig()

	assert.True(t, e.Optimize(scores(0.9, 0.85), FeedbackPositive, cfg).IsEmpty())
	assert.True(t, e.Optimize(scores(0.7), FeedbackPositive, cfg).IsEmpty())
}

func TestOptimize_PoorResultsWidenEvenOnPositive(t *testing.T) {
	e := NewEvaluator()

	patch := e.Optimize(nil, FeedbackPositive, entity.DefaultRAGConfig())
	require.NotNil(t, patch.TopK)
	assert.Equal(t, 15, *patch.TopK)
}

func TestOptimize_DoesNotMutateConfig(t *testing.T) {
	e := NewEvaluator()
	cfg := entity.DefaultRAGConfig()

	e.Optimize(nil, FeedbackNegative, cfg)
	assert.Equal(t, entity.DefaultRAGConfig(), cfg)
}

func TestParseFeedback(t *testing.T) {
	f, err := ParseFeedback("negative")
	require.NoError(t, err)
	assert.Equal(t, FeedbackNegative, f)

	_, err = ParseFeedback("meh")
	assert.ErrorIs(t, err, entity.ErrInvalidFeedback)
}
