package quality

import (
	"fmt"
	"math"

	"github.com/futig/rag-playground/internal/entity"
)

type Rating string

const (
	RatingPoor      Rating = "poor"
	RatingFair      Rating = "fair"
	RatingGood      Rating = "good"
	RatingExcellent Rating = "excellent"
)

type Feedback string

const (
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

func ParseFeedback(s string) (Feedback, error) {
	switch f := Feedback(s); f {
	case FeedbackPositive, FeedbackNegative:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidFeedback, s)
	}
}

const (
	highQualityScore = 0.8

	topKStep      = 5
	maxTopK       = 20
	thresholdStep = 0.1
	minThreshold  = 0.3

	floatNoise = 1e9
)

type Report struct {
	AverageScore     float64 `json:"averageScore"`
	HighQualityCount int     `json:"highQualityCount"`
	QualityRating    Rating  `json:"qualityRating"`
}

// Evaluator scores retrieval batches. It holds no state.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

func (e *Evaluator) Evaluate(results []entity.SearchResult) Report {
	if len(results) == 0 {
		return Report{QualityRating: RatingPoor}
	}

	var sum float64
	high := 0
	for _, r := range results {
		sum += r.Score
		if r.Score > highQualityScore {
			high++
		}
	}
	avg := sum / float64(len(results))

	return Report{
		AverageScore:     avg,
		HighQualityCount: high,
		QualityRating:    rate(avg),
	}
}

func rate(avg float64) Rating {
	switch {
	case avg > 0.8:
		return RatingExcellent
	case avg > 0.6:
		return RatingGood
	case avg > 0.4:
		return RatingFair
	default:
		return RatingPoor
	}
}

// Optimize proposes a config patch from user feedback. The caller merges it; an empty
// patch means no change.
func (e *Evaluator) Optimize(results []entity.SearchResult, feedback Feedback, current entity.RAGConfig) entity.RAGConfigPatch {
	rating := e.Evaluate(results).QualityRating

	if feedback == FeedbackPositive && rating == RatingExcellent {
		return entity.RAGConfigPatch{}
	}

	if feedback == FeedbackNegative || rating == RatingPoor {
		topK := min(current.TopK+topKStep, maxTopK)
		threshold := math.Max(stripFloatNoise(current.Threshold-thresholdStep), minThreshold)
		return entity.RAGConfigPatch{TopK: &topK, Threshold: &threshold}
	}

	return entity.RAGConfigPatch{}
}

// stripFloatNoise rounds away subtraction error (0.7-0.1 = 0.6) without changing user precision.
func stripFloatNoise(v float64) float64 {
	return math.Round(v*floatNoise) / floatNoise
}
