package chat

import (
	"testing"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmbedding(t *testing.T) {
	for _, in := range []string{"0.1, 0.2, -3", "[0.1,0.2,-3]", "(0.1 0.2 -3)", "  [ 0.1 , 0.2 , -3 ] "} {
		got, err := ParseEmbedding(in)
		require.NoError(t, err, in)
		assert.Equal(t, []float32{0.1, 0.2, -3}, got, in)
	}
}

func TestParseEmbedding_Invalid(t *testing.T) {
	for _, in := range []string{"", "[]", "0.1, x", "(,)"} {
		_, err := ParseEmbedding(in)
		assert.ErrorIs(t, err, entity.ErrInvalidEmbedding, in)
	}
}
