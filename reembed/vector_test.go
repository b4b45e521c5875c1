package reembed

import (
	"math"
	"testing"

	"github.com/poiesic/hybridkb/ai/hashing"
	"github.com/poiesic/hybridkb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
		want  []float32
	}{
		{"already unit", []float32{0, 0, 1}, []float32{0, 0, 1}},
		{"three four five", []float32{3, 4}, []float32{0.6, 0.8}},
		{"negative components", []float32{-1, 1}, []float32{-1 / float32(math.Sqrt2), 1 / float32(math.Sqrt2)}},
		{"tiny magnitude", []float32{1e-20, 0}, []float32{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]float32(nil), tt.input...)
			got, err := NormalizeVector(in)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-6)
			assert.InDelta(t, 1.0, magnitude(got), 1e-5)
			assert.Equal(t, tt.input, in, "input must not be modified")
		})
	}
}

func TestNormalizeVector_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
		err   error
	}{
		{"empty", nil, ErrEmptyVector},
		{"all zero", []float32{0, 0, 0}, ErrZeroVector},
		{"nan", []float32{1, float32(math.NaN())}, ErrNonFiniteVector},
		{"inf", []float32{float32(math.Inf(-1)), 1}, ErrNonFiniteVector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeVector(tt.input)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, got)
		})
	}
}

func TestNormalizeVector_EntityEmbedding(t *testing.T) {
	entity := &core.KnowledgeEntity{
		Name:        "Circuit Breaker",
		Type:        core.EntityTypePattern,
		Domain:      core.DomainArchitecture,
		Description: "Stops calls to a failing dependency",
	}
	embedder, err := hashing.NewEmbedder(64)
	require.NoError(t, err)

	raw, err := embedder.EmbedText(t.Context(), entity.EmbeddingText())
	require.NoError(t, err)
	for i := range raw {
		raw[i] *= 7
	}

	got, err := NormalizeVector(raw)
	require.NoError(t, err)
	assert.Len(t, got, 64)
	assert.InDelta(t, 1.0, magnitude(got), 1e-5)
}
