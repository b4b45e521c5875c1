package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/hybridkb/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (norm(a) * norm(b))
}

func TestEmbedder_DeterministicUnitLength(t *testing.T) {
	e, err := NewEmbedder(256)
	require.NoError(t, err)
	ctx := context.Background()

	a, err := e.EmbedText(ctx, "Circuit breaker pattern")
	require.NoError(t, err)
	b, err := e.EmbedText(ctx, "circuit BREAKER pattern!")
	require.NoError(t, err)

	assert.Len(t, a, 256)
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, norm(a), 1e-5)
}

func TestEmbedder_SimilarTextsAreCloser(t *testing.T) {
	e, err := NewEmbedder(512)
	require.NoError(t, err)
	ctx := context.Background()

	vecs, err := e.EmbedTexts(ctx, []string{
		"momentum trading strategy",
		"momentum strategy for trading currencies",
		"relational database indexing",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Greater(t, cosine(vecs[0], vecs[1]), cosine(vecs[0], vecs[2]))
}

func TestEmbedder_EmptyText(t *testing.T) {
	e, err := NewEmbedder(16)
	require.NoError(t, err)

	v, err := e.EmbedText(context.Background(), " ?! ")
	require.NoError(t, err)
	assert.Len(t, v, 16)
	assert.Equal(t, 0.0, norm(v))
}

func TestEmbedder_CancelledContext(t *testing.T) {
	e, err := NewEmbedder(16)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.EmbedText(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEmbedder_InvalidDimensions(t *testing.T) {
	_, err := NewEmbedder(0)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(ai.NewConfig(ai.WithProvider(ai.ProviderHashing), ai.WithDimensions(32)))
	require.NoError(t, err)
	defer p.Close()

	v, err := p.Embedder().EmbedText(context.Background(), "kafka")
	require.NoError(t, err)
	assert.Len(t, v, 32)

	_, err = NewProvider(ai.DefaultConfig())
	assert.ErrorIs(t, err, ai.ErrUnknownProvider)
}
