package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/hybridkb/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_RepeatedTextHitsCache(t *testing.T) {
	inner := mock.NewMockEmbedder()
	e, err := NewEmbedder(inner, 100)
	require.NoError(t, err)
	defer e.Close()
	ctx := context.Background()

	first, err := e.EmbedText(ctx, "circuit breaker")
	require.NoError(t, err)
	second, err := e.EmbedText(ctx, "circuit breaker")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.CallCount())
}

func TestEmbedder_ReturnsCopies(t *testing.T) {
	inner := mock.NewMockEmbedder()
	e, err := NewEmbedder(inner, 100)
	require.NoError(t, err)
	defer e.Close()
	ctx := context.Background()

	first, err := e.EmbedText(ctx, "x")
	require.NoError(t, err)
	first[0] = 42

	second, err := e.EmbedText(ctx, "x")
	require.NoError(t, err)
	assert.NotEqual(t, float32(42), second[0])
}

func TestEmbedder_BatchOnlyEmbedsMisses(t *testing.T) {
	inner := mock.NewMockEmbedder()
	var batched []string
	inner.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		batched = append(batched, texts...)
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.DeterministicVector(text, 8)
		}
		return out, nil
	}

	e, err := NewEmbedder(inner, 100)
	require.NoError(t, err)
	defer e.Close()
	ctx := context.Background()

	_, err = e.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	vecs, err := e.EmbedTexts(ctx, []string{"b", "c", "a"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, batched)
	require.Len(t, vecs, 3)
	assert.Equal(t, mock.DeterministicVector("c", 8), vecs[1])
	assert.Equal(t, mock.DeterministicVector("a", 8), vecs[2])
}

func TestEmbedder_ErrorsAreNotCached(t *testing.T) {
	boom := errors.New("boom")
	inner := mock.NewMockEmbedder().WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
		return nil, boom
	})
	e, err := NewEmbedder(inner, 10)
	require.NoError(t, err)
	defer e.Close()

	_, err = e.EmbedText(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	_, err = e.EmbedText(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, inner.CallCount())
}

func TestNewEmbedder_Validation(t *testing.T) {
	_, err := NewEmbedder(nil, 10)
	assert.Error(t, err)

	_, err = NewEmbedder(mock.NewMockEmbedder(), 0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}
