package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/hybridkb/ai/mock"
	"github.com/poiesic/hybridkb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVectorChannel(t *testing.T) {
	repo, index := newTestStore(t)
	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		ch, err := NewVectorChannel(embedder, index, repo, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.Equal(t, ChannelVector, ch.Name())
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		_, err := NewVectorChannel(embedder, index, repo, WithLogger(nil))
		require.NoError(t, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewVectorChannel(nil, index, repo)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewVectorChannel(embedder, nil, repo)
		assert.Equal(t, ErrVectorIndexRequired, err)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewVectorChannel(embedder, index, nil)
		assert.Equal(t, ErrEntityStoreRequired, err)
	})

	t.Run("invalid decrement", func(t *testing.T) {
		_, err := NewVectorChannel(embedder, index, repo, WithRankDecrement(2))
		assert.ErrorIs(t, err, ErrInvalidOption)
	})
}

func TestVectorChannel_RankDecay(t *testing.T) {
	repo, index := newTestStore(t)
	ctx := context.Background()

	a := addEntity(t, repo, "Alpha", core.DomainSoftware, "")
	b := addEntity(t, repo, "Beta", core.DomainSoftware, "")
	c := addEntity(t, repo, "Gamma", core.DomainSoftware, "")
	require.NoError(t, index.Upsert(ctx, a.Id, []float32{1, 0, 0}))
	require.NoError(t, index.Upsert(ctx, b.Id, []float32{0.8, 0.2, 0}))
	require.NoError(t, index.Upsert(ctx, c.Id, []float32{0, 1, 0}))
	// Indexed but not stored: skipped without consuming a rank
	require.NoError(t, index.Upsert(ctx, core.ID(1), []float32{0.9, 0.1, 0}))

	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	})
	ch, err := NewVectorChannel(embedder, index, repo)
	require.NoError(t, err)

	results := ch.Search(ctx, core.Query{Text: "alpha"}, 10)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, names(results))
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.9, results[1].Score, 1e-9)
	assert.InDelta(t, 0.8, results[2].Score, 1e-9)
	assert.Nil(t, results[0].Path)

	t.Run("topK bounds results", func(t *testing.T) {
		assert.Len(t, ch.Search(ctx, core.Query{Text: "alpha"}, 1), 1)
	})

	t.Run("non-positive topK", func(t *testing.T) {
		assert.Empty(t, ch.Search(ctx, core.Query{Text: "alpha"}, 0))
	})
}

func TestVectorChannel_ScoreFloor(t *testing.T) {
	repo, index := newTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"One", "Two", "Three"} {
		e := addEntity(t, repo, name, core.DomainGeneral, "")
		require.NoError(t, index.Upsert(ctx, e.Id, []float32{1, float32(i)}))
	}
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
		return []float32{1, 0}, nil
	})
	ch, err := NewVectorChannel(embedder, index, repo, WithRankDecrement(0.6))
	require.NoError(t, err)

	results := ch.Search(ctx, core.Query{Text: "x"}, 3)
	require.Len(t, results, 3)
	assert.InDelta(t, 0.4, results[1].Score, 1e-9)
	assert.Equal(t, 0.0, results[2].Score)
}

func TestVectorChannel_DegradesToEmpty(t *testing.T) {
	repo, index := newTestStore(t)
	ctx := context.Background()
	e := addEntity(t, repo, "Alpha", core.DomainSoftware, "")
	require.NoError(t, index.Upsert(ctx, e.Id, mock.DeterministicVector("alpha", mock.DefaultDimensions)))

	t.Run("embedder failure", func(t *testing.T) {
		embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
			return nil, errors.New("connection refused")
		})
		ch, err := NewVectorChannel(embedder, index, repo)
		require.NoError(t, err)

		results := ch.Search(ctx, core.Query{Text: "alpha"}, 5)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ch, err := NewVectorChannel(mock.NewMockEmbedder(), index, repo)
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.Empty(t, ch.Search(cctx, core.Query{Text: "alpha"}, 5))
	})
}
