package badger

import (
	"context"
	"slices"
	"testing"

	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.EntityRepository {
	t.Helper()
	repo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func newEntity(name string, rels ...core.EntityRelationship) *core.KnowledgeEntity {
	return &core.KnowledgeEntity{
		Name:          name,
		Type:          core.EntityTypeConcept,
		Domain:        core.DomainSoftware,
		Description:   name + " description",
		Relationships: rels,
	}
}

func edge(target string, weight float64) core.EntityRelationship {
	return core.EntityRelationship{TargetId: core.EntityID(target), Type: "relates_to", Weight: weight}
}

func TestEntityBasics(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddEntities(ctx, newEntity("Circuit Breaker"))
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, core.EntityID("Circuit Breaker"), added[0].Id)
	assert.False(t, added[0].InsertedAt.IsZero())
	assert.Equal(t, added[0].InsertedAt, added[0].UpdatedAt)

	got, err := repo.GetByID(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Circuit Breaker", got.Name)
	assert.Equal(t, core.DomainSoftware, got.Domain)

	count, err := repo.CountEntities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddEntities_Validation(t *testing.T) {
	repo := newTestRepo(t)

	bad := newEntity("Broken")
	bad.Domain = core.DomainCross
	_, err := repo.AddEntities(context.Background(), bad)
	assert.ErrorIs(t, err, core.ErrInvalidEntity)
}

func TestAddEntities_UpsertReplacesNameIndex(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.AddEntities(ctx, newEntity("Momentum"))
	require.NoError(t, err)
	id := first[0].Id
	insertedAt := first[0].InsertedAt

	renamed := newEntity("Momentum Strategy")
	renamed.Id = id
	_, err = repo.AddEntities(ctx, renamed)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Momentum Strategy", got.Name)
	assert.True(t, got.InsertedAt.Equal(insertedAt))

	found, err := repo.FindByNameSubstring(ctx, "strategy")
	require.NoError(t, err)
	require.Len(t, found, 1)

	count, err := repo.CountEntities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetByID(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateEntities(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddEntities(ctx, newEntity("Observer"))
	require.NoError(t, err)

	updated := *added[0]
	updated.Name = "Observer Pattern"
	updated.Type = core.EntityTypePattern
	_, err = repo.UpdateEntities(ctx, &updated)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Observer Pattern", got.Name)
	assert.Equal(t, core.EntityTypePattern, got.Type)

	found, err := repo.FindByNameSubstring(ctx, "pattern")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	t.Run("missing entity", func(t *testing.T) {
		missing := newEntity("Nowhere")
		missing.Id = core.ID(7)
		_, err := repo.UpdateEntities(ctx, missing)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDeleteEntities(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddEntities(ctx, newEntity("Kafka"), newEntity("Redis"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteEntities(ctx, added[0].Id))

	_, err = repo.GetByID(ctx, added[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	found, err := repo.FindByNameSubstring(ctx, "kafka")
	require.NoError(t, err)
	assert.Empty(t, found)

	err = repo.DeleteEntities(ctx, added[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetEntities_SkipsMissing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddEntities(ctx, newEntity("Alpha"), newEntity("Beta"))
	require.NoError(t, err)

	got, err := repo.GetEntities(ctx, added[0].Id, core.ID(999), added[1].Id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Beta", got[1].Name)
}

func TestFindByNameSubstring(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddEntities(ctx,
		newEntity("OrderBook"),
		newEntity("Order"),
		newEntity("Market Maker"),
		newEntity("reorder buffer"),
	)
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "case insensitive", text: "ORDER", want: []string{"Order", "OrderBook", "reorder buffer"}},
		{name: "inner match", text: "ket m", want: []string{"Market Maker"}},
		{name: "no match", text: "quantum", want: nil},
		{name: "blank text", text: "  ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByNameSubstring(ctx, tt.text)
			require.NoError(t, err)
			var names []string
			for _, e := range found {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestGetOutgoingRelationships(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddEntities(ctx, newEntity("Hub",
		edge("A", 0.3),
		edge("B", 0.9),
		edge("C", 0.5),
		edge("D", 0.9),
		edge("E", 0.31),
	))
	require.NoError(t, err)
	hub := added[0].Id

	t.Run("strict threshold and weight order", func(t *testing.T) {
		rels, err := repo.GetOutgoingRelationships(ctx, hub, 0.3, 0)
		require.NoError(t, err)
		require.Len(t, rels, 4)
		assert.Equal(t, core.EntityID("B"), rels[0].TargetId)
		assert.Equal(t, core.EntityID("D"), rels[1].TargetId)
		assert.Equal(t, core.EntityID("C"), rels[2].TargetId)
		assert.Equal(t, core.EntityID("E"), rels[3].TargetId)
	})

	t.Run("limit", func(t *testing.T) {
		rels, err := repo.GetOutgoingRelationships(ctx, hub, 0.3, 2)
		require.NoError(t, err)
		assert.Len(t, rels, 2)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := repo.GetOutgoingRelationships(ctx, core.ID(1), 0.3, 5)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestForEachEntity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddEntities(ctx, newEntity("One"), newEntity("Two"), newEntity("Three"))
	require.NoError(t, err)

	var ids []core.ID
	err = repo.ForEachEntity(ctx, func(e *core.KnowledgeEntity) error {
		ids = append(ids, e.Id)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.True(t, slices.IsSorted(ids))

	t.Run("stops on callback error", func(t *testing.T) {
		calls := 0
		err := repo.ForEachEntity(ctx, func(*core.KnowledgeEntity) error {
			calls++
			return storage.ErrInvalidQuery
		})
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
		assert.Equal(t, 1, calls)
	})
}
