package search

import (
	"context"
	"testing"

	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/storage"
	"github.com/poiesic/hybridkb/storage/badger"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (storage.EntityRepository, storage.VectorIndex) {
	t.Helper()
	repo, index, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo, index
}

func link(target string, weight float64) core.EntityRelationship {
	return core.EntityRelationship{TargetId: core.EntityID(target), Type: "related_to", Weight: weight}
}

func addEntity(t *testing.T, repo storage.EntityRepository, name string, domain core.Domain, description string, rels ...core.EntityRelationship) *core.KnowledgeEntity {
	t.Helper()
	added, err := repo.AddEntities(context.Background(), &core.KnowledgeEntity{
		Name:          name,
		Type:          core.EntityTypeConcept,
		Domain:        domain,
		Description:   description,
		Relationships: rels,
	})
	require.NoError(t, err)
	return added[0]
}

func names(results []core.ChannelResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Entity.Name)
	}
	return out
}
