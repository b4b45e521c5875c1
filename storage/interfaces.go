// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"context"

	"github.com/poiesic/hybridkb/core"
)

// EntityStore is the read-only view of the knowledge graph used at query time.
// Implementations must be thread-safe and support concurrent access.
type EntityStore interface {
	// GetByID retrieves a single entity by ID.
	// Returns ErrNotFound if the entity doesn't exist.
	GetByID(ctx context.Context, id core.ID) (*core.KnowledgeEntity, error)

	// FindByNameSubstring returns entities whose name contains text,
	// compared case-insensitively. Results are ordered by name, then ID.
	FindByNameSubstring(ctx context.Context, text string) ([]*core.KnowledgeEntity, error)

	// GetOutgoingRelationships returns relationships of the entity with a weight
	// strictly greater than minWeight, ordered by weight descending, up to limit
	// results. A limit <= 0 means no limit.
	// Returns ErrNotFound if the source entity doesn't exist.
	GetOutgoingRelationships(ctx context.Context, id core.ID, minWeight float64, limit int) ([]core.EntityRelationship, error)
}

// EntityRepository provides read-write operations for knowledge entities.
type EntityRepository interface {
	EntityStore

	// AddEntities adds or replaces entities.
	// Entities with ID=0 get core.EntityID(Name).
	// Sets InsertedAt and UpdatedAt.
	// Returns the entities with IDs and timestamps populated.
	AddEntities(ctx context.Context, entities ...*core.KnowledgeEntity) ([]*core.KnowledgeEntity, error)

	// UpdateEntities updates existing entities.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any entity doesn't exist.
	UpdateEntities(ctx context.Context, entities ...*core.KnowledgeEntity) ([]*core.KnowledgeEntity, error)

	// DeleteEntities removes entities by their IDs.
	// Relationships in other entities that point at them are left in place and
	// are skipped at traversal time.
	// Returns ErrNotFound if any entity doesn't exist.
	DeleteEntities(ctx context.Context, ids ...core.ID) error

	// GetEntities retrieves multiple entities by their IDs.
	// Returns only the entities that exist (no error for missing entities).
	GetEntities(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeEntity, error)

	// ForEachEntity calls fn for every stored entity in ID order.
	// Iteration stops at the first error returned by fn.
	ForEachEntity(ctx context.Context, fn func(*core.KnowledgeEntity) error) error

	// CountEntities returns the number of stored entities.
	CountEntities(ctx context.Context) (int, error)

	// Close releases resources held by the repository.
	Close() error
}

// Neighbor is a single nearest-neighbour hit.
type Neighbor struct {
	Id       core.ID
	Distance float64 // Cosine distance: 0 is identical, 2 is opposite
}

// VectorIndex is a nearest-neighbour index over entity embeddings.
type VectorIndex interface {
	// Search returns up to k entity IDs closest to vector, nearest first.
	// Ties are ordered by ID ascending.
	Search(ctx context.Context, vector []float32, k int) ([]Neighbor, error)

	// Upsert stores or replaces the vector for an entity.
	Upsert(ctx context.Context, id core.ID, vector []float32) error

	// Remove deletes the vector for an entity. Missing IDs are ignored.
	Remove(ctx context.Context, ids ...core.ID) error
}
