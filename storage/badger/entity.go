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


package badger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/storage"
)

// EntityRepository implements storage.EntityRepository using BadgerDB.
type EntityRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.EntityRepository = (*EntityRepository)(nil)

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(backend *Backend) (*EntityRepository, error) {
	return &EntityRepository{
		backend: backend,
		logger:  backend.logger.With("repository", "entity"),
	}, nil
}

// Close releases resources. EntityRepository has no resources to release.
func (r *EntityRepository) Close() error {
	return nil
}

// AddEntities adds or replaces entities.
func (r *EntityRepository) AddEntities(ctx context.Context, entities ...*core.KnowledgeEntity) ([]*core.KnowledgeEntity, error) {
	for _, entity := range entities {
		if err := core.ValidateEntity(entity); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, entity := range entities {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Use name-derived ID if not set
			if entity.Id == 0 {
				entity.Id = core.EntityID(entity.Name)
			}

			key := makeEntityKey(entity.Id)
			old, err := readEntity(tx, key)
			if err != nil {
				return err
			}
			entity.InsertedAt = now
			if old != nil {
				entity.InsertedAt = old.InsertedAt
				if err := tx.Delete(makeEntityNameKey(old.Name, old.Id)); err != nil {
					return err
				}
			}
			entity.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalEntity(entity)); err != nil {
				return err
			}
			if err := tx.Set(makeEntityNameKey(entity.Name, entity.Id), nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("added entities", "count", len(entities))
	return entities, nil
}

// UpdateEntities updates existing entities.
func (r *EntityRepository) UpdateEntities(ctx context.Context, entities ...*core.KnowledgeEntity) ([]*core.KnowledgeEntity, error) {
	for _, entity := range entities {
		if err := core.ValidateEntity(entity); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entity := range entities {
			key := makeEntityKey(entity.Id)

			// Read old entity to detect name changes
			old, err := readEntity(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			entity.InsertedAt = old.InsertedAt
			entity.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalEntity(entity)); err != nil {
				return err
			}

			if old.Name != entity.Name {
				if err := tx.Delete(makeEntityNameKey(old.Name, old.Id)); err != nil {
					return err
				}
				if err := tx.Set(makeEntityNameKey(entity.Name, entity.Id), nil); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// DeleteEntities removes entities by their IDs.
func (r *EntityRepository) DeleteEntities(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeEntityKey(id)

			entity, err := readEntity(tx, key)
			if err != nil {
				return err
			}
			if entity == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeEntityNameKey(entity.Name, entity.Id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetByID retrieves a single entity by ID.
func (r *EntityRepository) GetByID(ctx context.Context, id core.ID) (*core.KnowledgeEntity, error) {
	var result *core.KnowledgeEntity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntity(tx, makeEntityKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetEntities retrieves multiple entities by their IDs.
func (r *EntityRepository) GetEntities(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeEntity, error) {
	var result []*core.KnowledgeEntity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			entity, err := readEntity(tx, makeEntityKey(id))
			if err != nil {
				return err
			}
			if entity != nil {
				result = append(result, entity)
			}
		}
		return nil
	}, false)
	return result, err
}

// FindByNameSubstring scans the name index for names containing text.
// Blank text matches nothing.
func (r *EntityRepository) FindByNameSubstring(ctx context.Context, text string) ([]*core.KnowledgeEntity, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil, nil
	}

	var result []*core.KnowledgeEntity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Name index keys sort by lowercase name, then ID
		var ids []core.ID
		err := r.backend.scanPrefix(ctx, tx, []byte(entityNamePrefix), false, func(item *badger.Item) error {
			name, id, ok := parseEntityNameKey(item.Key())
			if ok && strings.Contains(name, needle) {
				ids = append(ids, id)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, id := range ids {
			entity, err := readEntity(tx, makeEntityKey(id))
			if err != nil {
				return err
			}
			if entity != nil {
				result = append(result, entity)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetOutgoingRelationships returns the entity's edges heavier than minWeight.
func (r *EntityRepository) GetOutgoingRelationships(ctx context.Context, id core.ID, minWeight float64, limit int) ([]core.EntityRelationship, error) {
	entity, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var result []core.EntityRelationship
	for _, rel := range entity.Relationships {
		if rel.Weight > minWeight {
			result = append(result, rel)
		}
	}
	// Stable keeps stored order for equal weights
	slices.SortStableFunc(result, func(a, b core.EntityRelationship) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		default:
			return 0
		}
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ForEachEntity calls fn for every stored entity in ID order.
func (r *EntityRepository) ForEachEntity(ctx context.Context, fn func(*core.KnowledgeEntity) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		return r.backend.scanPrefix(ctx, tx, []byte(entityPrefix), true, func(item *badger.Item) error {
			var entity *core.KnowledgeEntity
			err := item.Value(func(val []byte) error {
				var err error
				entity, err = storage.UnmarshalEntity(val)
				return err
			})
			if err != nil {
				return err
			}
			return fn(entity)
		})
	}, false)
}

// CountEntities returns the number of stored entities.
func (r *EntityRepository) CountEntities(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.backend.scanPrefix(ctx, tx, []byte(entityPrefix), false, func(item *badger.Item) error {
			count++
			return nil
		})
	}, false)
	return count, err
}

// readEntity reads an entity from the transaction.
// Returns nil without error when the key is absent.
func readEntity(tx *badger.Txn, key []byte) (*core.KnowledgeEntity, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entity *core.KnowledgeEntity
	err = item.Value(func(val []byte) error {
		var err error
		entity, err = storage.UnmarshalEntity(val)
		return err
	})
	return entity, err
}
