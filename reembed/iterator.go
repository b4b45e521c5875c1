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


package reembed

import (
	"context"

	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/storage"
)

const (
	// DefaultBatchSize is the default number of entities handed to each batch.
	DefaultBatchSize = 100
)

// EntityIterator walks every stored entity in ID order, grouping them into
// fixed-size batches.
type EntityIterator struct {
	repo      storage.EntityRepository
	batchSize int
}

// NewEntityIterator creates an iterator. A batchSize <= 0 selects DefaultBatchSize.
func NewEntityIterator(repo storage.EntityRepository, batchSize int) *EntityIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &EntityIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn with successive batches. The final batch may be short.
// Iteration stops at the first error from fn or when ctx is done.
func (it *EntityIterator) ForEach(ctx context.Context, fn func([]*core.KnowledgeEntity) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make([]*core.KnowledgeEntity, 0, it.batchSize)
	err := it.repo.ForEachEntity(ctx, func(entity *core.KnowledgeEntity) error {
		batch = append(batch, entity)
		if len(batch) < it.batchSize {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		batch = make([]*core.KnowledgeEntity, 0, it.batchSize)
		return ctx.Err()
	})
	if err != nil {
		return err
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}
