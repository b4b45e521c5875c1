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
	"fmt"

	"github.com/poiesic/hybridkb/ai"
	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/storage"
)

// BatchProcessor re-embeds a batch of entities, stores the new vectors and
// refreshes the vector index.
type BatchProcessor struct {
	repo          storage.EntityRepository
	index         storage.VectorIndex
	embedder      ai.Embedder
	embedRetry    RetryPolicy
	conflictRetry RetryPolicy
}

// NewBatchProcessor creates a BatchProcessor. Embedding requests are
// retried under embedRetry; index writes retry conflicts under
// ConflictRetryPolicy.
func NewBatchProcessor(repo storage.EntityRepository, index storage.VectorIndex, embedder ai.Embedder, embedRetry RetryPolicy) *BatchProcessor {
	conflictRetry := ConflictRetryPolicy()
	conflictRetry.Logger = embedRetry.Logger
	return &BatchProcessor{
		repo:          repo,
		index:         index,
		embedder:      embedder,
		embedRetry:    embedRetry,
		conflictRetry: conflictRetry,
	}
}

// Process embeds the entities' text, normalizes the vectors and writes them
// to the repository and the index. An entity whose embedding cannot be
// normalized fails the whole batch before anything is written.
func (bp *BatchProcessor) Process(ctx context.Context, entities []*core.KnowledgeEntity) error {
	if len(entities) == 0 {
		return nil
	}

	texts := make([]string, len(entities))
	for i, entity := range entities {
		texts[i] = entity.EmbeddingText()
	}

	var embeddings [][]float32
	err := bp.embedRetry.Do(ctx, "embedding batch", func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return err
	}

	if len(embeddings) != len(entities) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(entities), len(embeddings))
	}

	for i, entity := range entities {
		vector, err := NormalizeVector(embeddings[i])
		if err != nil {
			return fmt.Errorf("entity %q: %w", entity.Name, err)
		}
		entity.Vector = vector
	}

	updated, err := bp.repo.UpdateEntities(ctx, entities...)
	if err != nil {
		return fmt.Errorf("failed to update entities: %w", err)
	}

	for _, entity := range updated {
		err := bp.conflictRetry.DoOnConflict(ctx, "indexing entity", func() error {
			return bp.index.Upsert(ctx, entity.Id, entity.Vector)
		})
		if err != nil {
			return fmt.Errorf("failed to index entity %q: %w", entity.Name, err)
		}
	}

	return nil
}
