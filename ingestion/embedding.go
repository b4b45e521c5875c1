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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/hybridkb/ai"
	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/reembed"
	"github.com/poiesic/hybridkb/storage"
)

type embeddingProcessor struct {
	repository    storage.EntityRepository
	index         storage.VectorIndex
	embedder      ai.Embedder
	embedRetry    reembed.RetryPolicy
	conflictRetry reembed.RetryPolicy
	logger        *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

func newEmbeddingProcessor(repository storage.EntityRepository, index storage.VectorIndex, embedder ai.Embedder, embedRetry reembed.RetryPolicy, logger *slog.Logger) (*embeddingProcessor, error) {
	if repository == nil {
		return nil, ErrEntityRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("processor", "embeddings")
	embedRetry.Logger = logger
	conflictRetry := reembed.ConflictRetryPolicy()
	conflictRetry.Logger = logger
	return &embeddingProcessor{
		repository:    repository,
		index:         index,
		embedder:      embedder,
		embedRetry:    embedRetry,
		conflictRetry: conflictRetry,
		logger:        logger,
	}, nil
}

// process embeds each entity's name and description, stores the unit-length
// vector on the entity and indexes it. Index writes that lose a race with
// another batch are retried. Returns the number of entities indexed.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) (int, error) {
	ep.logger.Debug("processing entities for embeddings", "entities", len(ids))

	slices.Sort(ids)

	entities, err := ep.repository.GetEntities(ctx, ids...)
	if err != nil {
		return 0, fmt.Errorf("retrieving entities: %w", err)
	}
	if len(entities) == 0 {
		return 0, nil
	}

	texts := make([]string, len(entities))
	for i, entity := range entities {
		texts[i] = entity.EmbeddingText()
	}

	var embeddings [][]float32
	err = ep.embedRetry.Do(ctx, "generating embeddings", func() error {
		var err error
		embeddings, err = ep.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return 0, err
	}
	if len(embeddings) != len(entities) {
		return 0, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(entities), len(embeddings))
	}

	for i, entity := range entities {
		vector, err := reembed.NormalizeVector(embeddings[i])
		if err != nil {
			return 0, fmt.Errorf("embedding entity %q: %w", entity.Name, err)
		}
		entity.Vector = vector
	}

	var updated []*core.KnowledgeEntity
	err = ep.conflictRetry.DoOnConflict(ctx, "updating entities", func() error {
		var err error
		updated, err = ep.repository.UpdateEntities(ctx, entities...)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("updating entities: %w", err)
	}

	indexed := 0
	for _, entity := range updated {
		err := ep.conflictRetry.DoOnConflict(ctx, "indexing entity", func() error {
			return ep.index.Upsert(ctx, entity.Id, entity.Vector)
		})
		if err != nil {
			return indexed, fmt.Errorf("indexing entity %q: %w", entity.Name, err)
		}
		indexed++
	}

	return indexed, nil
}
