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
	"io"
	"time"

	"github.com/poiesic/hybridkb/ai"
	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/storage"
)

// Config controls a re-embedding run.
type Config struct {
	// BatchSize is the number of entities to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of entities)
	ReportInterval int

	// MaxRetries is the number of attempts made per embedding request,
	// counting the first.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

func (c *Config) retryPolicy() RetryPolicy {
	policy := EmbeddingRetryPolicy()
	policy.MaxAttempts = c.MaxRetries
	policy.BaseDelay = c.RetryDelay
	if policy.MaxDelay < policy.BaseDelay {
		policy.MaxDelay = policy.BaseDelay
	}
	return policy
}

// DefaultConfig returns the default run configuration.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates every entity embedding, typically after the
// embedding model or its dimensionality changed.
type Reembedder struct {
	repo      storage.EntityRepository
	index     storage.VectorIndex
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *EntityIterator
}

// NewReembedder creates a Reembedder. Progress is written to progress.
func NewReembedder(repo storage.EntityRepository, index storage.VectorIndex, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		repo:      repo,
		index:     index,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, index, embedder, config.retryPolicy()),
		iterator:  NewEntityIterator(repo, config.BatchSize),
	}
}

// Run clears the vector index, then re-embeds all entities batch by batch.
// The index is cleared first because a new model may produce vectors of a
// different dimension, which the index refuses to mix. Searches made while
// Run is in progress see only the entities embedded so far.
func (r *Reembedder) Run(ctx context.Context) error {
	total, err := r.repo.CountEntities(ctx)
	if err != nil {
		return fmt.Errorf("failed to count entities: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No entities found in database (0 entities)\n")
		return nil
	}

	if err := r.clearIndex(ctx); err != nil {
		return err
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d entities (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, "reembed", total, r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, func(entities []*core.KnowledgeEntity) error {
		if err := r.processor.Process(ctx, entities); err != nil {
			tracker.Failed(len(entities))
			return fmt.Errorf("failed to process batch: %w", err)
		}
		tracker.Done(len(entities))
		return nil
	})
	summary := tracker.Finish()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.progress, "Reembedding complete. %s\n", summary)
	return nil
}

func (r *Reembedder) clearIndex(ctx context.Context) error {
	return r.iterator.ForEach(ctx, func(entities []*core.KnowledgeEntity) error {
		ids := make([]core.ID, len(entities))
		for i, entity := range entities {
			ids[i] = entity.Id
		}
		if err := r.index.Remove(ctx, ids...); err != nil {
			return fmt.Errorf("failed to clear vector index: %w", err)
		}
		return nil
	})
}
