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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hybridkb/ai"
	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/reembed"
	"github.com/poiesic/hybridkb/storage"
)

// DefaultBatchSize is the number of entities embedded per request.
const DefaultBatchSize = 32

// Pipeline loads knowledge entities into storage and indexes their embeddings.
// Embedding batches run concurrently on a worker pool.
type Pipeline struct {
	repository    storage.EntityRepository
	index         storage.VectorIndex
	embeddingPool *ants.Pool
	embeddingProc processor
	batchSize     int
	embedRetry    reembed.RetryPolicy
	progress      io.Writer
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithBatchSize sets how many entities are embedded per request.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithRetryPolicy sets how failed embedding requests are retried.
// Default is reembed.EmbeddingRetryPolicy().
func WithRetryPolicy(policy reembed.RetryPolicy) Option {
	return func(p *Pipeline) error {
		if policy.MaxAttempts < 1 {
			return reembed.ErrInvalidMaxAttempts
		}
		p.embedRetry = policy
		return nil
	}
}

// WithProgress writes an embedding progress line to w as batches finish.
// Default is no progress output.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	repository storage.EntityRepository,
	index storage.VectorIndex,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrEntityRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository:    repository,
		index:         index,
		embeddingPool: embeddingPool,
		batchSize:     DefaultBatchSize,
		embedRetry:    reembed.EmbeddingRetryPolicy(),
		logger:        slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	embeddingProc, err := newEmbeddingProcessor(repository, index, provider.Embedder(), p.embedRetry, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// Result summarizes one ingestion run.
type Result struct {
	Stored   int // Entities written to the repository
	Embedded int // Entities embedded and indexed
	// UnresolvedTargets names relationship targets that exist neither in the
	// ingested set nor in the repository. Traversal skips such edges.
	UnresolvedTargets []string
}

// IngestFile loads a YAML knowledge file and ingests its entities.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*Result, error) {
	kf, err := ReadKnowledgeFile(path)
	if err != nil {
		return nil, err
	}
	entities, external, err := kf.ToEntities()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	result, err := p.Ingest(ctx, entities...)
	if err != nil {
		return result, err
	}
	result.UnresolvedTargets = p.unresolved(ctx, external)
	for _, name := range result.UnresolvedTargets {
		p.logger.Warn("relationship target not found", "target", name, "file", path)
	}
	return result, nil
}

// Ingest stores entities, then embeds and indexes them in batches on the
// worker pool. It returns once every batch has finished. Entities are stored
// even when embedding fails; the joined batch errors are returned and the
// store can be repaired with a re-embed.
func (p *Pipeline) Ingest(ctx context.Context, entities ...*core.KnowledgeEntity) (*Result, error) {
	result := &Result{}
	if len(entities) == 0 {
		return result, nil
	}

	added, err := p.repository.AddEntities(ctx, entities...)
	if err != nil {
		return result, err
	}
	result.Stored = len(added)

	ids := make([]core.ID, len(added))
	for i, entity := range added {
		ids[i] = entity.Id
	}

	tracker := reembed.NewProgressTracker(p.progress, "embedding", len(ids), p.batchSize)
	tracker.Start()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)
	for start := 0; start < len(ids); start += p.batchSize {
		batch := ids[start:min(start+p.batchSize, len(ids))]
		wg.Add(1)
		submitErr := p.embeddingPool.Submit(func() {
			defer wg.Done()
			n, err := p.embeddingProc.process(ctx, batch...)
			tracker.Done(n)
			tracker.Failed(len(batch) - n)
			mu.Lock()
			defer mu.Unlock()
			result.Embedded += n
			if err != nil {
				p.logger.Error("error processing embeddings", "err", err, "batch", len(batch))
				errs = append(errs, err)
			}
		})
		if submitErr != nil {
			wg.Done()
			tracker.Failed(len(batch))
			mu.Lock()
			errs = append(errs, fmt.Errorf("submitting embedding batch: %w", submitErr))
			mu.Unlock()
		}
	}
	wg.Wait()
	summary := tracker.Finish()

	p.logger.Info("ingested entities", "stored", result.Stored, "embedded", summary.Done, "failed", summary.Failed, "elapsed", summary.Elapsed)
	return result, errors.Join(errs...)
}

func (p *Pipeline) unresolved(ctx context.Context, names []string) []string {
	var missing []string
	for _, name := range names {
		if _, err := p.repository.GetByID(ctx, core.EntityID(name)); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
