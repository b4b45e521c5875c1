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


package hybridkb

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/hybridkb/ai"
	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/engine"
	"github.com/poiesic/hybridkb/ingestion"
	"github.com/poiesic/hybridkb/reembed"
	"github.com/poiesic/hybridkb/search"
	"github.com/poiesic/hybridkb/storage"
	"github.com/poiesic/hybridkb/storage/badger"
)

// Database bundles the entity store, the vector index and the embedding
// provider, and builds the components that work on them.
type Database struct {
	backend  *badger.Backend
	repo     storage.EntityRepository
	index    storage.VectorIndex
	provider ai.AIProvider
	logger   *slog.Logger
}

type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig selects and configures the embedding provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses an already constructed provider instead of building one
// from the AI config. The Database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory. The file path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger handed to the components the Database builds.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens (or creates) the database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	repo, err := badger.NewEntityRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	index, err := badger.NewVectorIndex(backend)
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = NewProvider(options.aiConfig, options.logger)
		if err != nil {
			repo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:  backend,
		repo:     repo,
		index:    index,
		provider: provider,
		logger:   options.logger,
	}, nil
}

// Close closes the provider, the repository and the backend.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.repo.Close(); err != nil {
		db.logger.Error("error closing entity repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) EntityRepository() storage.EntityRepository {
	return db.repo
}

func (db *Database) VectorIndex() storage.VectorIndex {
	return db.index
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// DeleteEntities removes entities from the store and their vectors from the index.
func (db *Database) DeleteEntities(ctx context.Context, ids ...core.ID) error {
	if err := db.repo.DeleteEntities(ctx, ids...); err != nil {
		return err
	}
	return db.index.Remove(ctx, ids...)
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewPipeline(db.repo, db.index, db.provider, opts...)
}

func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.repo, db.index, db.provider.Embedder(), config, progress)
}

// NewEngine builds a query engine over this database. channelOpts configure
// both retrieval channels.
func (db *Database) NewEngine(channelOpts []search.Option, opts ...engine.Option) (*engine.Engine, error) {
	channelOpts = append([]search.Option{search.WithLogger(db.logger)}, channelOpts...)

	vector, err := search.NewVectorChannel(db.provider.Embedder(), db.index, db.repo, channelOpts...)
	if err != nil {
		return nil, err
	}
	graph, err := search.NewGraphChannel(db.repo, channelOpts...)
	if err != nil {
		return nil, err
	}

	opts = append([]engine.Option{engine.WithLogger(db.logger)}, opts...)
	eng, err := engine.New(vector, graph, opts...)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	return eng, nil
}
