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


// Package storage provides the storage abstraction layer for hybridkb.
//
// This package defines the boundary interfaces the retrieval engine consumes.
// The engine only ever reads through them; writes happen during ingestion and
// re-embedding.
//
// # Architecture
//
//   - EntityStore: read-only entity and relationship lookups used by the
//     graph and vector channels
//   - EntityRepository: EntityStore plus write operations
//   - VectorIndex: nearest-neighbour search over entity embeddings
//
// # Usage
//
// Open a BadgerDB-backed repository and index:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	repo := badger.NewEntityRepository(backend)
//	index := badger.NewVectorIndex(backend)
//
// Use in tests with in-memory storage:
//
//	repo, index, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access from
// multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support. Long scans check the context between items.
package storage
