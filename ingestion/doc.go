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


// Package ingestion loads structured knowledge entities into storage.
//
// Entities arrive already structured, typically from YAML knowledge files
// (see KnowledgeFile). The Pipeline writes them to the entity repository,
// then embeds "name: description" text for each entity in batches on a
// worker pool and upserts the vectors into the nearest-neighbour index.
// Embedding requests are retried under a reembed.RetryPolicy and index
// writes that conflict with a concurrent batch are retried until they land.
//
// Relationship targets are referenced by name and resolved with
// core.EntityID, so files may reference entities defined elsewhere.
package ingestion
