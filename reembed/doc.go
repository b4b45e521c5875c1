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


// Package reembed regenerates entity embeddings with a new or updated
// embedding model.
//
// A run walks the entity store in batches, embeds each entity's text with
// retry and exponential backoff, normalizes the vectors to unit length for
// cosine search and rewrites both the stored entity and its index entry.
//
// RetryPolicy, ProgressTracker and NormalizeVector are also used by the
// ingestion pipeline when it embeds newly loaded entities.
package reembed
