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


// Package ai provides abstractions for the embedding services used by hybridkb.
//
// The vector retrieval channel and the ingestion pipeline depend on the
// Embedder interface rather than on a concrete model client, so the same code
// runs against a hosted model, an offline hashing embedder, or a test double.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible embedding APIs via langchaingo
//   - ai/hashing: offline feature-hashing embedder, no network required
//   - ai/cache: memoizing decorator for any Embedder
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, hashing.NewEmbedder, etc.) return
// interface types. Test utility constructors (mock.NewMockEmbedder) return
// concrete types so tests can inject behavior and inspect call counts.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//	mockEmbed := mock.NewMockEmbedder()          // returns *mock.MockEmbedder
package ai
