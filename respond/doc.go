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


// Package respond turns a classified query and its fused results into a
// structured response.
//
// The query's strategy selects one of five builders:
//
//   - deterministic-retrieval answers from the single best match
//   - graph-reasoning explains a primary entity and up to three related ones
//   - hybrid-analysis lists every match as a comparison
//   - generative-synthesis joins every match into an unverified narrative
//   - fallback handles unrecognized strategies with a low fixed confidence
//
// When there are no results every strategy returns NoResults.
package respond
