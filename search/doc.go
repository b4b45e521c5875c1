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


// Package search provides the two retrieval channels and their fusion.
//
// VectorChannel ranks entities by embedding similarity to the query text.
// GraphChannel seeds from entities named in the query and walks weighted
// relationships to find related ones. Both implement Channel, so Fuse does
// not care how a score was produced: it merges the channels by entity ID and
// weights their scores per query domain.
//
// Channels never return errors. Anything that goes wrong inside a channel,
// including context expiry, degrades that channel to an empty result.
package search
