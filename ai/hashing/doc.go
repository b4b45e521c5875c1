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


// Package hashing provides an offline ai.Embedder based on signed feature
// hashing of words and character trigrams.
//
// Texts that share words or word fragments land close together under cosine
// distance, which is enough for name and keyword heavy knowledge bases and
// for running the engine without a model server.
package hashing
