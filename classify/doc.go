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


// Package classify assigns a domain, complexity, intent and response
// strategy to raw query text.
//
// Classification is a flat rule table over static keyword sets. Phrases are
// matched as whole words against the lowercased, punctuation-trimmed token
// stream, so "vs" matches "REST vs. GraphQL" but not "canvas".
//
//	q := classify.Classify("what is EURUSD")
//	// q.Domain == core.DomainTrading
//	// q.Strategy == core.StrategyGraph
package classify
