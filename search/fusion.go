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


package search

import (
	"cmp"
	"slices"

	"github.com/poiesic/hybridkb/core"
)

// MaxFusedResults caps the length of Fuse's output.
const MaxFusedResults = 10

// Weights is a channel weight pair. Vector + Graph is always 1.0.
type Weights struct {
	Vector float64
	Graph  float64
}

// DefaultWeights apply to domains missing from DomainWeights.
var DefaultWeights = Weights{Vector: 0.6, Graph: 0.4}

// DomainWeights calibrates the channels per query domain.
var DomainWeights = map[core.Domain]Weights{
	core.DomainSoftware:     {Vector: 0.7, Graph: 0.3},
	core.DomainTrading:      {Vector: 0.4, Graph: 0.6},
	core.DomainArchitecture: {Vector: 0.5, Graph: 0.5},
}

// WeightsFor returns the weight pair for domain.
func WeightsFor(domain core.Domain) Weights {
	if w, ok := DomainWeights[domain]; ok {
		return w
	}
	return DefaultWeights
}

// Fuse merges the two channels' results into one ranked list.
//
// Entities are keyed by ID; an entity found by both channels yields a single
// entry carrying both scores and the graph path. Entries are ordered by
// combined score descending, then ID ascending, and capped at
// MaxFusedResults. Fuse has no side effects and the same inputs always give
// the same output.
func Fuse(vectorResults, graphResults []core.ChannelResult, query core.Query) []core.FusedResult {
	byID := make(map[core.ID]*core.FusedResult, len(vectorResults)+len(graphResults))
	order := make([]core.ID, 0, len(vectorResults)+len(graphResults))

	entry := func(entity *core.KnowledgeEntity) *core.FusedResult {
		if fr, ok := byID[entity.Id]; ok {
			return fr
		}
		fr := &core.FusedResult{Entity: entity}
		byID[entity.Id] = fr
		order = append(order, entity.Id)
		return fr
	}

	for _, r := range vectorResults {
		if r.Entity == nil {
			continue
		}
		fr := entry(r.Entity)
		fr.VectorScore = max(fr.VectorScore, r.Score)
	}
	for _, r := range graphResults {
		if r.Entity == nil {
			continue
		}
		fr := entry(r.Entity)
		if r.Score >= fr.GraphScore {
			fr.GraphScore = r.Score
			fr.Path = slices.Clone(r.Path)
		}
	}

	w := WeightsFor(query.Domain)
	fused := make([]core.FusedResult, 0, len(order))
	for _, id := range order {
		fr := byID[id]
		fr.CombinedScore = fr.VectorScore*w.Vector + fr.GraphScore*w.Graph
		fused = append(fused, *fr)
	}

	slices.SortFunc(fused, func(a, b core.FusedResult) int {
		if c := cmp.Compare(b.CombinedScore, a.CombinedScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Entity.Id, b.Entity.Id)
	})
	if len(fused) > MaxFusedResults {
		fused = fused[:MaxFusedResults]
	}
	return fused
}
