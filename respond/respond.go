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


package respond

import (
	"fmt"
	"strings"

	"github.com/poiesic/hybridkb/core"
)

// Fixed confidences for branches that do not derive one from scores.
const (
	GenerativeConfidence = 0.5
	FallbackConfidence   = 0.3
)

const (
	maxRelated       = 3
	maxFallbackItems = 3
	excerptRunes     = 160
)

// Respond builds the response for query from the fused results.
// It never fails: no results yield NoResults, and an unrecognized strategy
// is answered by the fallback branch.
func Respond(query core.Query, fused []core.FusedResult) *core.StructuredResponse {
	if len(fused) == 0 {
		return NoResults(query)
	}

	switch query.Strategy {
	case core.StrategyDeterministic:
		return deterministic(query, fused)
	case core.StrategyGraph:
		return graphReasoning(query, fused)
	case core.StrategyHybrid:
		return hybridAnalysis(query, fused)
	case core.StrategyGenerative:
		return generativeSynthesis(query, fused)
	default:
		return fallback(query, fused)
	}
}

// NoResults is the fixed response for a query nothing matched.
func NoResults(query core.Query) *core.StructuredResponse {
	strategy := query.Strategy
	switch strategy {
	case core.StrategyDeterministic, core.StrategyGraph, core.StrategyHybrid,
		core.StrategyGenerative, core.StrategyFallback:
	default:
		strategy = core.StrategyFallback
	}
	return &core.StructuredResponse{
		Answer:         "No matching knowledge was found for this query.",
		Strategy:       strategy,
		Confidence:     0,
		Entities:       []*core.KnowledgeEntity{},
		Reasoning:      "Neither similarity search nor graph traversal produced a candidate.",
		ReasoningSteps: []string{},
		References:     []core.Reference{},
		Suggestions: []string{
			"Rephrase the question using the names of specific concepts, patterns or technologies.",
			"Add domain context, for example the language, market or system involved.",
			"Break a broad question into narrower ones.",
		},
	}
}

func deterministic(query core.Query, fused []core.FusedResult) *core.StructuredResponse {
	top := fused[0]
	return &core.StructuredResponse{
		Answer:         describe(top.Entity),
		Strategy:       core.StrategyDeterministic,
		Confidence:     clamp(top.CombinedScore),
		Entities:       []*core.KnowledgeEntity{top.Entity},
		Reasoning:      fmt.Sprintf("Direct lookup: %q is the best match for the query.", top.Entity.Name),
		ReasoningSteps: []string{fmt.Sprintf("Matched %s (score %.2f)", top.Entity.Name, top.CombinedScore)},
		References:     []core.Reference{reference(top)},
		Suggestions:    suggestions(query),
	}
}

func graphReasoning(query core.Query, fused []core.FusedResult) *core.StructuredResponse {
	primary := fused[0]
	related := fused[1:min(len(fused), 1+maxRelated)]

	entities := []*core.KnowledgeEntity{primary.Entity}
	references := []core.Reference{reference(primary)}
	relatedNames := make([]string, 0, len(related))
	for _, r := range related {
		entities = append(entities, r.Entity)
		references = append(references, reference(r))
		relatedNames = append(relatedNames, r.Entity.Name)
	}

	steps := []string{fmt.Sprintf("Identified primary entity: %s", primary.Entity.Name)}
	if len(relatedNames) > 0 {
		steps = append(steps, fmt.Sprintf("Related entities: %s", strings.Join(relatedNames, ", ")))
	} else {
		steps = append(steps, "No related entities were found")
	}
	if len(primary.Path) > 1 {
		steps = append(steps, fmt.Sprintf("Reached through a %d-hop relationship path", len(primary.Path)-1))
	}
	steps = append(steps, domainApproach(query.Domain))

	var b strings.Builder
	b.WriteString(describe(primary.Entity))
	if len(relatedNames) > 0 {
		b.WriteString("\n\nRelated: ")
		b.WriteString(strings.Join(relatedNames, ", "))
		b.WriteString(".")
	}

	return &core.StructuredResponse{
		Answer:         b.String(),
		Strategy:       core.StrategyGraph,
		Confidence:     clamp(primary.CombinedScore),
		Entities:       entities,
		Reasoning:      fmt.Sprintf("Followed relationships from %s to %d related entities.", primary.Entity.Name, len(related)),
		ReasoningSteps: steps,
		References:     references,
		Suggestions:    suggestions(query),
	}
}

func hybridAnalysis(query core.Query, fused []core.FusedResult) *core.StructuredResponse {
	var b strings.Builder
	b.WriteString("Comparison of matching entities:\n")
	var total float64
	entities := make([]*core.KnowledgeEntity, 0, len(fused))
	references := make([]core.Reference, 0, len(fused))
	for i, r := range fused {
		fmt.Fprintf(&b, "%d. %s (%s, %s): %s\n", i+1, r.Entity.Name, r.Entity.Type, r.Entity.Domain, excerpt(r.Entity.Description))
		total += r.CombinedScore
		entities = append(entities, r.Entity)
		references = append(references, reference(r))
	}

	return &core.StructuredResponse{
		Answer:     strings.TrimRight(b.String(), "\n"),
		Strategy:   core.StrategyHybrid,
		Confidence: clamp(total / float64(len(fused))),
		Entities:   entities,
		Reasoning:  fmt.Sprintf("Combined similarity and relationship evidence across %d entities.", len(fused)),
		ReasoningSteps: []string{
			"Ranked candidates from similarity search and graph traversal",
			fmt.Sprintf("Compared %d candidates side by side", len(fused)),
		},
		References:  references,
		Suggestions: suggestions(query),
	}
}

func generativeSynthesis(query core.Query, fused []core.FusedResult) *core.StructuredResponse {
	sentences := make([]string, 0, len(fused))
	entities := make([]*core.KnowledgeEntity, 0, len(fused))
	references := make([]core.Reference, 0, len(fused))
	for _, r := range fused {
		sentences = append(sentences, describe(r.Entity))
		entities = append(entities, r.Entity)
		references = append(references, reference(r))
	}

	return &core.StructuredResponse{
		Answer:     "Synthesis of related knowledge: " + strings.Join(sentences, " "),
		Strategy:   core.StrategyGenerative,
		Confidence: GenerativeConfidence,
		Entities:   entities,
		Reasoning:  "Combined descriptions of all matching entities into a narrative. The synthesis is unverified.",
		ReasoningSteps: []string{
			fmt.Sprintf("Gathered %d entities", len(fused)),
			"Joined their descriptions in rank order",
			domainApproach(query.Domain),
		},
		References:  references,
		Suggestions: suggestions(query),
	}
}

func fallback(query core.Query, fused []core.FusedResult) *core.StructuredResponse {
	top := fused[:min(len(fused), maxFallbackItems)]
	entities := make([]*core.KnowledgeEntity, 0, len(top))
	references := make([]core.Reference, 0, len(top))
	names := make([]string, 0, len(top))
	for _, r := range top {
		entities = append(entities, r.Entity)
		references = append(references, reference(r))
		names = append(names, r.Entity.Name)
	}

	return &core.StructuredResponse{
		Answer:         "Possibly relevant: " + strings.Join(names, ", ") + ".",
		Strategy:       core.StrategyFallback,
		Confidence:     FallbackConfidence,
		Entities:       entities,
		Reasoning:      fmt.Sprintf("Strategy %q is not recognized; returning the strongest matches as supporting evidence.", query.Strategy),
		ReasoningSteps: []string{"Selected the top matches without a strategy-specific analysis"},
		References:     references,
		Suggestions: []string{
			"Ask about a specific concept, pattern or technology by name.",
			"State whether you want a definition, a comparison or a design recommendation.",
		},
	}
}

func describe(entity *core.KnowledgeEntity) string {
	if entity.Description == "" {
		return entity.Name + "."
	}
	return entity.Name + ": " + entity.Description
}

func reference(r core.FusedResult) core.Reference {
	return core.Reference{
		EntityId:  r.Entity.Id,
		Name:      r.Entity.Name,
		Relevance: r.CombinedScore,
		Excerpt:   excerpt(r.Entity.Description),
	}
}

// excerpt truncates text to excerptRunes runes, marking the cut with an ellipsis.
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes-1]) + "…"
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
