package respond

import (
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/hybridkb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id core.ID, score float64) core.FusedResult {
	return core.FusedResult{
		Entity: &core.KnowledgeEntity{
			Id:          id,
			Name:        fmt.Sprintf("Entity%d", id),
			Type:        core.EntityTypeConcept,
			Domain:      core.DomainSoftware,
			Description: fmt.Sprintf("description of entity %d", id),
		},
		CombinedScore: score,
	}
}

func fusedList(scores ...float64) []core.FusedResult {
	out := make([]core.FusedResult, len(scores))
	for i, s := range scores {
		out[i] = result(core.ID(i+1), s)
	}
	return out
}

func TestRespond_NoResults(t *testing.T) {
	strategies := []core.Strategy{
		core.StrategyDeterministic, core.StrategyGraph, core.StrategyHybrid,
		core.StrategyGenerative, core.Strategy("bogus"), "",
	}
	for _, s := range strategies {
		t.Run(string(s), func(t *testing.T) {
			resp := Respond(core.Query{Strategy: s}, nil)
			require.NotNil(t, resp)
			assert.Equal(t, 0.0, resp.Confidence)
			assert.Empty(t, resp.Entities)
			assert.Empty(t, resp.References)
			assert.NotNil(t, resp.Entities)
			assert.NotNil(t, resp.References)
			assert.NotEmpty(t, resp.Suggestions)
			assert.NotEmpty(t, resp.Answer)
		})
	}
	assert.Equal(t, core.StrategyFallback, NoResults(core.Query{}).Strategy)
	assert.Equal(t, core.StrategyFallback, Respond(core.Query{Strategy: "speculative"}, nil).Strategy)
	assert.Equal(t, core.StrategyGraph, NoResults(core.Query{Strategy: core.StrategyGraph}).Strategy)
}

func TestRespond_Deterministic(t *testing.T) {
	query := core.Query{Domain: core.DomainSoftware, Strategy: core.StrategyDeterministic, Intent: core.IntentUnderstand}
	resp := Respond(query, fusedList(0.87, 0.5))

	assert.Equal(t, core.StrategyDeterministic, resp.Strategy)
	assert.Equal(t, 0.87, resp.Confidence)
	assert.Equal(t, "Entity1: description of entity 1", resp.Answer)
	require.Len(t, resp.Entities, 1)
	require.Len(t, resp.References, 1)
	assert.Equal(t, core.ID(1), resp.References[0].EntityId)
	assert.Equal(t, 0.87, resp.References[0].Relevance)
	assert.Contains(t, resp.Suggestions, intentSuggestions[core.IntentUnderstand])
}

func TestRespond_GraphReasoning(t *testing.T) {
	query := core.Query{Domain: core.DomainTrading, Strategy: core.StrategyGraph}
	fused := fusedList(0.8, 0.7, 0.6, 0.5, 0.4)
	fused[0].Path = []core.ID{9, 1}

	resp := Respond(query, fused)

	assert.Equal(t, core.StrategyGraph, resp.Strategy)
	assert.Equal(t, 0.8, resp.Confidence)
	require.Len(t, resp.Entities, 4)
	assert.Len(t, resp.References, 4)
	require.Len(t, resp.ReasoningSteps, 4)
	assert.Equal(t, "Identified primary entity: Entity1", resp.ReasoningSteps[0])
	assert.Equal(t, "Related entities: Entity2, Entity3, Entity4", resp.ReasoningSteps[1])
	assert.Equal(t, "Reached through a 1-hop relationship path", resp.ReasoningSteps[2])
	assert.Equal(t, domainApproaches[core.DomainTrading], resp.ReasoningSteps[3])

	t.Run("primary only", func(t *testing.T) {
		resp := Respond(query, fusedList(0.4))
		assert.Len(t, resp.Entities, 1)
		assert.Equal(t, "No related entities were found", resp.ReasoningSteps[1])
	})
}

func TestRespond_HybridAnalysis(t *testing.T) {
	query := core.Query{Domain: core.DomainCross, Strategy: core.StrategyHybrid, Intent: core.IntentCompare}
	resp := Respond(query, fusedList(0.9, 0.5, 0.4))

	assert.Equal(t, core.StrategyHybrid, resp.Strategy)
	assert.InDelta(t, 0.6, resp.Confidence, 1e-12)
	assert.Len(t, resp.Entities, 3)
	assert.Len(t, resp.References, 3)
	assert.True(t, strings.HasPrefix(resp.Answer, "Comparison of matching entities:"))
	assert.Contains(t, resp.Answer, "3. Entity3")
}

func TestRespond_GenerativeSynthesis(t *testing.T) {
	query := core.Query{Domain: core.DomainArchitecture, Strategy: core.StrategyGenerative}
	resp := Respond(query, fusedList(0.99, 0.98))

	assert.Equal(t, core.StrategyGenerative, resp.Strategy)
	assert.Equal(t, GenerativeConfidence, resp.Confidence)
	assert.Len(t, resp.Entities, 2)
	assert.Contains(t, resp.Answer, "Entity1: description of entity 1")
	assert.Contains(t, resp.Answer, "Entity2: description of entity 2")
}

func TestRespond_Fallback(t *testing.T) {
	query := core.Query{Strategy: core.Strategy("telepathy")}
	resp := Respond(query, fusedList(0.9, 0.8, 0.7, 0.6))

	assert.Equal(t, core.StrategyFallback, resp.Strategy)
	assert.Equal(t, FallbackConfidence, resp.Confidence)
	assert.Len(t, resp.Entities, 3)
	assert.Len(t, resp.References, 3)
	assert.Equal(t, "Possibly relevant: Entity1, Entity2, Entity3.", resp.Answer)
	assert.NotEmpty(t, resp.Suggestions)
}

func TestExcerpt(t *testing.T) {
	short := "brief"
	assert.Equal(t, short, excerpt(short))

	long := strings.Repeat("é", 200)
	got := excerpt(long)
	assert.Equal(t, excerptRunes, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestConfidenceWithinBounds(t *testing.T) {
	fused := fusedList(1.4, -0.2)
	for _, s := range []core.Strategy{core.StrategyDeterministic, core.StrategyGraph, core.StrategyHybrid} {
		resp := Respond(core.Query{Strategy: s}, fused)
		assert.GreaterOrEqual(t, resp.Confidence, 0.0)
		assert.LessOrEqual(t, resp.Confidence, 1.0)
	}
}

func TestSuggestions(t *testing.T) {
	assert.Equal(t, []string{"Ask a more specific follow-up question."}, suggestions(core.Query{}))

	got := suggestions(core.Query{Domain: core.DomainSoftware, Intent: core.IntentDebug})
	assert.Equal(t, append(append([]string{}, domainSuggestions[core.DomainSoftware]...), intentSuggestions[core.IntentDebug]), got)
}
