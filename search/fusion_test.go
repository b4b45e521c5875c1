package search

import (
	"fmt"
	"testing"

	"github.com/poiesic/hybridkb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(id core.ID) *core.KnowledgeEntity {
	return &core.KnowledgeEntity{Id: id, Name: fmt.Sprintf("entity-%d", id)}
}

func TestDomainWeights_SumToOne(t *testing.T) {
	for domain, w := range DomainWeights {
		assert.Equal(t, 1.0, w.Vector+w.Graph, string(domain))
	}
	assert.Equal(t, 1.0, DefaultWeights.Vector+DefaultWeights.Graph)
	assert.Equal(t, DefaultWeights, WeightsFor(core.DomainCross))
	assert.Equal(t, DefaultWeights, WeightsFor(core.DomainGeneral))
}

func TestFuse_SharedEntity(t *testing.T) {
	e := fixture(7)
	vector := []core.ChannelResult{{Entity: e, Score: 0.9}}
	graph := []core.ChannelResult{{Entity: e, Score: 0.8, Path: []core.ID{3, 7}}}

	fused := Fuse(vector, graph, core.Query{Domain: core.DomainSoftware})
	require.Len(t, fused, 1)
	assert.InDelta(t, 0.87, fused[0].CombinedScore, 1e-12)
	assert.Equal(t, 0.9, fused[0].VectorScore)
	assert.Equal(t, 0.8, fused[0].GraphScore)
	assert.Equal(t, []core.ID{3, 7}, fused[0].Path)
}

func TestFuse_WeightsPerDomain(t *testing.T) {
	vOnly := fixture(1)
	gOnly := fixture(2)
	vector := []core.ChannelResult{{Entity: vOnly, Score: 1}}
	graph := []core.ChannelResult{{Entity: gOnly, Score: 1}}

	tests := []struct {
		domain core.Domain
		first  core.ID
		v, g   float64
	}{
		{core.DomainSoftware, 1, 0.7, 0.3},
		{core.DomainTrading, 2, 0.4, 0.6},
		{core.DomainArchitecture, 1, 0.5, 0.5}, // tie broken by ID
		{core.DomainCross, 1, 0.6, 0.4},
		{core.DomainGeneral, 1, 0.6, 0.4},
	}

	for _, tt := range tests {
		t.Run(string(tt.domain), func(t *testing.T) {
			fused := Fuse(vector, graph, core.Query{Domain: tt.domain})
			require.Len(t, fused, 2)
			assert.Equal(t, tt.first, fused[0].Entity.Id)

			byID := map[core.ID]core.FusedResult{}
			for _, f := range fused {
				byID[f.Entity.Id] = f
			}
			assert.Equal(t, tt.v, byID[1].CombinedScore)
			assert.Equal(t, tt.g, byID[2].CombinedScore)
			assert.Equal(t, 0.0, byID[1].GraphScore)
			assert.Equal(t, 0.0, byID[2].VectorScore)
		})
	}
}

func TestFuse_OrderingAndCap(t *testing.T) {
	var vector, graph []core.ChannelResult
	for i := 1; i <= 12; i++ {
		vector = append(vector, core.ChannelResult{Entity: fixture(core.ID(i)), Score: 1 - float64(i-1)*0.05})
	}
	for i := 20; i > 14; i-- {
		graph = append(graph, core.ChannelResult{Entity: fixture(core.ID(i)), Score: 0.8})
	}

	query := core.Query{Domain: core.DomainGeneral}
	fused := Fuse(vector, graph, query)

	require.Len(t, fused, MaxFusedResults)
	for i := 1; i < len(fused); i++ {
		prev, cur := fused[i-1], fused[i]
		assert.GreaterOrEqual(t, prev.CombinedScore, cur.CombinedScore)
		if prev.CombinedScore == cur.CombinedScore {
			assert.Less(t, prev.Entity.Id, cur.Entity.Id)
		}
	}
	for _, f := range fused {
		assert.GreaterOrEqual(t, f.CombinedScore, 0.0)
		assert.LessOrEqual(t, f.CombinedScore, 1.0)
	}
}

func TestFuse_Idempotent(t *testing.T) {
	vector := []core.ChannelResult{
		{Entity: fixture(5), Score: 0.5},
		{Entity: fixture(3), Score: 0.5},
		{Entity: fixture(9), Score: 1},
	}
	graph := []core.ChannelResult{
		{Entity: fixture(3), Score: 0.8, Path: []core.ID{1, 3}},
		{Entity: fixture(4), Score: 0.8, Path: []core.ID{1, 4}},
	}
	query := core.Query{Domain: core.DomainTrading}

	first := Fuse(vector, graph, query)
	second := Fuse(vector, graph, query)
	assert.Equal(t, first, second)

	// Inputs are left untouched
	assert.Equal(t, []core.ID{1, 3}, graph[0].Path)
	assert.Equal(t, 0.5, vector[0].Score)
}

func TestFuse_EmptyInputs(t *testing.T) {
	fused := Fuse(nil, nil, core.Query{})
	assert.NotNil(t, fused)
	assert.Empty(t, fused)

	fused = Fuse([]core.ChannelResult{{Entity: nil, Score: 1}}, nil, core.Query{})
	assert.Empty(t, fused)
}
