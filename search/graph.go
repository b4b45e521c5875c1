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
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/storage"
)

// GraphChannel finds entities reachable from entities named in the query.
//
// Seeds are the entities whose names contain a candidate name from the query.
// From each seed the channel walks outgoing relationships depth first, up to
// maxDepth hops, following at most maxEdgesPerNode edges heavier than
// minWeight per node. Every visited entity whose domain matches the query's
// and whose name or description mentions a query keyword becomes a result
// with the same flat score, whatever its depth.
type GraphChannel struct {
	store           storage.EntityStore
	maxDepth        int
	minWeight       float64
	maxEdgesPerNode int
	relevanceScore  float64
	logger          *slog.Logger
}

var _ Channel = (*GraphChannel)(nil)

// NewGraphChannel creates a graph channel.
func NewGraphChannel(store storage.EntityStore, opts ...Option) (*GraphChannel, error) {
	if store == nil {
		return nil, ErrEntityStoreRequired
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &GraphChannel{
		store:           store,
		maxDepth:        o.maxDepth,
		minWeight:       o.minWeight,
		maxEdgesPerNode: o.maxEdgesPerNode,
		relevanceScore:  o.relevanceScore,
		logger:          o.logger.With("component", "graph-channel"),
	}, nil
}

// Name returns ChannelGraph.
func (c *GraphChannel) Name() string {
	return ChannelGraph
}

// traversal is the state of one Search call. It is never shared between calls.
type traversal struct {
	ctx     context.Context
	query   core.Query
	topK    int
	visited map[core.ID]struct{}
	results []core.ChannelResult
}

func (t *traversal) full() bool {
	return len(t.results) >= t.topK
}

// Search returns up to topK relevant entities in discovery order.
func (c *GraphChannel) Search(ctx context.Context, query core.Query, topK int) []core.ChannelResult {
	if topK <= 0 {
		return []core.ChannelResult{}
	}

	seeds, err := c.findSeeds(ctx, query.CandidateEntityNames)
	if err != nil {
		c.logger.Warn("seed lookup failed", "err", err)
		return []core.ChannelResult{}
	}
	if len(seeds) == 0 {
		c.logger.Debug("no graph seeds", "names", query.CandidateEntityNames)
		return []core.ChannelResult{}
	}

	t := &traversal{
		ctx:     ctx,
		query:   query,
		topK:    topK,
		visited: make(map[core.ID]struct{}),
		results: []core.ChannelResult{},
	}
	for _, seed := range seeds {
		if t.full() {
			break
		}
		if err := c.visit(t, seed, []core.ID{seed.Id}, 0); err != nil {
			c.logger.Warn("graph traversal interrupted", "err", err)
			return []core.ChannelResult{}
		}
	}

	c.logger.Debug("graph search complete", "seeds", len(seeds), "visited", len(t.visited), "results", len(t.results))
	return t.results
}

// findSeeds resolves candidate names in order, dropping duplicate entities.
func (c *GraphChannel) findSeeds(ctx context.Context, names []string) ([]*core.KnowledgeEntity, error) {
	var seeds []*core.KnowledgeEntity
	seen := make(map[core.ID]struct{})
	for _, name := range names {
		matches, err := c.store.FindByNameSubstring(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if _, dup := seen[m.Id]; dup {
				continue
			}
			seen[m.Id] = struct{}{}
			seeds = append(seeds, m)
		}
	}
	return seeds, nil
}

// visit records entity if relevant and descends into its heaviest edges.
// Only context expiry is returned as an error; store failures for a single
// node end that branch.
func (c *GraphChannel) visit(t *traversal, entity *core.KnowledgeEntity, path []core.ID, depth int) error {
	if _, seen := t.visited[entity.Id]; seen {
		return nil
	}
	if err := t.ctx.Err(); err != nil {
		return err
	}
	t.visited[entity.Id] = struct{}{}

	if c.relevant(t.query, entity) {
		t.results = append(t.results, core.ChannelResult{
			Entity: entity,
			Score:  c.relevanceScore,
			Path:   slices.Clone(path),
		})
		if t.full() {
			return nil
		}
	}

	if depth >= c.maxDepth {
		return nil
	}

	rels, err := c.store.GetOutgoingRelationships(t.ctx, entity.Id, c.minWeight, c.maxEdgesPerNode)
	if err != nil {
		if ctxErr := t.ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn("reading relationships failed", "id", entity.Id, "err", err)
		return nil
	}

	for _, rel := range rels {
		if t.full() {
			return nil
		}
		if _, seen := t.visited[rel.TargetId]; seen {
			continue
		}
		target, err := c.store.GetByID(t.ctx, rel.TargetId)
		if err != nil {
			if ctxErr := t.ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, storage.ErrNotFound) {
				c.logger.Debug("skipping dangling relationship", "from", entity.Id, "to", rel.TargetId)
			} else {
				c.logger.Warn("resolving relationship target failed", "to", rel.TargetId, "err", err)
			}
			continue
		}
		if err := c.visit(t, target, append(path, target.Id), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (c *GraphChannel) relevant(query core.Query, entity *core.KnowledgeEntity) bool {
	if query.Domain != core.DomainCross && entity.Domain != query.Domain {
		return false
	}
	return query.HasKeywordIn(entity.Name + " " + entity.Description)
}
