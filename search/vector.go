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

	"github.com/poiesic/hybridkb/ai"
	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/storage"
)

// VectorChannel ranks entities by embedding similarity to the query text.
type VectorChannel struct {
	embedder      ai.Embedder
	index         storage.VectorIndex
	store         storage.EntityStore
	rankDecrement float64
	logger        *slog.Logger
}

var _ Channel = (*VectorChannel)(nil)

// NewVectorChannel creates a vector channel.
func NewVectorChannel(embedder ai.Embedder, index storage.VectorIndex, store storage.EntityStore, opts ...Option) (*VectorChannel, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if store == nil {
		return nil, ErrEntityStoreRequired
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &VectorChannel{
		embedder:      embedder,
		index:         index,
		store:         store,
		rankDecrement: o.rankDecrement,
		logger:        o.logger.With("component", "vector-channel"),
	}, nil
}

// Name returns ChannelVector.
func (c *VectorChannel) Name() string {
	return ChannelVector
}

// Search embeds the query text and returns up to topK nearest entities.
// Scores decay by rank over resolved entities: 1.0, 0.9, 0.8, ... floored at 0.
func (c *VectorChannel) Search(ctx context.Context, query core.Query, topK int) []core.ChannelResult {
	results := []core.ChannelResult{}
	if topK <= 0 {
		return results
	}

	vector, err := c.embedder.EmbedText(ctx, query.Text)
	if err != nil {
		c.logger.Warn("embedding query failed", "err", err)
		return results
	}

	neighbors, err := c.index.Search(ctx, vector, topK)
	if err != nil {
		c.logger.Warn("vector index search failed", "err", err)
		return results
	}

	for _, n := range neighbors {
		if ctx.Err() != nil {
			c.logger.Warn("vector search interrupted", "err", ctx.Err())
			return []core.ChannelResult{}
		}
		entity, err := c.store.GetByID(ctx, n.Id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.logger.Debug("skipping unresolvable neighbor", "id", n.Id)
			} else {
				c.logger.Warn("resolving neighbor failed", "id", n.Id, "err", err)
			}
			continue
		}
		score := 1 - float64(len(results))*c.rankDecrement
		if score < 0 {
			score = 0
		}
		results = append(results, core.ChannelResult{Entity: entity, Score: score})
	}
	return results
}
