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
	"fmt"
	"log/slog"

	"github.com/poiesic/hybridkb/core"
)

// Channel names reported to monitors and metrics.
const (
	ChannelVector = "vector"
	ChannelGraph  = "graph"
)

// Channel is one independent retrieval mechanism.
//
// Search never fails: store, index and embedder errors and context expiry
// all yield an empty slice. Implementations must be safe for concurrent use.
type Channel interface {
	Name() string
	Search(ctx context.Context, query core.Query, topK int) []core.ChannelResult
}

// Defaults for channel options.
const (
	DefaultRankDecrement   = 0.1
	DefaultMaxDepth        = 2
	DefaultMinWeight       = 0.3
	DefaultMaxEdgesPerNode = 5
	DefaultGraphScore      = 0.8
)

// options holds the settings shared by channel constructors. Each channel
// reads only the fields it uses.
type options struct {
	logger          *slog.Logger
	rankDecrement   float64
	maxDepth        int
	minWeight       float64
	maxEdgesPerNode int
	relevanceScore  float64
}

func defaultOptions() options {
	return options{
		logger:          slog.Default(),
		rankDecrement:   DefaultRankDecrement,
		maxDepth:        DefaultMaxDepth,
		minWeight:       DefaultMinWeight,
		maxEdgesPerNode: DefaultMaxEdgesPerNode,
		relevanceScore:  DefaultGraphScore,
	}
}

// Option configures a channel.
type Option func(*options) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithRankDecrement sets how much each successive vector rank loses.
func WithRankDecrement(step float64) Option {
	return func(o *options) error {
		if step < 0 || step > 1 {
			return fmt.Errorf("%w: rank decrement %v", ErrInvalidOption, step)
		}
		o.rankDecrement = step
		return nil
	}
}

// WithMaxDepth bounds graph exploration. Depth 0 visits seeds only.
func WithMaxDepth(depth int) Option {
	return func(o *options) error {
		if depth < 0 {
			return fmt.Errorf("%w: max depth %d", ErrInvalidOption, depth)
		}
		o.maxDepth = depth
		return nil
	}
}

// WithMinWeight sets the exclusive lower bound on followed edge weights.
func WithMinWeight(weight float64) Option {
	return func(o *options) error {
		if weight < 0 || weight > 1 {
			return fmt.Errorf("%w: min weight %v", ErrInvalidOption, weight)
		}
		o.minWeight = weight
		return nil
	}
}

// WithMaxEdgesPerNode caps how many edges are followed from each node.
func WithMaxEdgesPerNode(limit int) Option {
	return func(o *options) error {
		if limit <= 0 {
			return fmt.Errorf("%w: max edges per node %d", ErrInvalidOption, limit)
		}
		o.maxEdgesPerNode = limit
		return nil
	}
}

// WithRelevanceScore sets the flat score given to every relevant graph hit.
func WithRelevanceScore(score float64) Option {
	return func(o *options) error {
		if score < 0 || score > 1 {
			return fmt.Errorf("%w: relevance score %v", ErrInvalidOption, score)
		}
		o.relevanceScore = score
		return nil
	}
}

func applyOptions(opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return o, err
		}
	}
	return o, nil
}
