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


package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poiesic/hybridkb/ai"
)

// ErrInvalidSize is returned when the cache capacity is not positive.
var ErrInvalidSize = errors.New("cache size must be positive")

// Embedder memoizes another ai.Embedder by exact text.
// Every cached vector has cost 1, so size bounds the number of entries.
// Returned vectors are copies and may be modified by callers.
type Embedder struct {
	inner  ai.Embedder
	cache  *ristretto.Cache[string, []float32]
	logger *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// Option configures an Embedder.
type Option func(*Embedder) error

// WithLogger sets the logger. A nil logger selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "embedding-cache")
		return nil
	}
}

// NewEmbedder wraps inner with a cache holding up to size vectors.
func NewEmbedder(inner ai.Embedder, size int, opts ...Option) (*Embedder, error) {
	if inner == nil {
		return nil, errors.New("cache: inner embedder is required")
	}
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters:        int64(size) * 10,
		MaxCost:            int64(size),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	e := &Embedder{
		inner:  inner,
		cache:  c,
		logger: slog.Default().With("component", "embedding-cache"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			c.Close()
			return nil, err
		}
	}
	return e, nil
}

// EmbedText returns the cached vector for text or computes and stores it.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if vector, ok := e.cache.Get(text); ok {
		return slices.Clone(vector), nil
	}

	vector, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	e.store(text, vector)
	return slices.Clone(vector), nil
}

// EmbedTexts serves hits from the cache and embeds the misses in one batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vector, ok := e.cache.Get(text); ok {
			result[i] = slices.Clone(vector)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return result, nil
	}
	e.logger.Debug("embedding cache misses", "hits", len(texts)-len(missing), "misses", len(missing))

	vectors, err := e.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("cache: inner embedder returned %d vectors for %d texts", len(vectors), len(missing))
	}
	for j, vector := range vectors {
		e.store(missing[j], vector)
		result[missingIdx[j]] = slices.Clone(vector)
	}
	return result, nil
}

// store saves a private copy and waits for the write buffer to drain so the
// entry is visible to the next lookup.
func (e *Embedder) store(text string, vector []float32) {
	if e.cache.Set(text, slices.Clone(vector), 1) {
		e.cache.Wait()
	}
}

// Close stops the cache's background goroutines.
func (e *Embedder) Close() {
	e.cache.Close()
}
