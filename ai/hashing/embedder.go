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


package hashing

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/poiesic/hybridkb/ai"
)

// ErrInvalidDimensions is returned when the vector size is not positive.
var ErrInvalidDimensions = errors.New("dimensions must be positive")

const (
	wordWeight    = 1.0
	trigramWeight = 0.5
)

// Embedder implements ai.Embedder with signed feature hashing.
// Words and their character trigrams are hashed into a fixed number of
// buckets and the result is scaled to unit length. Vectors are deterministic
// and need no model or network access.
type Embedder struct {
	dims   int
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
		e.logger = logger.With("component", "hashing-embedder")
		return nil
	}
}

// NewEmbedder creates an embedder producing vectors of dims components.
func NewEmbedder(dims int, opts ...Option) (*Embedder, error) {
	if dims <= 0 {
		return nil, ErrInvalidDimensions
	}
	e := &Embedder{
		dims:   dims,
		logger: slog.Default().With("component", "hashing-embedder"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int {
	return e.dims
}

// EmbedText hashes text into a unit vector. Text without any word
// characters yields the zero vector.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

// EmbedTexts hashes each text in order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("hashing texts", "count", len(texts))
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *Embedder) embed(text string) []float32 {
	acc := make([]float64, e.dims)
	for _, word := range words(text) {
		e.add(acc, "w:"+word, wordWeight)
		padded := "^" + word + "$"
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			e.add(acc, "t:"+string(runes[i:i+3]), trigramWeight)
		}
	}

	var sum float64
	for _, v := range acc {
		sum += v * v
	}
	vector := make([]float32, e.dims)
	if sum == 0 {
		return vector
	}
	norm := math.Sqrt(sum)
	for i, v := range acc {
		vector[i] = float32(v / norm)
	}
	return vector
}

// add hashes a feature into its bucket. The top bit of the hash picks the
// sign so collisions tend to cancel rather than pile up.
func (e *Embedder) add(acc []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	bucket := h % uint64(e.dims)
	if h>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
