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
	"errors"

	"github.com/poiesic/hybridkb/ai"
)

// Provider wraps an ai.AIProvider so its embedder is memoized.
type Provider struct {
	inner    ai.AIProvider
	embedder *Embedder
}

var _ ai.AIProvider = (*Provider)(nil)

// NewProvider caches up to size embeddings in front of inner's embedder.
func NewProvider(inner ai.AIProvider, size int, opts ...Option) (*Provider, error) {
	if inner == nil {
		return nil, errors.New("cache: inner provider is required")
	}
	embedder, err := NewEmbedder(inner.Embedder(), size, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{inner: inner, embedder: embedder}, nil
}

// Embedder returns the caching embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close releases the cache and closes the wrapped provider.
func (p *Provider) Close() error {
	p.embedder.Close()
	return p.inner.Close()
}
