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
	"fmt"

	"github.com/poiesic/hybridkb/ai"
)

// Provider implements ai.AIProvider around a hashing Embedder.
type Provider struct {
	embedder *Embedder
}

// NewProvider creates a hashing provider from config.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Provider != ai.ProviderHashing {
		return nil, fmt.Errorf("%w: hashing provider cannot serve %q", ai.ErrUnknownProvider, config.Provider)
	}
	embedder, err := NewEmbedder(config.Dimensions)
	if err != nil {
		return nil, err
	}
	return &Provider{embedder: embedder}, nil
}

// Embedder returns the hashing embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}
