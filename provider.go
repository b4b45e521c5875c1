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


package hybridkb

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/hybridkb/ai"
	"github.com/poiesic/hybridkb/ai/cache"
	"github.com/poiesic/hybridkb/ai/hashing"
	"github.com/poiesic/hybridkb/ai/openai"
)

// NewProvider builds the embedding provider named by config.Provider and,
// when config.CacheSize > 0, memoizes it.
func NewProvider(config *ai.Config, logger *slog.Logger) (ai.AIProvider, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	config.Normalize()

	var (
		provider ai.AIProvider
		err      error
	)
	switch config.Provider {
	case ai.ProviderOpenAI:
		provider, err = openai.NewProvider(config)
	case ai.ProviderHashing:
		provider, err = hashing.NewProvider(config)
	default:
		return nil, fmt.Errorf("%w: %q", ai.ErrUnknownProvider, config.Provider)
	}
	if err != nil {
		return nil, err
	}

	if config.CacheSize <= 0 {
		return provider, nil
	}
	cached, err := cache.NewProvider(provider, config.CacheSize, cache.WithLogger(logger))
	if err != nil {
		provider.Close()
		return nil, err
	}
	return cached, nil
}
