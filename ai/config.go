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


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Embedding provider names accepted by Config.Provider.
const (
	ProviderOpenAI  = "openai"
	ProviderHashing = "hashing"
)

// ErrUnknownProvider is returned when Config.Provider names no known provider.
var ErrUnknownProvider = errors.New("unknown embedding provider")

// Config holds configuration for AI service providers.
type Config struct {
	// Provider selects the embedding implementation: "openai" or "hashing".
	Provider string

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// APIKey is sent as the bearer token. Local OpenAI-compatible servers
	// usually need none.
	APIKey string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// Dimensions is the vector size produced by the hashing provider.
	// Ignored by the openai provider, whose model decides.
	Dimensions int

	// CacheSize is the number of embeddings memoized in front of the
	// provider. Zero disables caching.
	CacheSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the embedding provider name.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithAPIKey sets the bearer token for the embedding service.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithDimensions sets the hashing provider's vector size.
func WithDimensions(dims int) ConfigOption {
	return func(c *Config) {
		c.Dimensions = dims
	}
}

// WithCacheSize sets how many embeddings are memoized.
func WithCacheSize(size int) ConfigOption {
	return func(c *Config) {
		c.CacheSize = size
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible embedding service.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderOpenAI,
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "embeddinggemma",
		Dimensions:     384,
		CacheSize:      4096,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("http://localhost:11434"),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
//
// Example for offline use:
//
//	cfg := NewConfig(WithProvider(ProviderHashing), WithDimensions(256))
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It lowercases the provider name and adds the /v1 suffix to the host if
// missing, which is required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderOpenAI:
		if c.EmbeddingHost == "" {
			return errors.New("ai config: EmbeddingHost is required")
		}
		if c.EmbeddingModel == "" {
			return errors.New("ai config: EmbeddingModel is required")
		}
	case ProviderHashing:
		if c.Dimensions <= 0 {
			return errors.New("ai config: Dimensions must be positive")
		}
	default:
		return fmt.Errorf("ai config: %w: %q", ErrUnknownProvider, c.Provider)
	}
	if c.CacheSize < 0 {
		return errors.New("ai config: CacheSize cannot be negative")
	}
	return nil
}
