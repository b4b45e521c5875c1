package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, 384, cfg.Dimensions)
	assert.Equal(t, 4096, cfg.CacheSize)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host and model", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://custom:8080/v1"),
			WithEmbeddingModel("text-embedding-3-small"),
			WithAPIKey("sk-test"),
		)

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	})

	t.Run("with hashing provider", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider(ProviderHashing),
			WithDimensions(128),
			WithCacheSize(0),
		)

		assert.Equal(t, ProviderHashing, cfg.Provider)
		assert.Equal(t, 128, cfg.Dimensions)
		assert.Equal(t, 0, cfg.CacheSize)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		provider string
		wantHost string
		wantProv string
	}{
		{name: "already has /v1", host: "http://localhost:11434/v1", provider: "openai", wantHost: "http://localhost:11434/v1", wantProv: "openai"},
		{name: "missing /v1", host: "http://localhost:11434", provider: "openai", wantHost: "http://localhost:11434/v1", wantProv: "openai"},
		{name: "has trailing slash", host: "http://localhost:11434/", provider: "openai", wantHost: "http://localhost:11434/v1", wantProv: "openai"},
		{name: "empty host", host: "", provider: "hashing", wantHost: "", wantProv: "hashing"},
		{name: "provider case and spaces", host: "", provider: " Hashing ", wantHost: "", wantProv: "hashing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host, Provider: tt.provider}

			cfg.Normalize()

			assert.Equal(t, tt.wantHost, cfg.EmbeddingHost)
			assert.Equal(t, tt.wantProv, cfg.Provider)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid openai config", func(t *testing.T) {
		cfg := &Config{
			Provider:       ProviderOpenAI,
			EmbeddingHost:  "http://localhost:11434",
			EmbeddingModel: "embeddinggemma",
		}

		require.NoError(t, cfg.Validate())
		// Should also normalize
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := &Config{Provider: ProviderOpenAI, EmbeddingModel: "embeddinggemma"}

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingHost")
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := &Config{Provider: ProviderOpenAI, EmbeddingHost: "http://localhost:11434/v1"}

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingModel")
	})

	t.Run("hashing needs dimensions", func(t *testing.T) {
		cfg := &Config{Provider: ProviderHashing}

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Dimensions")

		cfg.Dimensions = 64
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := &Config{Provider: "word2vec"}

		assert.ErrorIs(t, cfg.Validate(), ErrUnknownProvider)
	})

	t.Run("negative cache size", func(t *testing.T) {
		cfg := &Config{Provider: ProviderHashing, Dimensions: 64, CacheSize: -1}

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CacheSize")
	})
}

func TestConfigValidate_Integration(t *testing.T) {
	// Test that NewConfig produces a valid configuration
	require.NoError(t, NewConfig().Validate())
	require.NoError(t, NewConfig(WithProvider(ProviderHashing)).Validate())
}
