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


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/hybridkb"
	"github.com/poiesic/hybridkb/ai"
	"github.com/poiesic/hybridkb/engine"
	"github.com/poiesic/hybridkb/ingestion"
	"github.com/poiesic/hybridkb/search"
	"github.com/urfave/cli/v2"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	defaults := ai.DefaultConfig()

	return &cli.App{
		Name:    "hybridkb",
		Usage:   "Hybrid semantic and graph retrieval over a domain knowledge base",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"HYBRIDKB_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "./hybridkb_db",
				EnvVars: []string{"HYBRIDKB_DB"},
			},
			&cli.StringFlag{
				Name:    "provider",
				Usage:   "Embedding provider (openai, hashing)",
				Value:   defaults.Provider,
				EnvVars: []string{"HYBRIDKB_PROVIDER"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				Value:   defaults.EmbeddingHost,
				EnvVars: []string{"HYBRIDKB_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   defaults.EmbeddingModel,
				EnvVars: []string{"HYBRIDKB_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the embedding service",
				EnvVars: []string{"HYBRIDKB_API_KEY", "OPENAI_API_KEY"},
			},
			&cli.IntFlag{
				Name:    "dimensions",
				Usage:   "Vector size for the hashing provider",
				Value:   defaults.Dimensions,
				EnvVars: []string{"HYBRIDKB_DIMENSIONS"},
			},
			&cli.IntFlag{
				Name:    "cache-size",
				Usage:   "Number of embeddings to memoize (0 disables the cache)",
				Value:   defaults.CacheSize,
				EnvVars: []string{"HYBRIDKB_CACHE_SIZE"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "load",
				Usage:     "Load entities from YAML knowledge files",
				ArgsUsage: "FILE...",
				Action:    loadCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent embedding workers",
						Value: 2,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entities embedded per request",
						Value: ingestion.DefaultBatchSize,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the knowledge base",
				ArgsUsage: "QUESTION...",
				Action:    askCommand,
				Flags: append(engineFlags(),
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Log each retrieval stage",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the response as JSON",
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all entities with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entities to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entities",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the answer and health tools over MCP",
				Action: serveCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:    "transport",
						Usage:   "MCP transport (stdio, sse)",
						Value:   "stdio",
						EnvVars: []string{"HYBRIDKB_TRANSPORT"},
					},
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address for the SSE transport",
						Value:   "localhost:8080",
						EnvVars: []string{"HYBRIDKB_ADDR"},
					},
					&cli.StringFlag{
						Name:  "endpoint",
						Usage: "HTTP path of the SSE endpoint",
						Value: "/sse",
					},
					&cli.StringFlag{
						Name:    "metrics-addr",
						Usage:   "Listen address for Prometheus metrics (empty disables)",
						EnvVars: []string{"HYBRIDKB_METRICS_ADDR"},
					},
				),
			},
		},
	}
}

func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Per-channel search timeout",
			Value:   engine.DefaultChannelTimeout,
			EnvVars: []string{"HYBRIDKB_CHANNEL_TIMEOUT"},
		},
		&cli.IntFlag{
			Name:  "top-k",
			Usage: "Results requested from each retrieval channel",
			Value: engine.DefaultTopK,
		},
		&cli.IntFlag{
			Name:  "max-depth",
			Usage: "Maximum graph traversal depth",
			Value: search.DefaultMaxDepth,
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.String("provider")),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithDimensions(c.Int("dimensions")),
		ai.WithCacheSize(c.Int("cache-size")),
	)
}

func openDatabase(c *cli.Context) (*hybridkb.Database, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	config := aiConfigFromFlags(c)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := hybridkb.NewDatabase(dbPath, hybridkb.WithAIConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Logs go to stderr so stdout stays free for answers and the stdio transport
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
