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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/hybridkb"
	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/engine"
	"github.com/poiesic/hybridkb/ingestion"
	"github.com/poiesic/hybridkb/metrics"
	"github.com/poiesic/hybridkb/reembed"
	"github.com/poiesic/hybridkb/search"
	"github.com/poiesic/hybridkb/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

func loadCommand(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("at least one knowledge file is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithPoolSize(c.Int("pool-size")),
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithProgress(c.App.ErrWriter),
	)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	for _, file := range files {
		result, err := pipeline.IngestFile(c.Context, file)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
		fmt.Fprintf(c.App.Writer, "%s: stored %d entities, embedded %d\n", file, result.Stored, result.Embedded)
		for _, target := range result.UnresolvedTargets {
			fmt.Fprintf(c.App.Writer, "  unresolved relationship target: %s\n", target)
		}
	}
	return nil
}

func newEngine(c *cli.Context, db *hybridkb.Database, opts ...engine.Option) (*engine.Engine, error) {
	channelOpts := []search.Option{search.WithMaxDepth(c.Int("max-depth"))}
	opts = append([]engine.Option{
		engine.WithChannelTimeout(c.Duration("timeout")),
		engine.WithTopK(c.Int("top-k")),
	}, opts...)
	return db.NewEngine(channelOpts, opts...)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []engine.Option
	if c.Bool("trace") {
		traceLogger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, engine.WithMonitor(&search.LogMonitor{Logger: traceLogger}))
	}

	eng, err := newEngine(c, db, opts...)
	if err != nil {
		return err
	}

	resp := eng.Answer(c.Context, question)
	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(server.NewAnswerResult(resp))
	}
	printResponse(c.App.Writer, resp)
	return nil
}

func printResponse(w io.Writer, resp *core.StructuredResponse) {
	fmt.Fprintln(w, resp.Answer)
	fmt.Fprintf(w, "\nstrategy: %s  confidence: %.2f\n", resp.Strategy, resp.Confidence)

	if len(resp.ReasoningSteps) > 0 {
		fmt.Fprintln(w, "\nreasoning:")
		for i, step := range resp.ReasoningSteps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}
	if len(resp.References) > 0 {
		fmt.Fprintln(w, "\nreferences:")
		for _, ref := range resp.References {
			fmt.Fprintf(w, "  - %s (%.2f)\n", ref.Name, ref.Relevance)
		}
	}
	if len(resp.Suggestions) > 0 {
		fmt.Fprintln(w, "\nsuggestions:")
		for _, s := range resp.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	progress := c.App.ErrWriter
	fmt.Fprintf(progress, "Database: %s\n", c.String("db"))
	fmt.Fprintf(progress, "Provider: %s\n", c.String("provider"))
	fmt.Fprintf(progress, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(progress)

	if err := db.NewReembedder(reembedConfig, progress).Run(c.Context); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	transport := strings.ToLower(c.String("transport"))
	if transport != "stdio" && transport != "sse" {
		return fmt.Errorf("invalid transport %q: must be stdio or sse", transport)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var recorder metrics.Recorder = metrics.Noop{}
	if addr := c.String("metrics-addr"); addr != "" {
		registry := prometheus.NewRegistry()
		prom, err := metrics.NewPrometheus(registry)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		recorder = prom
		go func() {
			if err := metrics.Serve(ctx, addr, registry, slog.Default()); err != nil {
				slog.Error("metrics server stopped", "err", err)
			}
		}()
	}

	eng, err := newEngine(c, db, engine.WithRecorder(recorder))
	if err != nil {
		return err
	}

	srv, err := server.New(eng,
		server.WithRecorder(recorder),
		server.WithEntityCounter(db.EntityRepository()),
		server.WithVersion(version),
	)
	if err != nil {
		return err
	}

	if transport == "sse" {
		err = srv.RunSSE(ctx, c.String("addr"), c.String("endpoint"))
	} else {
		err = srv.RunStdio(ctx)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
