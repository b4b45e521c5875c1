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


package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/hybridkb/classify"
	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/metrics"
	"github.com/poiesic/hybridkb/respond"
	"github.com/poiesic/hybridkb/search"
	"golang.org/x/sync/errgroup"
)

// Defaults for Engine options.
const (
	DefaultChannelTimeout = 30 * time.Millisecond
	DefaultTopK           = 10
)

// ClassifierFunc turns raw text into a classified query.
type ClassifierFunc func(rawText string) core.Query

// ResponderFunc builds a response from a query and its fused results.
type ResponderFunc func(query core.Query, fused []core.FusedResult) *core.StructuredResponse

// Engine answers free-text queries: it classifies the text, runs both
// retrieval channels concurrently, fuses their results and builds a response.
// An Engine is safe for concurrent use.
type Engine struct {
	vector         search.Channel
	graph          search.Channel
	classify       ClassifierFunc
	respond        ResponderFunc
	channelTimeout time.Duration
	topK           int
	recorder       metrics.Recorder
	monitor        search.SearchMonitor
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithChannelTimeout bounds each channel's search.
func WithChannelTimeout(timeout time.Duration) Option {
	return func(e *Engine) error {
		if timeout <= 0 {
			return ErrInvalidTimeout
		}
		e.channelTimeout = timeout
		return nil
	}
}

// WithTopK sets how many results each channel may return.
func WithTopK(topK int) Option {
	return func(e *Engine) error {
		if topK <= 0 {
			return ErrInvalidTopK
		}
		e.topK = topK
		return nil
	}
}

// WithRecorder sets the metrics recorder. Nil selects metrics.Noop.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(e *Engine) error {
		if recorder == nil {
			recorder = metrics.Noop{}
		}
		e.recorder = recorder
		return nil
	}
}

// WithMonitor sets a monitor that observes every query. Nil disables monitoring.
func WithMonitor(monitor search.SearchMonitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = search.NoopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// WithClassifier replaces classify.Classify.
func WithClassifier(fn ClassifierFunc) Option {
	return func(e *Engine) error {
		if fn == nil {
			return ErrClassifierRequired
		}
		e.classify = fn
		return nil
	}
}

// WithResponder replaces respond.Respond.
func WithResponder(fn ResponderFunc) Option {
	return func(e *Engine) error {
		if fn == nil {
			return ErrResponderRequired
		}
		e.respond = fn
		return nil
	}
}

// New creates an Engine over the two channels.
func New(vector, graph search.Channel, opts ...Option) (*Engine, error) {
	if vector == nil {
		return nil, ErrVectorChannelRequired
	}
	if graph == nil {
		return nil, ErrGraphChannelRequired
	}

	e := &Engine{
		vector:         vector,
		graph:          graph,
		classify:       classify.Classify,
		respond:        respond.Respond,
		channelTimeout: DefaultChannelTimeout,
		topK:           DefaultTopK,
		recorder:       metrics.Noop{},
		monitor:        search.NoopMonitor{},
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "engine")

	return e, nil
}

// Answer returns the response for rawText. It never fails: channel errors,
// timeouts and caller cancellation all degrade to a lower-confidence
// response. Both channel goroutines have returned by the time Answer does.
func (e *Engine) Answer(ctx context.Context, rawText string) *core.StructuredResponse {
	start := time.Now()
	query := e.classify(rawText)
	e.monitor.Start(query)

	var fused []core.FusedResult
	if strings.TrimSpace(rawText) == "" {
		fused = []core.FusedResult{}
	} else {
		var vectorResults, graphResults []core.ChannelResult
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			vectorResults = e.runChannel(gctx, e.vector, query)
			return nil
		})
		g.Go(func() error {
			graphResults = e.runChannel(gctx, e.graph, query)
			return nil
		})
		_ = g.Wait()

		fused = search.Fuse(vectorResults, graphResults, query)
	}
	e.monitor.AfterFusion(fused)

	response := e.respond(query, fused)
	e.monitor.Finish(response)

	elapsed := time.Since(start)
	e.recorder.IncStrategy(string(response.Strategy))
	e.recorder.ObserveAnswer(elapsed.Seconds())
	e.logger.Debug("answered query",
		"domain", query.Domain,
		"strategy", response.Strategy,
		"results", len(fused),
		"confidence", response.Confidence,
		"elapsed", elapsed)

	return response
}

// runChannel searches one channel under its own deadline. Results that
// arrive after the deadline or after the caller gave up are discarded.
func (e *Engine) runChannel(ctx context.Context, ch search.Channel, query core.Query) []core.ChannelResult {
	cctx, cancel := context.WithTimeout(ctx, e.channelTimeout)
	defer cancel()

	start := time.Now()
	results := ch.Search(cctx, query, e.topK)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeOK
	switch err := cctx.Err(); {
	case ctx.Err() != nil:
		outcome = metrics.OutcomeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		outcome = metrics.OutcomeTimeout
	case len(results) == 0:
		outcome = metrics.OutcomeEmpty
	}
	if outcome == metrics.OutcomeCanceled || outcome == metrics.OutcomeTimeout {
		e.logger.Warn("channel did not finish in time", "channel", ch.Name(), "outcome", outcome, "elapsed", elapsed)
		results = []core.ChannelResult{}
	}

	e.recorder.ObserveChannel(ch.Name(), outcome, elapsed.Seconds())
	e.monitor.ChannelFinished(ch.Name(), results, elapsed, outcome == metrics.OutcomeTimeout)
	return results
}
