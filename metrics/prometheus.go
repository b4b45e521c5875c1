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


package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hybridkb"

// Prometheus implements Recorder with Prometheus collectors.
type Prometheus struct {
	channelTotal   *prom.CounterVec
	channelSeconds *prom.HistogramVec
	strategyTotal  *prom.CounterVec
	answerSeconds  prom.Histogram
	toolTotal      *prom.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prom.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		channelTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "channel_searches_total",
			Help:      "Retrieval channel searches by outcome",
		}, []string{"channel", "outcome"}),
		channelSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "channel_search_seconds",
			Help:      "Retrieval channel search duration in seconds",
			Buckets:   []float64{.001, .0025, .005, .01, .02, .03, .05, .1, .25},
		}, []string{"channel"}),
		strategyTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Responses built, by strategy",
		}, []string{"strategy"}),
		answerSeconds: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "answer_seconds",
			Help:      "End to end answer duration in seconds",
			Buckets:   prom.DefBuckets,
		}),
		toolTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "MCP tool calls",
		}, []string{"tool", "success"}),
	}

	for _, c := range []prom.Collector{p.channelTotal, p.channelSeconds, p.strategyTotal, p.answerSeconds, p.toolTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) ObserveChannel(channel, outcome string, seconds float64) {
	p.channelTotal.WithLabelValues(channel, outcome).Inc()
	p.channelSeconds.WithLabelValues(channel).Observe(seconds)
}

func (p *Prometheus) IncStrategy(strategy string) {
	p.strategyTotal.WithLabelValues(strategy).Inc()
}

func (p *Prometheus) ObserveAnswer(seconds float64) {
	p.answerSeconds.Observe(seconds)
}

func (p *Prometheus) IncToolCall(tool string, success bool) {
	p.toolTotal.WithLabelValues(tool, strconv.FormatBool(success)).Inc()
}

// Handler returns an HTTP mux serving /metrics from gatherer and /healthz.
func Handler(gatherer prom.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Serve exposes Handler on addr until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prom.Gatherer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
