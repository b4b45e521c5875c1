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


package search

import (
	"log/slog"
	"time"

	"github.com/poiesic/hybridkb/core"
)

// SearchMonitor observes the stages of answering one query.
// Implementations must be safe for concurrent use: channel callbacks arrive
// from the goroutines running each channel.
type SearchMonitor interface {
	Start(query core.Query)
	ChannelFinished(channel string, results []core.ChannelResult, elapsed time.Duration, timedOut bool)
	AfterFusion(results []core.FusedResult)
	Finish(response *core.StructuredResponse)
}

// NoopMonitor is a SearchMonitor that does nothing.
type NoopMonitor struct{}

var _ SearchMonitor = NoopMonitor{}

func (NoopMonitor) Start(core.Query)                                                {}
func (NoopMonitor) ChannelFinished(string, []core.ChannelResult, time.Duration, bool) {}
func (NoopMonitor) AfterFusion([]core.FusedResult)                                  {}
func (NoopMonitor) Finish(*core.StructuredResponse)                                 {}

// LogMonitor reports every stage to a logger at debug level.
type LogMonitor struct {
	Logger *slog.Logger
}

var _ SearchMonitor = (*LogMonitor)(nil)

func (m *LogMonitor) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *LogMonitor) Start(query core.Query) {
	m.logger().Debug("query classified",
		"domain", query.Domain,
		"complexity", query.Complexity,
		"intent", query.Intent,
		"strategy", query.Strategy,
		"keywords", query.Keywords,
		"candidates", query.CandidateEntityNames)
}

func (m *LogMonitor) ChannelFinished(channel string, results []core.ChannelResult, elapsed time.Duration, timedOut bool) {
	m.logger().Debug("channel finished",
		"channel", channel,
		"results", len(results),
		"elapsed", elapsed,
		"timedOut", timedOut)
}

func (m *LogMonitor) AfterFusion(results []core.FusedResult) {
	for i, r := range results {
		m.logger().Debug("fused result",
			"rank", i+1,
			"name", r.Entity.Name,
			"vector", r.VectorScore,
			"graph", r.GraphScore,
			"combined", r.CombinedScore)
	}
}

func (m *LogMonitor) Finish(response *core.StructuredResponse) {
	m.logger().Debug("response built",
		"strategy", response.Strategy,
		"confidence", response.Confidence,
		"entities", len(response.Entities))
}
