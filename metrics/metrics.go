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

// Channel outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
)

// Recorder is the instrumentation surface used by the engine and server.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveChannel(channel, outcome string, seconds float64)
	IncStrategy(strategy string)
	ObserveAnswer(seconds float64)
	IncToolCall(tool string, success bool)
}

// Noop implements Recorder with no-ops.
type Noop struct{}

var _ Recorder = Noop{}

func (Noop) ObserveChannel(string, string, float64) {}
func (Noop) IncStrategy(string)                     {}
func (Noop) ObserveAnswer(float64)                  {}
func (Noop) IncToolCall(string, bool)               {}
