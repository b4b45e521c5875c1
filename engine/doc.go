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


// Package engine answers free-text queries against the knowledge base.
//
// Each call to Engine.Answer classifies the text, runs the vector and graph
// channels concurrently under a per-channel timeout, fuses their results and
// hands them to the response dispatcher:
//
//	eng, err := engine.New(vectorChannel, graphChannel,
//	    engine.WithChannelTimeout(20*time.Millisecond),
//	    engine.WithRecorder(recorder),
//	)
//	resp := eng.Answer(ctx, "what is EURUSD")
//
// A channel that times out or fails contributes nothing; the response is
// built from whatever the other channel found.
package engine
