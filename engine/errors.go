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

import "errors"

var (
	// ErrVectorChannelRequired is returned when no vector channel is provided.
	ErrVectorChannelRequired = errors.New("vector channel required")

	// ErrGraphChannelRequired is returned when no graph channel is provided.
	ErrGraphChannelRequired = errors.New("graph channel required")

	// ErrClassifierRequired is returned when WithClassifier is given nil.
	ErrClassifierRequired = errors.New("classifier required")

	// ErrResponderRequired is returned when WithResponder is given nil.
	ErrResponderRequired = errors.New("responder required")

	// ErrInvalidTimeout is returned for a non-positive channel timeout.
	ErrInvalidTimeout = errors.New("channel timeout must be positive")

	// ErrInvalidTopK is returned for a non-positive per-channel result limit.
	ErrInvalidTopK = errors.New("topK must be positive")
)
