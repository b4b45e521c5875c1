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


package server

import (
	"fmt"

	"github.com/poiesic/hybridkb/core"
)

// AnswerArgs is the input of the answer tool.
type AnswerArgs struct {
	Query string `json:"query"`
}

// EntitySummary identifies an entity in a tool result.
type EntitySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Domain      string `json:"domain"`
	Description string `json:"description,omitempty"`
}

// ReferenceResult is a cited entity with its relevance.
type ReferenceResult struct {
	EntityID  string  `json:"entityId"`
	Name      string  `json:"name"`
	Relevance float64 `json:"relevance"`
	Excerpt   string  `json:"excerpt,omitempty"`
}

// AnswerResult is the structured output of the answer tool.
type AnswerResult struct {
	Answer         string            `json:"answer"`
	Strategy       string            `json:"strategy"`
	Confidence     float64           `json:"confidence"`
	Reasoning      string            `json:"reasoning,omitempty"`
	ReasoningSteps []string          `json:"reasoningSteps"`
	Entities       []EntitySummary   `json:"entities"`
	References     []ReferenceResult `json:"references"`
	Suggestions    []string          `json:"suggestions"`
}

// HealthArgs is the (empty) input of the health tool.
type HealthArgs struct{}

// HealthResult is the output of the health tool.
type HealthResult struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Status   string `json:"status"`
	Entities int    `json:"entities"`
	Error    string `json:"error,omitempty"`
}

// formatID renders an ID as fixed-width hex so JSON clients do not lose
// precision on 64-bit values.
func formatID(id core.ID) string {
	return fmt.Sprintf("%016x", uint64(id))
}

// NewAnswerResult converts a response into its JSON-friendly form.
func NewAnswerResult(resp *core.StructuredResponse) AnswerResult {
	out := AnswerResult{
		Answer:         resp.Answer,
		Strategy:       string(resp.Strategy),
		Confidence:     resp.Confidence,
		Reasoning:      resp.Reasoning,
		ReasoningSteps: resp.ReasoningSteps,
		Entities:       make([]EntitySummary, 0, len(resp.Entities)),
		References:     make([]ReferenceResult, 0, len(resp.References)),
		Suggestions:    resp.Suggestions,
	}
	if out.ReasoningSteps == nil {
		out.ReasoningSteps = []string{}
	}
	if out.Suggestions == nil {
		out.Suggestions = []string{}
	}
	for _, e := range resp.Entities {
		out.Entities = append(out.Entities, EntitySummary{
			ID:          formatID(e.Id),
			Name:        e.Name,
			Type:        string(e.Type),
			Domain:      string(e.Domain),
			Description: e.Description,
		})
	}
	for _, r := range resp.References {
		out.References = append(out.References, ReferenceResult{
			EntityID:  formatID(r.EntityId),
			Name:      r.Name,
			Relevance: r.Relevance,
			Excerpt:   r.Excerpt,
		})
	}
	return out
}
