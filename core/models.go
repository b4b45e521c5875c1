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


package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for knowledge entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EntityID returns the canonical ID for an entity name.
// Names are compared case-insensitively, so "EURUSD" and "eurusd" share an ID.
func EntityID(name string) ID {
	return IDFromContent(strings.ToLower(strings.TrimSpace(name)))
}

// Domain is the coarse subject classification of a query or entity.
type Domain string

const (
	DomainSoftware     Domain = "SOFTWARE_DEVELOPMENT"
	DomainTrading      Domain = "TRADING_STRATEGY"
	DomainArchitecture Domain = "ARCHITECTURAL_DESIGN"
	DomainCross        Domain = "CROSS_DOMAIN"
	DomainGeneral      Domain = "GENERAL"
)

// Complexity describes the kind of reasoning a query needs.
type Complexity string

const (
	ComplexityFactual       Complexity = "FACTUAL_LOOKUP"
	ComplexityStrategy      Complexity = "STRATEGY_REASONING"
	ComplexityArchitectural Complexity = "ARCHITECTURAL_ANALYSIS"
	ComplexityComparative   Complexity = "COMPARATIVE_ANALYSIS"
)

// Intent is what the caller wants to do with the answer.
type Intent string

const (
	IntentImplement  Intent = "implement"
	IntentUnderstand Intent = "understand"
	IntentCompare    Intent = "compare"
	IntentDesign     Intent = "design"
	IntentDebug      Intent = "debug"
)

// Strategy selects how a response is assembled from fused results.
type Strategy string

const (
	StrategyDeterministic Strategy = "deterministic-retrieval"
	StrategyGraph         Strategy = "graph-reasoning"
	StrategyHybrid        Strategy = "hybrid-analysis"
	StrategyGenerative    Strategy = "generative-synthesis"
	StrategyFallback      Strategy = "fallback"
)

// EntityType categorizes a knowledge entity.
type EntityType string

const (
	EntityTypeConcept    EntityType = "concept"
	EntityTypePattern    EntityType = "pattern"
	EntityTypeTechnology EntityType = "technology"
	EntityTypeAlgorithm  EntityType = "algorithm"
	EntityTypeDesign     EntityType = "design"
)

// EntityTypes lists every valid EntityType.
var EntityTypes = []EntityType{
	EntityTypeConcept,
	EntityTypePattern,
	EntityTypeTechnology,
	EntityTypeAlgorithm,
	EntityTypeDesign,
}

// Query is the classified form of a raw query string.
// It is built once by the classifier and passed by value afterwards.
type Query struct {
	Text                 string
	Domain               Domain
	Complexity           Complexity
	Intent               Intent
	Strategy             Strategy
	Keywords             []string // Sorted, deduplicated
	CandidateEntityNames []string // First-occurrence order, original case
}

// HasKeywordIn reports whether any query keyword occurs in text.
// The comparison is case-insensitive.
func (q Query) HasKeywordIn(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range q.Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// EntityRelationship is a directed, weighted edge to another entity.
// No inverse edge is implied.
type EntityRelationship struct {
	TargetId       ID
	Type           string
	Weight         float64 // In [0,1]
	Context        string
	DomainSpecific bool
}

// KnowledgeEntity is a node in the knowledge graph.
type KnowledgeEntity struct {
	Id            ID
	Name          string
	Type          EntityType
	Domain        Domain
	Description   string
	Vector        []float32 // Embedding vector (populated by ingestion)
	Relationships []EntityRelationship
	Metadata      map[string]string
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// EmbeddingText returns the text used to embed the entity.
func (e *KnowledgeEntity) EmbeddingText() string {
	if e.Description == "" {
		return e.Name
	}
	return e.Name + ": " + e.Description
}

// ChannelResult is a single candidate produced by a retrieval channel.
type ChannelResult struct {
	Entity *KnowledgeEntity
	Score  float64 // Channel-local score in [0,1]
	Path   []ID    // Graph channel only: seed to entity
}

// FusedResult is a candidate after both channels have been merged.
type FusedResult struct {
	Entity        *KnowledgeEntity
	VectorScore   float64
	GraphScore    float64
	CombinedScore float64
	Path          []ID
}

// Reference points at a piece of evidence used in a response.
type Reference struct {
	EntityId  ID
	Name      string
	Relevance float64
	Excerpt   string
}

// StructuredResponse is the final answer returned to callers.
type StructuredResponse struct {
	Answer         string
	Strategy       Strategy
	Confidence     float64 // In [0,1]
	Entities       []*KnowledgeEntity
	Reasoning      string
	ReasoningSteps []string
	References     []Reference
	Suggestions    []string
}
