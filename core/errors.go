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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntity indicates a KnowledgeEntity failed validation.
	ErrInvalidEntity = errors.New("invalid knowledge entity")

	// ErrInvalidRelationship indicates an EntityRelationship failed validation.
	ErrInvalidRelationship = errors.New("invalid entity relationship")

	// ErrEmptyEntityName indicates the entity Name field is empty.
	ErrEmptyEntityName = errors.New("entity name cannot be empty")

	// ErrInvalidEntityType indicates an unknown EntityType value.
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrInvalidDomain indicates an entity was tagged with an unknown domain.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrWeightOutOfRange indicates a relationship weight outside [0,1].
	ErrWeightOutOfRange = errors.New("relationship weight must be within [0,1]")

	// ErrMissingTarget indicates a relationship with no target entity.
	ErrMissingTarget = errors.New("relationship target cannot be empty")
)
