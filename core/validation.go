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
	"fmt"
	"slices"
)

// ValidateEntity validates a KnowledgeEntity according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Type must be one of EntityTypes
//   - Domain must be a concrete domain or GENERAL
//   - Every relationship must be valid
//
// NOT validated (populated by ingestion):
//   - Vector (can be empty until embedded)
//   - ID (derived from the name when zero)
func ValidateEntity(entity *KnowledgeEntity) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidEntity)
	}

	if entity.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyEntityName)
	}

	if err := ValidateEntityType(entity.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}

	if err := ValidateEntityDomain(entity.Domain); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}

	for i := range entity.Relationships {
		if err := ValidateRelationship(&entity.Relationships[i]); err != nil {
			return fmt.Errorf("%w: relationship %d: %w", ErrInvalidEntity, i, err)
		}
	}

	return nil
}

// ValidateRelationship validates an EntityRelationship.
func ValidateRelationship(rel *EntityRelationship) error {
	if rel == nil {
		return fmt.Errorf("%w: relationship is nil", ErrInvalidRelationship)
	}
	if rel.TargetId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRelationship, ErrMissingTarget)
	}
	if rel.Weight < 0 || rel.Weight > 1 {
		return fmt.Errorf("%w: %w: %v", ErrInvalidRelationship, ErrWeightOutOfRange, rel.Weight)
	}
	return nil
}

// ValidateEntityType validates that an EntityType has a valid value.
func ValidateEntityType(t EntityType) error {
	if !slices.Contains(EntityTypes, t) {
		return fmt.Errorf("%w: %q", ErrInvalidEntityType, t)
	}
	return nil
}

// ValidateEntityDomain validates the domain tag of an entity.
// CROSS_DOMAIN only describes queries, so entities may not carry it.
func ValidateEntityDomain(d Domain) error {
	switch d {
	case DomainSoftware, DomainTrading, DomainArchitecture, DomainGeneral:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDomain, d)
	}
}
