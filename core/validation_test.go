package core

import (
	"errors"
	"testing"
)

func TestValidateEntity(t *testing.T) {
	tests := []struct {
		name    string
		entity  *KnowledgeEntity
		wantErr error
	}{
		{
			name: "valid entity",
			entity: &KnowledgeEntity{
				Name:        "EURUSD",
				Type:        EntityTypeConcept,
				Domain:      DomainTrading,
				Description: "Euro against US dollar",
			},
			wantErr: nil,
		},
		{
			name: "valid entity with relationships and no vector",
			entity: &KnowledgeEntity{
				Name:   "EURUSD",
				Type:   EntityTypeConcept,
				Domain: DomainTrading,
				Relationships: []EntityRelationship{
					{TargetId: EntityID("CurrencyPair"), Type: "is_a", Weight: 0.9},
				},
			},
			wantErr: nil,
		},
		{
			name: "general domain is allowed",
			entity: &KnowledgeEntity{
				Name:   "Glossary",
				Type:   EntityTypeConcept,
				Domain: DomainGeneral,
			},
			wantErr: nil,
		},
		{
			name:    "nil entity",
			entity:  nil,
			wantErr: ErrInvalidEntity,
		},
		{
			name: "empty name",
			entity: &KnowledgeEntity{
				Type:   EntityTypeConcept,
				Domain: DomainTrading,
			},
			wantErr: ErrEmptyEntityName,
		},
		{
			name: "unknown type",
			entity: &KnowledgeEntity{
				Name:   "EURUSD",
				Type:   "currency",
				Domain: DomainTrading,
			},
			wantErr: ErrInvalidEntityType,
		},
		{
			name: "cross domain is not an entity domain",
			entity: &KnowledgeEntity{
				Name:   "REST",
				Type:   EntityTypeTechnology,
				Domain: DomainCross,
			},
			wantErr: ErrInvalidDomain,
		},
		{
			name: "relationship weight out of range",
			entity: &KnowledgeEntity{
				Name:   "EURUSD",
				Type:   EntityTypeConcept,
				Domain: DomainTrading,
				Relationships: []EntityRelationship{
					{TargetId: EntityID("CurrencyPair"), Weight: 1.5},
				},
			},
			wantErr: ErrWeightOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntity(tt.entity)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntity() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntity() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidEntity) {
				t.Errorf("ValidateEntity() error should wrap ErrInvalidEntity, got %v", err)
			}
		})
	}
}

func TestValidateRelationship(t *testing.T) {
	tests := []struct {
		name    string
		rel     *EntityRelationship
		wantErr error
	}{
		{name: "valid", rel: &EntityRelationship{TargetId: 42, Weight: 0.5}},
		{name: "zero weight", rel: &EntityRelationship{TargetId: 42, Weight: 0}},
		{name: "full weight", rel: &EntityRelationship{TargetId: 42, Weight: 1}},
		{name: "nil", rel: nil, wantErr: ErrInvalidRelationship},
		{name: "missing target", rel: &EntityRelationship{Weight: 0.5}, wantErr: ErrMissingTarget},
		{name: "negative weight", rel: &EntityRelationship{TargetId: 42, Weight: -0.1}, wantErr: ErrWeightOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelationship(tt.rel)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRelationship() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRelationship() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEntityType(t *testing.T) {
	for _, et := range EntityTypes {
		if err := ValidateEntityType(et); err != nil {
			t.Errorf("ValidateEntityType(%q) unexpected error = %v", et, err)
		}
	}
	if err := ValidateEntityType(""); !errors.Is(err, ErrInvalidEntityType) {
		t.Errorf("ValidateEntityType(\"\") error = %v, want %v", err, ErrInvalidEntityType)
	}
}
