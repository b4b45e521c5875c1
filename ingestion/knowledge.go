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


package ingestion

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/poiesic/hybridkb/core"
)

// KnowledgeFile is the on-disk representation of a set of entities.
//
//	entities:
//	  - name: EURUSD
//	    type: concept
//	    domain: TRADING_STRATEGY
//	    description: The euro quoted in US dollars
//	    relationships:
//	      - target: CurrencyPair
//	        type: is_a
//	        weight: 0.9
type KnowledgeFile struct {
	Entities []EntityDef `yaml:"entities"`
}

// EntityDef describes one entity in a knowledge file.
type EntityDef struct {
	Name          string             `yaml:"name"`
	Type          string             `yaml:"type"`
	Domain        string             `yaml:"domain"`
	Description   string             `yaml:"description"`
	Metadata      map[string]string  `yaml:"metadata,omitempty"`
	Relationships []RelationshipDef `yaml:"relationships,omitempty"`
}

// RelationshipDef is an outgoing edge. Target is the target entity's name.
type RelationshipDef struct {
	Target         string  `yaml:"target"`
	Type           string  `yaml:"type"`
	Weight         float64 `yaml:"weight"`
	Context        string  `yaml:"context,omitempty"`
	DomainSpecific bool    `yaml:"domain_specific,omitempty"`
}

// ReadKnowledgeFile loads and parses a knowledge file from disk.
func ReadKnowledgeFile(path string) (*KnowledgeFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge file: %w", err)
	}
	defer f.Close()
	return ParseKnowledge(f)
}

// ParseKnowledge decodes a knowledge file. Unknown fields are rejected.
func ParseKnowledge(r io.Reader) (*KnowledgeFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var kf KnowledgeFile
	if err := dec.Decode(&kf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKnowledgeFile, err)
	}
	return &kf, nil
}

// ToEntities converts the file into validated entities. Relationship targets
// are resolved by name with core.EntityID, so a target may live in another
// file or already be stored. Targets not defined in this file are returned
// as external, in first-reference order.
func (kf *KnowledgeFile) ToEntities() ([]*core.KnowledgeEntity, []string, error) {
	entities := make([]*core.KnowledgeEntity, 0, len(kf.Entities))
	defined := make(map[core.ID]struct{}, len(kf.Entities))

	for i, def := range kf.Entities {
		entity := def.toEntity()
		if err := core.ValidateEntity(entity); err != nil {
			return nil, nil, fmt.Errorf("entity %d (%q): %w", i, def.Name, err)
		}
		if _, dup := defined[entity.Id]; dup {
			return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateEntity, def.Name)
		}
		defined[entity.Id] = struct{}{}
		entities = append(entities, entity)
	}

	var external []string
	seen := make(map[core.ID]struct{})
	for _, def := range kf.Entities {
		for _, rel := range def.Relationships {
			id := core.EntityID(rel.Target)
			if _, ok := defined[id]; ok {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			external = append(external, strings.TrimSpace(rel.Target))
		}
	}

	return entities, external, nil
}

func (def EntityDef) toEntity() *core.KnowledgeEntity {
	entity := &core.KnowledgeEntity{
		Id:          core.EntityID(def.Name),
		Name:        strings.TrimSpace(def.Name),
		Type:        core.EntityType(strings.ToLower(strings.TrimSpace(def.Type))),
		Domain:      core.Domain(strings.ToUpper(strings.TrimSpace(def.Domain))),
		Description: strings.TrimSpace(def.Description),
		Metadata:    def.Metadata,
	}
	if entity.Domain == "" {
		entity.Domain = core.DomainGeneral
	}
	if len(def.Relationships) > 0 {
		entity.Relationships = make([]core.EntityRelationship, 0, len(def.Relationships))
		for _, rel := range def.Relationships {
			var target core.ID
			if strings.TrimSpace(rel.Target) != "" {
				target = core.EntityID(rel.Target)
			}
			entity.Relationships = append(entity.Relationships, core.EntityRelationship{
				TargetId:       target,
				Type:           rel.Type,
				Weight:         rel.Weight,
				Context:        rel.Context,
				DomainSpecific: rel.DomainSpecific,
			})
		}
	}
	return entity
}
