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


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/poiesic/hybridkb/core"
)

var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

// MarshalEntity serializes a KnowledgeEntity to bytes.
func MarshalEntity(entity *core.KnowledgeEntity) []byte {
	buf := make([]byte, core.EntityMUS.Size(*entity))
	core.EntityMUS.Marshal(*entity, buf)
	return buf
}

// UnmarshalEntity deserializes a KnowledgeEntity from bytes.
func UnmarshalEntity(data []byte) (*core.KnowledgeEntity, error) {
	entity, _, err := core.EntityMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entity, nil
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(vector []float32) []byte {
	buf := make([]byte, vectorMUS.Size(vector))
	vectorMUS.Marshal(vector, buf)
	return buf
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	vector, _, err := vectorMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return vector, nil
}
