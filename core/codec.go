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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted types. Field order is the wire order;
// append new fields at the end.
var (
	IDMUS           = idMUS{}
	RelationshipMUS = relationshipMUS{}
	EntityMUS       = entityMUS{}

	vectorMUS        = ord.NewSliceSer[float32](raw.Float32)
	relationshipsMUS = ord.NewSliceSer[EntityRelationship](RelationshipMUS)
	metadataMUS      = ord.NewMapSer[string, string](ord.String, ord.String)
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// timeMUS stores timestamps as Unix microseconds. The zero time round-trips.
type timeMUS struct{}

func (s timeMUS) micros(v time.Time) int64 {
	if v.IsZero() {
		return 0
	}
	return v.UnixMicro()
}

func (s timeMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(s.micros(v), bs)
}

func (s timeMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || us == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func (s timeMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(s.micros(v))
}

func (s timeMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

type relationshipMUS struct{}

func (s relationshipMUS) Marshal(v EntityRelationship, bs []byte) (n int) {
	n = IDMUS.Marshal(v.TargetId, bs)
	n += ord.String.Marshal(v.Type, bs[n:])
	n += raw.Float64.Marshal(v.Weight, bs[n:])
	n += ord.String.Marshal(v.Context, bs[n:])
	n += ord.Bool.Marshal(v.DomainSpecific, bs[n:])
	return
}

func (s relationshipMUS) Unmarshal(bs []byte) (v EntityRelationship, n int, err error) {
	v.TargetId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Type, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Weight, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Context, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DomainSpecific, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	return
}

func (s relationshipMUS) Size(v EntityRelationship) (size int) {
	size = IDMUS.Size(v.TargetId)
	size += ord.String.Size(v.Type)
	size += raw.Float64.Size(v.Weight)
	size += ord.String.Size(v.Context)
	return size + ord.Bool.Size(v.DomainSpecific)
}

func (s relationshipMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	return
}

type entityMUS struct{}

func (s entityMUS) Marshal(v KnowledgeEntity, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(string(v.Type), bs[n:])
	n += ord.String.Marshal(string(v.Domain), bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += relationshipsMUS.Marshal(v.Relationships, bs[n:])
	n += metadataMUS.Marshal(v.Metadata, bs[n:])
	n += timeMUS{}.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS{}.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (s entityMUS) Unmarshal(bs []byte) (v KnowledgeEntity, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var (
		n1  int
		str string
	)
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Type = EntityType(str)
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Domain = Domain(str)
	v.Description, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Relationships, n1, err = relationshipsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	return
}

func (s entityMUS) Size(v KnowledgeEntity) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(string(v.Type))
	size += ord.String.Size(string(v.Domain))
	size += ord.String.Size(v.Description)
	size += vectorMUS.Size(v.Vector)
	size += relationshipsMUS.Size(v.Relationships)
	size += metadataMUS.Size(v.Metadata)
	size += timeMUS{}.Size(v.InsertedAt)
	return size + timeMUS{}.Size(v.UpdatedAt)
}

func (s entityMUS) Skip(bs []byte) (n int, err error) {
	skips := []func([]byte) (int, error){
		IDMUS.Skip,
		ord.String.Skip,
		ord.String.Skip,
		ord.String.Skip,
		ord.String.Skip,
		vectorMUS.Skip,
		relationshipsMUS.Skip,
		metadataMUS.Skip,
		timeMUS{}.Skip,
		timeMUS{}.Skip,
	}
	for _, skip := range skips {
		n1, err := skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
