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


package badger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/storage"
)

// errStopScan ends a prefix scan early without reporting a failure.
var errStopScan = errors.New("stop scan")

// VectorIndex implements storage.VectorIndex with an exhaustive cosine scan
// over vectors stored in BadgerDB.
type VectorIndex struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a new VectorIndex.
func NewVectorIndex(backend *Backend) (*VectorIndex, error) {
	return &VectorIndex{
		backend: backend,
		logger:  backend.logger.With("repository", "vector"),
	}, nil
}

// Upsert stores or replaces the vector for an entity.
// All indexed vectors must share one dimensionality.
func (v *VectorIndex) Upsert(ctx context.Context, id core.ID, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector", storage.ErrInvalidQuery)
	}
	return v.backend.WithTx(func(tx *badger.Txn) error {
		dims, err := v.indexedDims(ctx, tx, id)
		if err != nil {
			return err
		}
		if dims != 0 && dims != len(vector) {
			return fmt.Errorf("%w: got %d, index has %d", storage.ErrDimensionMismatch, len(vector), dims)
		}
		if err := tx.Set(makeVectorKey(id), storage.MarshalVector(vector)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Remove deletes vectors by entity ID. Missing IDs are ignored.
func (v *VectorIndex) Remove(ctx context.Context, ids ...core.ID) error {
	return v.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeVectorKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Search returns up to k nearest vectors by cosine distance.
func (v *VectorIndex) Search(ctx context.Context, vector []float32, k int) ([]storage.Neighbor, error) {
	if k <= 0 || len(vector) == 0 {
		return nil, nil
	}
	queryNorm := norm(vector)

	var neighbors []storage.Neighbor
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		return v.backend.scanPrefix(ctx, tx, []byte(vectorPrefix), true, func(item *badger.Item) error {
			id := parseIDSuffix(item.Key())
			return item.Value(func(val []byte) error {
				stored, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				if len(stored) != len(vector) {
					v.logger.Debug("skipping vector with mismatched dimensions", "id", id, "dims", len(stored))
					return nil
				}
				neighbors = append(neighbors, storage.Neighbor{
					Id:       id,
					Distance: cosineDistance(vector, stored, queryNorm),
				})
				return nil
			})
		})
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(neighbors, func(a, b storage.Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Id, b.Id)
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

// indexedDims returns the dimensionality of any vector other than skip,
// or 0 when the index holds no other vector.
func (v *VectorIndex) indexedDims(ctx context.Context, tx *badger.Txn, skip core.ID) (int, error) {
	dims := 0
	err := v.backend.scanPrefix(ctx, tx, []byte(vectorPrefix), true, func(item *badger.Item) error {
		if parseIDSuffix(item.Key()) == skip {
			return nil
		}
		return item.Value(func(val []byte) error {
			stored, err := storage.UnmarshalVector(val)
			if err != nil {
				return err
			}
			dims = len(stored)
			return errStopScan
		})
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return 0, err
	}
	return dims, nil
}

func norm(vec []float32) float64 {
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosineDistance returns 1 - cosine similarity. A zero vector is treated as
// orthogonal to everything.
func cosineDistance(query, stored []float32, queryNorm float64) float64 {
	storedNorm := norm(stored)
	if queryNorm == 0 || storedNorm == 0 {
		return 1
	}
	var dot float64
	for i := range query {
		dot += float64(query[i]) * float64(stored[i])
	}
	return 1 - dot/(queryNorm*storedNorm)
}
