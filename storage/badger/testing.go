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

import "github.com/poiesic/hybridkb/storage"

// NewMemoryRepositories creates an in-memory entity repository and vector
// index for testing. Returns repo, index, backend, and error.
// Caller must close the repo and backend when done.
func NewMemoryRepositories() (storage.EntityRepository, storage.VectorIndex, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	repo, err := NewEntityRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	index, err := NewVectorIndex(backend)
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return repo, index, backend, nil
}
