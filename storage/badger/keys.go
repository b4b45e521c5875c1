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
	"encoding/binary"
	"strings"

	"github.com/poiesic/hybridkb/core"
)

// Key prefixes for different data types
const (
	entityPrefix     = "entrec:"
	entityNamePrefix = "entnam:"
	vectorPrefix     = "vecidx:"
)

// nameSeparator ends the name portion of a name index key. Names never contain it.
const nameSeparator = 0x00

// makeEntityKey generates a key for an entity by ID.
// Format: prefix + 8 byte big-endian ID, so iteration is in ID order.
func makeEntityKey(id core.ID) []byte {
	return appendID([]byte(entityPrefix), id)
}

// makeEntityNameKey generates a composite key for the name index.
// Format: prefix + lowercase name + 0x00 + 8 byte ID
func makeEntityNameKey(name string, id core.ID) []byte {
	lowered := strings.ToLower(name)
	buf := make([]byte, 0, len(entityNamePrefix)+len(lowered)+9)
	buf = append(buf, entityNamePrefix...)
	buf = append(buf, lowered...)
	buf = append(buf, nameSeparator)
	return appendID(buf, id)
}

// parseEntityNameKey splits a name index key into its lowercase name and ID.
func parseEntityNameKey(key []byte) (string, core.ID, bool) {
	if len(key) < len(entityNamePrefix)+9 {
		return "", 0, false
	}
	body := key[len(entityNamePrefix):]
	sep := len(body) - 9
	if body[sep] != nameSeparator {
		return "", 0, false
	}
	return string(body[:sep]), core.ID(binary.BigEndian.Uint64(body[sep+1:])), true
}

// makeVectorKey generates a key for an indexed vector by entity ID.
func makeVectorKey(id core.ID) []byte {
	return appendID([]byte(vectorPrefix), id)
}

// parseIDSuffix reads the trailing 8 byte ID of a key.
func parseIDSuffix(key []byte) core.ID {
	if len(key) < 8 {
		return 0
	}
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

func appendID(buf []byte, id core.ID) []byte {
	// Write in BigEndian order so lexicographic sort works correctly
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}
