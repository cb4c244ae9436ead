// Package migration performs the one-shot copy of the legacy MySQL data into
// Postgres. Legacy rows carry integer primary keys; the target uses UUIDs, so
// each entity has an id-map file produced by earlier export runs that pins
// legacy id to UUID. Re-running the migration with the same map files is
// idempotent.
package migration

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
)

// IDMap translates legacy integer ids to target UUIDs. The on-disk file is
// never rewritten; ids missing from the file get a fresh UUID that lives only
// for the duration of the run.
type IDMap map[int64]string

// LoadIDMap reads a legacy-id to UUID mapping file. The JSON object keys are
// the legacy ids as strings. A missing file yields an empty map, not an
// error, matching a first-time run without prior exports.
func LoadIDMap(path string) (IDMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return IDMap{}, nil
		}
		return nil, fmt.Errorf("read id map %s: %w", path, err)
	}

	var byKey map[string]string
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, fmt.Errorf("parse id map %s: %w", path, err)
	}

	m := make(IDMap, len(byKey))
	for key, id := range byKey {
		legacyID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("id map %s: invalid legacy id %q", path, key)
		}
		m[legacyID] = id
	}
	return m, nil
}

// Assign returns the mapped UUID for a legacy id, minting and remembering a
// new one when the map has no entry.
func (m IDMap) Assign(legacyID int64) string {
	if id, ok := m[legacyID]; ok {
		return id
	}
	id := uuid.NewString()
	m[legacyID] = id
	return id
}

// Resolve returns the mapped UUID without minting. Used for foreign key
// remapping, where an unknown legacy id must stay unresolved.
func (m IDMap) Resolve(legacyID int64) (string, bool) {
	id, ok := m[legacyID]
	return id, ok
}
