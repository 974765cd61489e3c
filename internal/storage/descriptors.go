package storage

import (
	"database/sql"
	"encoding/json"

	"github.com/cartomix/mixcraft/internal/model"
)

// PutDescriptor persists an immutable descriptor record keyed by
// content hash. Descriptors never change once written; a second write
// for the same hash overwrites with what should be byte-identical
// content (per §6's determinism guarantee), so this uses an upsert
// rather than rejecting the duplicate.
func (d *DB) PutDescriptor(td *model.TrackDescriptor) error {
	blob, err := json.Marshal(td)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`
		INSERT INTO descriptors (hash, descriptor_json) VALUES (?, ?)
		ON CONFLICT(hash) DO UPDATE SET descriptor_json = excluded.descriptor_json
	`, td.Hash, string(blob))
	return err
}

// GetDescriptor looks up a previously analyzed track by content hash.
// Returns (nil, nil) on a cache miss.
func (d *DB) GetDescriptor(hash string) (*model.TrackDescriptor, error) {
	row := d.db.QueryRow(`SELECT descriptor_json FROM descriptors WHERE hash = ?`, hash)
	var blob string
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	var td model.TrackDescriptor
	if err := json.Unmarshal([]byte(blob), &td); err != nil {
		return nil, err
	}
	return &td, nil
}
