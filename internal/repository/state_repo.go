package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meridianpay/meridian/internal/domain"
)

// DefaultSlot is the slot name used when none is configured.
const DefaultSlot = "meridian-store"

// StateRepo persists the whole store state as one JSON document under
// a named slot. Each save overwrites the previous document; there is
// no history.
type StateRepo struct {
	db   *sql.DB
	slot string
}

func NewStateRepo(db *sql.DB, slot string) *StateRepo {
	if slot == "" {
		slot = DefaultSlot
	}
	return &StateRepo{db: db, slot: slot}
}

// Save serializes the state and writes it under the repo's slot,
// stamping the current schema version.
func (r *StateRepo) Save(state domain.StoreState) error {
	state.SchemaVersion = domain.CurrentSchemaVersion
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO store_state (slot, schema_version, data, updated_at)
		 VALUES (?,?,?,?)
		 ON CONFLICT(slot) DO UPDATE SET
			schema_version = excluded.schema_version,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		r.slot, state.SchemaVersion, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Load reads the slot's document. The second return is false when the
// slot has never been written, which is not an error.
func (r *StateRepo) Load() (domain.StoreState, bool, error) {
	var (
		version int
		data    string
	)
	err := r.db.QueryRow(
		"SELECT schema_version, data FROM store_state WHERE slot = ?", r.slot,
	).Scan(&version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoreState{}, false, nil
	}
	if err != nil {
		return domain.StoreState{}, false, fmt.Errorf("load state: %w", err)
	}

	var state domain.StoreState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return domain.StoreState{}, false, fmt.Errorf("unmarshal state: %w", err)
	}
	if state.SchemaVersion == 0 {
		state.SchemaVersion = version
	}
	return state, true, nil
}
