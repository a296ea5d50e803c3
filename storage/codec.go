package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SaveJSON marshals value and writes it under key.
func SaveJSON(db Database, key []byte, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	return db.Put(key, encoded)
}

// LoadJSON reads key and unmarshals it into out. Missing keys surface as
// ErrKeyNotFound so callers can fall back to genesis state.
func LoadJSON(db Database, key []byte, out any) error {
	encoded, err := db.Get(key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return ErrKeyNotFound
		}
		return fmt.Errorf("storage: read %q: %w", key, err)
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return nil
}
