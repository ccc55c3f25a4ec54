// Package store persists the single search-criteria record as a flat,
// human-readable JSON file, overwritten wholesale on every save.
package store

import (
	"encoding/json"
	"log"
	"os"

	"github.com/miguel-so/FE-ebay-api-cron/internal/model"
)

// Store reads and writes the criteria file at a fixed path.
type Store struct {
	path string
}

// New returns a Store backed by the file at path. The file is created
// lazily on the first Save.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the current criteria record. A missing file, an unreadable
// file and malformed JSON all yield nil: the workflow treats "no
// criteria" as a skip, never a failure.
func (s *Store) Load() *model.SearchCriteria {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[store] Read %s: %v", s.path, err)
		}
		return nil
	}

	var c model.SearchCriteria
	if err := json.Unmarshal(data, &c); err != nil {
		log.Printf("[store] Malformed criteria in %s: %v", s.path, err)
		return nil
	}
	return &c
}

// LoadRaw returns the stored JSON bytes verbatim, so fields the typed
// model does not recognise survive a read. Returns nil when the file is
// absent, unreadable or not valid JSON.
func (s *Store) LoadRaw() []byte {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[store] Read %s: %v", s.path, err)
		}
		return nil
	}
	if !json.Valid(data) {
		log.Printf("[store] Malformed criteria in %s", s.path)
		return nil
	}
	return data
}

// Save overwrites the criteria record with v, pretty-printed. v may be
// anything marshalable — arbitrary JSON (json.RawMessage) is stored
// verbatim, no field validation is applied. Returns false on failure;
// the error is logged, never propagated.
func (s *Store) Save(v any) bool {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("[store] Marshal criteria: %v", err)
		return false
	}

	// Write to a temp file first, then rename into place, so a crashed
	// save never leaves a truncated record behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		log.Printf("[store] Write %s: %v", tmp, err)
		return false
	}
	if err := os.Rename(tmp, s.path); err != nil {
		log.Printf("[store] Rename %s: %v", s.path, err)
		return false
	}
	return true
}
