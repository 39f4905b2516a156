// Package storage keeps a small, bounded history of past scans in a local
// JSON file. The whole list is read-modify-written on each change, so the
// store is guarded by a mutex for use from concurrent handlers.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/apex/log"

	"provenance-service/models"
)

// DefaultLimit is the number of scans retained when no limit is configured.
const DefaultLimit = 6

// Store is a bounded, file-backed scan history.
type Store struct {
	path  string
	limit int
	mu    sync.Mutex
}

// NewStore creates a store persisting to path, keeping at most limit scans.
func NewStore(path string, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{path: path, limit: limit}
}

// ListRecent returns the stored scans, newest first. Records saved by an
// older schema without timeline or components arrays are dropped silently,
// and the filtered list is persisted back.
func (s *Store) ListRecent() ([]models.Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

// Save prepends scan to the history and truncates it to the store limit.
func (s *Store) Save(scan models.Scan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scans, err := s.listLocked()
	if err != nil {
		return err
	}

	scans = append([]models.Scan{scan}, scans...)
	if len(scans) > s.limit {
		scans = scans[:s.limit]
	}

	return s.writeLocked(scans)
}

// Clear removes the entire scan history.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear scan history: %w", err)
	}
	return nil
}

func (s *Store) listLocked() ([]models.Scan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Scan{}, nil
		}
		return nil, fmt.Errorf("failed to read scan history: %w", err)
	}

	var scans []models.Scan
	if err := json.Unmarshal(data, &scans); err != nil {
		// A truncated or corrupt file must not wedge the store; treat it
		// as empty so the next save overwrites the bad state.
		log.Warnf("Discarding unreadable scan history: %v", err)
		return []models.Scan{}, nil
	}

	valid := make([]models.Scan, 0, len(scans))
	for _, scan := range scans {
		if isValidScan(scan) {
			valid = append(valid, scan)
		}
	}

	// Filtered out incompatible records, persist the cleaned list
	if len(valid) != len(scans) {
		log.Warnf("Dropped %d incompatible scan records", len(scans)-len(valid))
		if err := s.writeLocked(valid); err != nil {
			return nil, err
		}
	}

	return valid, nil
}

func (s *Store) writeLocked(scans []models.Scan) error {
	data, err := json.Marshal(scans)
	if err != nil {
		return fmt.Errorf("failed to encode scan history: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a truncated file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scan history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write scan history: %w", err)
	}
	return nil
}

// isValidScan reports whether a stored record carries the current result
// schema (guards against lists written by an older incompatible version).
func isValidScan(scan models.Scan) bool {
	return scan.Result.Timeline != nil && scan.Result.Components != nil
}
