// Package history persists every event ever fetched, keyed by feed id.
// The file is best-effort state: a missing or corrupt file means an
// empty history, and a failed save is logged and retried on the next
// successful fetch. Entries are never evicted.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quakewatch/QuakeWatch/src/logx"
	"github.com/quakewatch/QuakeWatch/src/types"
)

// FileName is the history file placed under the app data directory.
const FileName = "earthquake_history.json"

// Store reads and writes the id-keyed history file.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// DefaultPath resolves the platform app-data location for the history
// file, creating the directory if needed. Falls back to the working
// directory when no config dir is available.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return FileName
	}
	dir := filepath.Join(base, "quakewatch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logx.Warnf("create app data dir %s: %v", dir, err)
		return FileName
	}
	return filepath.Join(dir, FileName)
}

// Load reads the history mapping. Absent, unreadable or malformed files
// all yield an empty mapping; Load never fails the caller.
func (s *Store) Load() map[string]types.Event {
	blob, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]types.Event{}
	}
	var hist map[string]types.Event
	if err := json.Unmarshal(blob, &hist); err != nil {
		logx.Warnf("history file %s is malformed, starting empty: %v", s.path, err)
		return map[string]types.Event{}
	}
	if hist == nil {
		return map[string]types.Event{}
	}
	return hist
}

// Merge upserts fetched events into the mapping, last write wins per
// id. Events without an id are ignored. Returns the number applied.
func Merge(hist map[string]types.Event, events []types.Event) int {
	applied := 0
	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		hist[ev.ID] = ev
		applied++
	}
	return applied
}

// Save writes the full mapping, staging to a temp file in the same
// directory and renaming over the target so a crash mid-write leaves
// the previous file intact.
func (s *Store) Save(hist map[string]types.Event) error {
	blob, err := json.Marshal(hist)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
