// Package store persists the run snapshot as a single pretty-printed JSON
// document at a fixed, run-relative path. Every save overwrites the document
// wholesale; cleanup deletes it wholesale. Persistence failures are never
// fatal to the host test run.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/specwatch/specwatch/pkg/snapshot"
)

// DefaultSnapshotPath is the default run-relative snapshot location.
const DefaultSnapshotPath = ".specwatch/snapshot.json"

// Store owns the persisted snapshot during its own load/save calls and
// hands copies to callers by value: successive Load calls never alias.
type Store interface {
	// Initialize creates and persists a new empty snapshot, unconditionally
	// replacing any existing one. No-op when tracking is disabled.
	Initialize() error

	// Load returns the current snapshot, or nil when no snapshot exists or
	// the backing file cannot be parsed. Never fails hard.
	Load() *snapshot.RunSnapshot

	// Save persists the full snapshot atomically from a reader's
	// perspective. A failed save leaves the previous snapshot intact.
	Save(snap *snapshot.RunSnapshot) error

	// Cleanup deletes the persisted snapshot if present. Idempotent.
	Cleanup() error

	// Path returns the snapshot file location.
	Path() string
}

// Compile-time interface check.
var _ Store = (*fileStore)(nil)

type fileStore struct {
	log      logrus.FieldLogger
	path     string
	tracking snapshot.Config
}

// NewFileStore creates a Store backed by a JSON file at path. An empty path
// falls back to DefaultSnapshotPath.
func NewFileStore(
	log logrus.FieldLogger,
	path string,
	tracking snapshot.Config,
) Store {
	if path == "" {
		path = DefaultSnapshotPath
	}

	return &fileStore{
		log:      log.WithField("component", "store"),
		path:     path,
		tracking: tracking,
	}
}

// Initialize creates a fresh snapshot for a new run and persists it.
func (s *fileStore) Initialize() error {
	if !s.tracking.Enabled {
		s.log.Debug("Tracking disabled, skipping snapshot initialization")

		return nil
	}

	snap := snapshot.New(s.tracking)

	if err := s.Save(snap); err != nil {
		return fmt.Errorf("persisting initial snapshot: %w", err)
	}

	s.log.WithField("path", s.path).Debug("Snapshot initialized")

	return nil
}

// Load reads and parses the snapshot file. Missing or corrupt files are
// treated as absent, not as errors.
func (s *fileStore) Load() *snapshot.RunSnapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Debug("Failed to read snapshot file")
		}

		return nil
	}

	var snap snapshot.RunSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.WithError(err).Debug("Failed to parse snapshot file")

		return nil
	}

	if snap.Specs == nil {
		snap.Specs = make(map[string]*snapshot.SpecRecord)
	}

	if snap.Tests == nil {
		snap.Tests = make(map[string]*snapshot.TestRecord)
	}

	return &snap
}

// Save writes the snapshot to a temp file in the same directory and renames
// it into place, so a concurrent reader never observes a half-written
// document.
func (s *fileStore) Save(snap *snapshot.RunSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("replacing snapshot file: %w", err)
	}

	return nil
}

// Cleanup removes the snapshot file. A missing file is not an error.
func (s *fileStore) Cleanup() error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("removing snapshot file: %w", err)
	}

	s.log.WithField("path", s.path).Debug("Snapshot removed")

	return nil
}

// Path returns the snapshot file location.
func (s *fileStore) Path() string {
	return s.path
}
