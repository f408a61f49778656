// Package storage persists pipeline artifacts as JSON files under a data
// directory, in the layout the frontend consumes.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marathonkr/marathon-pipeline/internal/event"
)

// Artifact file names within the data directory.
const (
	FileAll      = "marathons.json"
	FileKR       = "marathons-kr.json"
	FileIntl     = "marathons-intl.json"
	FileMetadata = "metadata.json"
	FileCalendar = "marathons.ics"

	snapshotFile = "snapshot.json"
)

// Store reads and writes pipeline artifacts under a single data directory.
type Store struct {
	dataDir string
	pretty  bool
}

// New creates a Store rooted at dataDir, creating the directory if needed.
// A leading ~/ is expanded to the user's home directory.
func New(dataDir string, pretty bool) (*Store, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{dataDir: dataDir, pretty: pretty}, nil
}

// Path returns the absolute path of an artifact file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dataDir, name)
}

// WriteJSON marshals v and writes it to name inside the data directory.
func (s *Store) WriteJSON(name string, v any) error {
	var (
		data []byte
		err  error
	)
	if s.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	if err := os.WriteFile(s.Path(name), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// WriteText writes a plain-text artifact such as the calendar feed.
func (s *Store) WriteText(name, content string) error {
	if err := os.WriteFile(s.Path(name), []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// WriteEvents writes an event list artifact.
func (s *Store) WriteEvents(name string, events []event.Event) error {
	if events == nil {
		events = []event.Event{}
	}
	return s.WriteJSON(name, events)
}

// LoadEvents reads an event list artifact. A missing file yields an empty
// list rather than an error.
func (s *Store) LoadEvents(name string) ([]event.Event, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return []event.Event{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	var events []event.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return events, nil
}

// LoadSnapshot loads the previous run's snapshot. A missing file yields an
// empty snapshot so first runs treat every event as new.
func (s *Store) LoadSnapshot() (*event.Snapshot, error) {
	data, err := os.ReadFile(s.Path(snapshotFile))
	if err != nil {
		if os.IsNotExist(err) {
			return event.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot event.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snapshot.Events == nil {
		snapshot.Events = make(map[string]event.Event)
	}
	return &snapshot, nil
}

// SaveSnapshot persists the current run's events as the new snapshot.
func (s *Store) SaveSnapshot(events []event.Event) error {
	snapshot := event.SnapshotOf(events, time.Now().UTC().Format(time.RFC3339))
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(s.Path(snapshotFile), data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
