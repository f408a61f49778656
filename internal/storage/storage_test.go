package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marathonkr/marathon-pipeline/internal/event"
)

func testEvent(id, date string) event.Event {
	return event.Event{
		ID:                 id,
		Name:               "서울마라톤",
		Date:               date,
		Country:            event.CountryKR,
		Region:             "서울",
		Distances:          []string{"풀"},
		RegistrationStatus: event.RegistrationOpen,
		Tags:               []string{},
		Source:             event.SourceGoRunning,
		LastUpdated:        "2026-01-01T00:00:00Z",
	}
}

func TestWriteAndLoadEvents(t *testing.T) {
	store, err := New(t.TempDir(), true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	events := []event.Event{
		testEvent("gorunning-a", "2026-03-15"),
		testEvent("gorunning-b", "2026-10-25"),
	}
	if err := store.WriteEvents(FileAll, events); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}

	loaded, err := store.LoadEvents(FileAll)
	if err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "gorunning-a" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestWriteEventsNilBecomesEmptyArray(t *testing.T) {
	store, err := New(t.TempDir(), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := store.WriteEvents(FileKR, nil); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}

	data, err := os.ReadFile(store.Path(FileKR))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "[]" {
		t.Errorf("file content = %q, want empty JSON array", got)
	}
}

func TestLoadEventsMissingFile(t *testing.T) {
	store, err := New(t.TempDir(), true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events, err := store.LoadEvents(FileIntl)
	if err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store, err := New(t.TempDir(), true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(first.Events) != 0 {
		t.Errorf("fresh snapshot should be empty, got %d", len(first.Events))
	}

	events := []event.Event{testEvent("gorunning-a", "2026-03-15")}
	if err := store.SaveSnapshot(events); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	second, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if _, ok := second.Events["gorunning-a"]; !ok {
		t.Errorf("snapshot missing saved event: %+v", second.Events)
	}
	if second.UpdatedAt == "" {
		t.Error("UpdatedAt not set")
	}
}

func TestWriteJSONPrettyPrint(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := store.WriteJSON(FileMetadata, map[string]int{"totalEvents": 3}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileMetadata))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "\n") {
		t.Error("pretty output should be indented")
	}
	var decoded map[string]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["totalEvents"] != 3 {
		t.Errorf("decoded = %v", decoded)
	}
}
