package event

import "sort"

// Snapshot is the set of published events from a previous pipeline run,
// keyed by event ID.
type Snapshot struct {
	Events    map[string]Event `json:"events"`
	UpdatedAt string           `json:"updatedAt"`
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Events: make(map[string]Event)}
}

// SnapshotOf builds a snapshot from a list of events.
func SnapshotOf(events []Event, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt
	for _, e := range events {
		snap.Events[e.ID] = e
	}
	return snap
}

// DiffResult holds the events that appeared since the previous run.
type DiffResult struct {
	NewEvents []Event
	ByCountry map[CountryCode][]Event
}

// Diff compares current events against a previous snapshot and returns
// the ones not seen before. A nil previous snapshot marks everything new.
func Diff(previous *Snapshot, current []Event) *DiffResult {
	result := &DiffResult{
		NewEvents: make([]Event, 0),
		ByCountry: make(map[CountryCode][]Event),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	for _, e := range current {
		if _, exists := previous.Events[e.ID]; exists {
			continue
		}
		result.NewEvents = append(result.NewEvents, e)
		result.ByCountry[e.Country] = append(result.ByCountry[e.Country], e)
	}

	sort.Slice(result.NewEvents, func(i, j int) bool {
		if result.NewEvents[i].Date != result.NewEvents[j].Date {
			return result.NewEvents[i].Date < result.NewEvents[j].Date
		}
		return result.NewEvents[i].ID < result.NewEvents[j].ID
	})
	for c := range result.ByCountry {
		events := result.ByCountry[c]
		sort.Slice(events, func(i, j int) bool {
			if events[i].Date != events[j].Date {
				return events[i].Date < events[j].Date
			}
			return events[i].ID < events[j].ID
		})
	}

	return result
}
