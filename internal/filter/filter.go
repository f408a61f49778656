// Package filter narrows an event list down to the records a viewer asked
// for. All criteria are conjunctive: an event must satisfy every active
// one. An empty filter matches everything.
package filter

import (
	"strings"
	"time"

	"github.com/marathonkr/marathon-pipeline/internal/event"
)

// Filter holds the selection criteria for an event listing.
type Filter struct {
	// Country limits results to one country code.
	Country event.CountryCode `json:"country,omitempty"`

	// Regions limits results to these regions (exact match).
	Regions []string `json:"regions,omitempty"`

	// Distances requires at least one of these distance labels.
	Distances []string `json:"distances,omitempty"`

	// Date range, inclusive on both ends.
	DateFrom *time.Time `json:"dateFrom,omitempty"`
	DateTo   *time.Time `json:"dateTo,omitempty"`

	// UpcomingOnly drops events whose date has passed.
	UpcomingOnly bool `json:"upcomingOnly,omitempty"`

	// PopularOnly keeps only events flagged as majors.
	PopularOnly bool `json:"popularOnly,omitempty"`

	// Keyword is matched case-insensitively against name, organizer,
	// location detail, and tags.
	Keyword string `json:"keyword,omitempty"`
}

// New returns a filter with no active criteria.
func New() *Filter {
	return &Filter{}
}

// IsEmpty reports whether the filter would match every event.
func (f *Filter) IsEmpty() bool {
	return f.Country == "" &&
		len(f.Regions) == 0 &&
		len(f.Distances) == 0 &&
		f.DateFrom == nil &&
		f.DateTo == nil &&
		!f.UpcomingOnly &&
		!f.PopularOnly &&
		f.Keyword == ""
}

// Matches reports whether e satisfies every active criterion.
func (f *Filter) Matches(e event.Event) bool {
	if f.Country != "" && e.Country != f.Country {
		return false
	}

	if len(f.Regions) > 0 && !containsString(f.Regions, e.Region) {
		return false
	}

	if len(f.Distances) > 0 && !intersects(e.Distances, f.Distances) {
		return false
	}

	if f.DateFrom != nil || f.DateTo != nil || f.UpcomingOnly {
		start := e.StartTime()
		if start.IsZero() {
			return false
		}
		if f.DateFrom != nil && start.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && start.After(*f.DateTo) {
			return false
		}
		if f.UpcomingOnly && e.IsPast() {
			return false
		}
	}

	if f.PopularOnly && !e.IsPopular {
		return false
	}

	if f.Keyword != "" && !matchesKeyword(e, f.Keyword) {
		return false
	}

	return true
}

// Apply returns the events that match, preserving input order.
func (f *Filter) Apply(events []event.Event) []event.Event {
	if f.IsEmpty() {
		return events
	}
	out := make([]event.Event, 0, len(events))
	for _, e := range events {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func matchesKeyword(e event.Event, keyword string) bool {
	kw := strings.ToLower(keyword)
	if strings.Contains(strings.ToLower(e.Name), kw) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Organizer), kw) {
		return true
	}
	if strings.Contains(strings.ToLower(e.LocationDetail), kw) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), kw) {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if containsString(b, x) {
			return true
		}
	}
	return false
}
