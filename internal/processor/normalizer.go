// Package processor implements the normalization, deduplication, and
// validation stages of the marathon data pipeline. Each stage takes an
// input collection and produces a new one; nothing is mutated in place.
package processor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/marathonkr/marathon-pipeline/internal/event"
	"github.com/marathonkr/marathon-pipeline/internal/logger"
)

// distanceMap collapses the free-text distance labels sources use onto the
// controlled vocabulary. Keys are lower-cased and trimmed before lookup;
// labels with no entry pass through unchanged.
var distanceMap = map[string]string{
	"42.195km": "풀",
	"42.195":   "풀",
	"42km":     "풀",
	"42k":      "풀",
	"full":     "풀",
	"marathon": "풀",

	"21.0975km":     "하프",
	"21.0975":       "하프",
	"21km":          "하프",
	"21k":           "하프",
	"half":          "하프",
	"half marathon": "하프",

	"10km": "10km",
	"10k":  "10km",
	"5km":  "5km",
	"5k":   "5km",
	"3km":  "3km",
	"3k":   "3km",
}

// popularKeywords marks well-known majors. Substring match against the
// lower-cased event name.
var popularKeywords = []string{
	"서울마라톤", "동아마라톤", "중앙마라톤", "jtbc", "대구국제", "경주마라톤", "춘천마라톤",
	"boston", "new york", "berlin", "london", "tokyo", "chicago",
}

// Normalize converts raw collector output into canonical events. A record
// that fails to convert is logged and dropped; the batch never aborts.
func Normalize(raws []event.RawEvent) []event.Event {
	logger.Info("normalizing events", logger.Fields{"count": len(raws)})

	normalized := make([]event.Event, 0, len(raws))
	for _, raw := range raws {
		e, err := normalizeOne(raw)
		if err != nil {
			logger.Warn("normalization failed", logger.Fields{
				"name":   raw.Name,
				"source": string(raw.Source),
				"reason": err.Error(),
			})
			logger.IncrCounter("normalize.dropped")
			continue
		}
		normalized = append(normalized, e)
	}

	logger.Info("normalization finished", logger.Fields{
		"input":  len(raws),
		"output": len(normalized),
	})
	return normalized
}

func normalizeOne(raw event.RawEvent) (event.Event, error) {
	if raw.Source == "" || raw.SourceID == "" {
		return event.Event{}, fmt.Errorf("missing source identity")
	}
	if strings.TrimSpace(raw.Name) == "" {
		return event.Event{}, fmt.Errorf("missing name")
	}
	if raw.Date == "" {
		return event.Event{}, fmt.Errorf("missing date")
	}

	region := raw.Location.Region
	if region == "" {
		region = event.RegionOther
	}

	status := event.RegistrationUnknown
	regStart, regEnd := "", ""
	if raw.Registration != nil {
		if raw.Registration.Status != "" {
			status = raw.Registration.Status
		}
		regStart = raw.Registration.StartDate
		regEnd = raw.Registration.EndDate
	}

	return event.Event{
		ID:                 fmt.Sprintf("%s-%s", raw.Source, raw.SourceID),
		Name:               strings.TrimSpace(raw.Name),
		Date:               raw.Date,
		EndDate:            raw.EndDate,
		Country:            raw.Location.Country,
		Region:             region,
		LocationDetail:     raw.Location.Detail,
		Distances:          NormalizeDistances(raw.Distances),
		RegistrationURL:    raw.RegistrationURL,
		Organizer:          raw.Organizer,
		RegistrationStatus: status,
		RegistrationStart:  regStart,
		RegistrationEnd:    regEnd,
		Price:              raw.Price,
		Tags:               normalizeTags(raw.Tags, raw.Source),
		IsPopular:          detectPopular(raw.Name),
		Source:             raw.Source,
		LastUpdated:        time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// NormalizeDistances maps labels onto the controlled vocabulary, removes
// duplicates, and orders the result longest distance first. An empty input
// falls back to the full-marathon default so the set is never empty.
func NormalizeDistances(distances []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(distances))
	for _, d := range distances {
		label := d
		if mapped, ok := distanceMap[strings.ToLower(strings.TrimSpace(d))]; ok {
			label = mapped
		}
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	if len(out) == 0 {
		return []string{event.DefaultDistance}
	}
	SortDistances(out)
	return out
}

// SortDistances orders labels by the canonical priority, longest first.
// Labels outside the vocabulary sort after all recognized ones, keeping
// their relative order.
func SortDistances(distances []string) {
	sort.SliceStable(distances, func(i, j int) bool {
		a, b := distanceIndex(distances[i]), distanceIndex(distances[j])
		if a == -1 && b == -1 {
			return false
		}
		if a == -1 {
			return false
		}
		if b == -1 {
			return true
		}
		return a < b
	})
}

func distanceIndex(label string) int {
	for i, d := range event.DistanceOrder {
		if d == label {
			return i
		}
	}
	return -1
}

// normalizeTags deduplicates tags and appends source-derived ones. The
// international feed always contributes overseas and AIMS-certified tags.
func normalizeTags(tags []string, source event.Source) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(tags)+2)
	add := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	for _, t := range tags {
		add(t)
	}
	if source == event.SourceAims {
		add("해외대회")
		add("AIMS공인")
	}
	return out
}

func detectPopular(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range popularKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
