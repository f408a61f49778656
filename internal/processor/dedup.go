package processor

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/marathonkr/marathon-pipeline/internal/event"
	"github.com/marathonkr/marathon-pipeline/internal/logger"
)

// SimilarityThreshold is the minimum name similarity (percent) for two
// records to be treated as the same event in the fuzzy pass.
const SimilarityThreshold = 85.0

// fuzzyDateWindow is how many calendar days apart two records may start
// and still be fuzzy-match candidates.
const fuzzyDateWindow = 1

// DedupStats summarizes one deduplication pass.
type DedupStats struct {
	TotalInput      int `json:"totalInput"`
	DuplicatesFound int `json:"duplicatesFound"`
	Merged          int `json:"merged"`
	FinalCount      int `json:"finalCount"`
}

// DuplicateLogEntry records one merge for auditing.
type DuplicateLogEntry struct {
	Kept    string   `json:"kept"`
	Removed []string `json:"removed"`
	Reason  string   `json:"reason"`
}

// DeduplicationResult is the output of Deduplicate.
type DeduplicationResult struct {
	Events       []event.Event       `json:"events"`
	Stats        DedupStats          `json:"stats"`
	DuplicateLog []DuplicateLogEntry `json:"duplicateLog"`
}

// Deduplicate merges records that describe the same real-world event.
//
// Records are visited in ascending source-priority order so the
// higher-priority source's identity survives a collision; ties keep the
// encounter order of the input list (stable sort). An exact-key pass
// catches same-convention duplicates cheaply; the fuzzy pass compares
// names by edit distance for records within one day and the same country.
// Deterministic for a fixed input order, and idempotent: running it on
// its own output merges nothing further.
func Deduplicate(events []event.Event) DeduplicationResult {
	logger.Info("deduplicating events", logger.Fields{"count": len(events)})

	sorted := make([]event.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Source.Priority() < sorted[j].Source.Priority()
	})

	slots := make(map[string]event.Event)
	var order []string
	var duplicateLog []DuplicateLogEntry
	duplicatesFound, merged := 0, 0

	for _, e := range sorted {
		key := ExactKey(e)

		if existing, ok := slots[key]; ok {
			slots[key] = Merge(existing, e)
			duplicatesFound++
			merged++
			duplicateLog = append(duplicateLog, DuplicateLogEntry{
				Kept:    existing.ID,
				Removed: []string{e.ID},
				Reason:  fmt.Sprintf("exact match: %s", key),
			})
			logger.Debug("exact duplicate", logger.Fields{"kept": existing.ID, "removed": e.ID})
			continue
		}

		if matchKey, similarity, ok := findFuzzyMatch(e, slots, order); ok {
			existing := slots[matchKey]
			slots[matchKey] = Merge(existing, e)
			duplicatesFound++
			merged++
			duplicateLog = append(duplicateLog, DuplicateLogEntry{
				Kept:    existing.ID,
				Removed: []string{e.ID},
				Reason:  fmt.Sprintf("fuzzy match (similarity: %.1f%%)", similarity),
			})
			logger.Debug("fuzzy duplicate", logger.Fields{
				"kept":       existing.ID,
				"removed":    e.ID,
				"similarity": similarity,
			})
			continue
		}

		slots[key] = e.Clone()
		order = append(order, key)
	}

	out := make([]event.Event, 0, len(order))
	for _, key := range order {
		out = append(out, slots[key])
	}

	result := DeduplicationResult{
		Events: out,
		Stats: DedupStats{
			TotalInput:      len(events),
			DuplicatesFound: duplicatesFound,
			Merged:          merged,
			FinalCount:      len(out),
		},
		DuplicateLog: duplicateLog,
	}

	logger.Info("deduplication finished", logger.Fields{
		"input":      len(events),
		"output":     len(out),
		"duplicates": duplicatesFound,
	})
	return result
}

var (
	whitespaceRe     = regexp.MustCompile(`\s+`)
	ordinalRe        = regexp.MustCompile(`제\d+회`)
	yearTokenRe      = regexp.MustCompile(`\d{4}년?`)
	nonAlnumHangulRe = regexp.MustCompile(`[^0-9A-Za-z_가-힣]`)
)

// ExactKey builds the cheap duplicate-detection key: the event name with
// whitespace, 제N회 ordinal prefixes, four-digit year tokens, and any
// character outside alphanumerics/Hangul removed, lower-cased, then joined
// with the literal date and country code. Stable for a fixed
// (name, date, country) triple regardless of record order.
func ExactKey(e event.Event) string {
	name := whitespaceRe.ReplaceAllString(e.Name, "")
	name = ordinalRe.ReplaceAllString(name, "")
	name = yearTokenRe.ReplaceAllString(name, "")
	name = nonAlnumHangulRe.ReplaceAllString(name, "")
	name = strings.ToLower(name)
	return fmt.Sprintf("%s-%s-%s", name, e.Date, e.Country)
}

// findFuzzyMatch scans the surviving slots in insertion order for the
// first event close enough to e: within one day, same country, compatible
// region, and name similarity at or above the threshold.
func findFuzzyMatch(e event.Event, slots map[string]event.Event, order []string) (string, float64, bool) {
	for _, key := range order {
		candidate := slots[key]

		if !event.DatesWithin(e.Date, candidate.Date, fuzzyDateWindow) {
			continue
		}
		if e.Country != candidate.Country {
			continue
		}
		if regionKnown(e.Region) && regionKnown(candidate.Region) && e.Region != candidate.Region {
			continue
		}

		similarity := Similarity(e.Name, candidate.Name)
		if similarity >= SimilarityThreshold {
			return key, similarity, true
		}
	}
	return "", 0, false
}

func regionKnown(region string) bool {
	return region != "" && region != event.RegionOther
}

// Similarity computes name similarity as a percentage:
// 100 * (maxLen - editDistance) / maxLen over case-insensitive,
// whitespace-stripped names. Two empty names are fully similar.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(whitespaceRe.ReplaceAllString(a, "")))
	rb := []rune(strings.ToLower(whitespaceRe.ReplaceAllString(b, "")))

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 100
	}
	return float64(maxLen-levenshtein(ra, rb)) / float64(maxLen) * 100
}

// levenshtein is the standard single-character edit distance with a
// two-row table.
func levenshtein(a, b []rune) int {
	m, n := len(a), len(b)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = 1 + min3(prev[j], curr[j-1], prev[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Merge combines two records for the same event. The result is a copy of
// primary with empty optional fields backfilled from secondary; distances
// and tags become the union of both sets (primary's order first). The
// primary side's identity fields always win. Neither input is mutated.
func Merge(primary, secondary event.Event) event.Event {
	merged := primary.Clone()

	if merged.LocationDetail == "" {
		merged.LocationDetail = secondary.LocationDetail
	}
	if merged.Organizer == "" {
		merged.Organizer = secondary.Organizer
	}
	if merged.RegistrationURL == "" {
		merged.RegistrationURL = secondary.RegistrationURL
	}
	if merged.RegistrationStart == "" {
		merged.RegistrationStart = secondary.RegistrationStart
	}
	if merged.RegistrationEnd == "" {
		merged.RegistrationEnd = secondary.RegistrationEnd
	}
	if merged.Price == nil {
		merged.Price = append([]event.PriceEntry(nil), secondary.Price...)
	}

	merged.Distances = unionStrings(merged.Distances, secondary.Distances)
	merged.Tags = unionStrings(merged.Tags, secondary.Tags)
	merged.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	return merged
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
