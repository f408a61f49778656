// Package collector provides source-specific adapters that pull raw
// marathon event records from external listings.
//
// Every collector converts fetch and parse failures into a failed Result
// at its boundary; nothing propagates past Collect. A single malformed
// record never aborts collection of the remainder.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/marathonkr/marathon-pipeline/internal/event"
)

// Metadata describes one collection run.
type Metadata struct {
	CollectedAt    string `json:"collectedAt"`
	TotalFound     int    `json:"totalFound"`
	ProcessedCount int    `json:"processedCount"`
	DurationMs     int64  `json:"durationMs,omitempty"`
}

// Result is the outcome of one collector run.
type Result struct {
	Success  bool
	Source   event.Source
	Events   []event.RawEvent
	Error    string
	Metadata Metadata
}

// Collector fetches raw events from one external source.
type Collector interface {
	Name() event.Source
	Collect(ctx context.Context) Result
}

func success(src event.Source, events []event.RawEvent, totalFound int, started time.Time) Result {
	return Result{
		Success: true,
		Source:  src,
		Events:  events,
		Metadata: Metadata{
			CollectedAt:    time.Now().UTC().Format(time.RFC3339),
			TotalFound:     totalFound,
			ProcessedCount: len(events),
			DurationMs:     time.Since(started).Milliseconds(),
		},
	}
}

func failure(src event.Source, started time.Time, err error) Result {
	return Result{
		Success: false,
		Source:  src,
		Events:  []event.RawEvent{},
		Error:   err.Error(),
		Metadata: Metadata{
			CollectedAt: time.Now().UTC().Format(time.RFC3339),
			DurationMs:  time.Since(started).Milliseconds(),
		},
	}
}

// guard converts a panic inside a collector into a failed Result so the
// Collect contract holds even for unexpected parser bugs.
func guard(src event.Source, started time.Time, res *Result) {
	if r := recover(); r != nil {
		*res = failure(src, started, fmt.Errorf("collector panic: %v", r))
	}
}
