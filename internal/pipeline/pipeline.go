// Package pipeline orchestrates a full collection run: every configured
// collector in sequence, then normalization, deduplication, validation,
// and finally the artifact files the frontend serves.
//
// A failing source never aborts the run; its status is recorded in the
// metadata artifact and the remaining sources proceed. Only a run where
// every source fails is treated as a pipeline error, so a previous good
// data set is never overwritten with an empty one.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/marathonkr/marathon-pipeline/internal/calendar"
	"github.com/marathonkr/marathon-pipeline/internal/collector"
	"github.com/marathonkr/marathon-pipeline/internal/event"
	"github.com/marathonkr/marathon-pipeline/internal/logger"
	"github.com/marathonkr/marathon-pipeline/internal/notifier"
	"github.com/marathonkr/marathon-pipeline/internal/processor"
	"github.com/marathonkr/marathon-pipeline/internal/storage"
)

// Version is stamped into the metadata artifact.
const Version = "1.0.0"

// CalendarName is the display name of the published calendar feed.
const CalendarName = "한국 마라톤 일정"

// SourceStatus summarizes one source's contribution to a run.
type SourceStatus struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // success, failed, or partial
	ItemCount   int    `json:"itemCount"`
	LastUpdated string `json:"lastUpdated"`
	Error       string `json:"error,omitempty"`
}

// Metadata is the run summary artifact.
type Metadata struct {
	LastRun          string         `json:"lastRun"`
	NextScheduledRun string         `json:"nextScheduledRun"`
	Sources          []SourceStatus `json:"sources"`
	TotalEvents      int            `json:"totalEvents"`
	KREvents         int            `json:"krEvents"`
	IntlEvents       int            `json:"intlEvents"`
	Version          string         `json:"version"`
}

// Report is what a completed run returns to its caller.
type Report struct {
	RunID      string
	Duration   time.Duration
	Sources    []SourceStatus
	DedupStats processor.DedupStats
	Dropped    int
	NewEvents  []event.Event
	Total      int
	KR         int
	Intl       int
}

// Pipeline wires collectors to the processing stages and the data store.
type Pipeline struct {
	collectors []collector.Collector
	store      *storage.Store
	notifier   notifier.Notifier
	runHourUTC int
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithNotifier announces newly discovered events after a successful run.
func WithNotifier(n notifier.Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithRunHour sets the UTC hour used to compute the next scheduled run.
func WithRunHour(hour int) Option {
	return func(p *Pipeline) { p.runHourUTC = hour }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New builds a pipeline over the given collectors and store.
func New(collectors []collector.Collector, store *storage.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		collectors: collectors,
		store:      store,
		runHourUTC: 21,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one full collection cycle and writes every artifact.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	started := p.now().UTC()
	runID := uuid.NewString()
	logger.Info("pipeline run starting", logger.Fields{"runId": runID, "sources": len(p.collectors)})

	var (
		raws     []event.RawEvent
		statuses []SourceStatus
		failures int
	)
	for _, c := range p.collectors {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline canceled: %w", err)
		}

		collectStart := p.now()
		result := c.Collect(ctx)
		logger.RecordTiming(fmt.Sprintf("collect.%s", c.Name()), p.now().Sub(collectStart))

		status := sourceStatus(result)
		statuses = append(statuses, status)
		if !result.Success {
			failures++
			logger.Error("source failed", logger.Fields{"source": string(c.Name())}, errors.New(result.Error))
			continue
		}
		raws = append(raws, result.Events...)
	}

	if len(p.collectors) > 0 && failures == len(p.collectors) {
		return nil, fmt.Errorf("all %d sources failed, keeping previous artifacts", failures)
	}

	normalized := processor.Normalize(raws)
	deduped := processor.Deduplicate(normalized)
	validated := processor.Validate(deduped.Events)

	events := validated.Valid
	sortEvents(events)

	kr, intl := partition(events)

	previous, err := p.store.LoadSnapshot()
	if err != nil {
		logger.Warn("previous snapshot unreadable, treating all events as new", logger.Fields{"error": err.Error()})
		previous = event.NewSnapshot()
	}
	diff := event.Diff(previous, events)

	if err := p.writeArtifacts(events, kr, intl, statuses, started); err != nil {
		return nil, err
	}

	if p.notifier != nil && len(diff.NewEvents) > 0 {
		if err := p.notifier.Notify(diff.NewEvents); err != nil {
			logger.Error("announcing new events failed", logger.Fields{"count": len(diff.NewEvents)}, err)
		}
	}

	report := &Report{
		RunID:      runID,
		Duration:   p.now().UTC().Sub(started),
		Sources:    statuses,
		DedupStats: deduped.Stats,
		Dropped:    len(deduped.Events) - len(events),
		NewEvents:  diff.NewEvents,
		Total:      len(events),
		KR:         len(kr),
		Intl:       len(intl),
	}

	logger.Info("pipeline run finished", logger.Fields{
		"runId":      runID,
		"total":      report.Total,
		"kr":         report.KR,
		"intl":       report.Intl,
		"new":        len(report.NewEvents),
		"durationMs": report.Duration.Milliseconds(),
	})
	return report, nil
}

func (p *Pipeline) writeArtifacts(all, kr, intl []event.Event, statuses []SourceStatus, started time.Time) error {
	if err := p.store.WriteEvents(storage.FileAll, all); err != nil {
		return err
	}
	if err := p.store.WriteEvents(storage.FileKR, kr); err != nil {
		return err
	}
	if err := p.store.WriteEvents(storage.FileIntl, intl); err != nil {
		return err
	}

	meta := Metadata{
		LastRun:          started.Format(time.RFC3339),
		NextScheduledRun: NextRun(started, p.runHourUTC).Format(time.RFC3339),
		Sources:          statuses,
		TotalEvents:      len(all),
		KREvents:         len(kr),
		IntlEvents:       len(intl),
		Version:          Version,
	}
	if err := p.store.WriteJSON(storage.FileMetadata, meta); err != nil {
		return err
	}

	if err := p.store.WriteText(storage.FileCalendar, calendar.GenerateCalendar(all, CalendarName)); err != nil {
		return err
	}

	return p.store.SaveSnapshot(all)
}

// NextRun returns the next occurrence of hourUTC:00 strictly after t.
func NextRun(t time.Time, hourUTC int) time.Time {
	t = t.UTC()
	next := time.Date(t.Year(), t.Month(), t.Day(), hourUTC, 0, 0, 0, time.UTC)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func sourceStatus(r collector.Result) SourceStatus {
	status := SourceStatus{
		Name:        string(r.Source),
		ItemCount:   r.Metadata.ProcessedCount,
		LastUpdated: r.Metadata.CollectedAt,
		Error:       r.Error,
	}
	switch {
	case !r.Success:
		status.Status = "failed"
	case r.Metadata.ProcessedCount < r.Metadata.TotalFound:
		status.Status = "partial"
	default:
		status.Status = "success"
	}
	return status
}

func partition(events []event.Event) (kr, intl []event.Event) {
	kr = make([]event.Event, 0, len(events))
	intl = make([]event.Event, 0)
	for _, e := range events {
		if e.Country == event.CountryKR {
			kr = append(kr, e)
		} else {
			intl = append(intl, e)
		}
	}
	return kr, intl
}

func sortEvents(events []event.Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].ID < events[j].ID
	})
}
