package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/marathonkr/marathon-pipeline/internal/event"
	"github.com/marathonkr/marathon-pipeline/internal/pipeline"
)

// OutputFormat specifies the listing output format.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteEvents writes an event listing in the requested format.
func WriteEvents(w io.Writer, events []event.Event, format OutputFormat) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(events)
	case FormatText:
		writeTable(w, events)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

var tableHeader = []string{"DATE", "NAME", "REGION", "DISTANCES", "STATUS", "SOURCE"}

// writeTable renders events as an aligned text table. Column widths are
// computed with display widths so Hangul names line up.
func writeTable(w io.Writer, events []event.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.Date,
			e.Name,
			e.Region,
			strings.Join(e.Distances, ", "),
			string(e.RegistrationStatus),
			string(e.Source),
		})
	}

	widths := make([]int, len(tableHeader))
	for i, h := range tableHeader {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	writeRow(w, tableHeader, widths)
	sep := make([]string, len(widths))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}
	writeRow(w, sep, widths)
	for _, row := range rows {
		writeRow(w, row, widths)
	}
	fmt.Fprintf(w, "\nTotal: %d events\n", len(events))
}

func writeRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = runewidth.FillRight(cell, widths[i])
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}

const timeRounding = 10 * time.Millisecond

// WriteReport prints a human-readable run summary.
func WriteReport(w io.Writer, report *pipeline.Report) {
	fmt.Fprintf(w, "Run %s finished in %s\n\n", report.RunID, report.Duration.Round(timeRounding))

	for _, s := range report.Sources {
		line := fmt.Sprintf("  %-12s %-8s %d events", s.Name, s.Status, s.ItemCount)
		if s.Error != "" {
			line += fmt.Sprintf(" (%s)", s.Error)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "\nMerged %d duplicates, dropped %d invalid records\n",
		report.DedupStats.DuplicatesFound, report.Dropped)
	fmt.Fprintf(w, "Published %d events (%d KR, %d international)\n",
		report.Total, report.KR, report.Intl)

	if len(report.NewEvents) > 0 {
		fmt.Fprintf(w, "\n%d new events:\n", len(report.NewEvents))
		for _, e := range report.NewEvents {
			fmt.Fprintf(w, "  NEW: %s  %s\n", e.Date, e.Name)
		}
	}
}
