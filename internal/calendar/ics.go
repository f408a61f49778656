// Package calendar renders events as iCalendar documents so runners can
// subscribe to the race schedule.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marathonkr/marathon-pipeline/internal/event"
)

const prodID = "-//MarathonKR//marathon-pipeline//KO"

// uidNamespace makes event UIDs deterministic: the same event ID always
// produces the same UID, so re-imports update instead of duplicating.
var uidNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// reminderOffsets are the alarm lead times attached to every event.
var reminderOffsets = []string{"-P7D", "-P1D"}

// GenerateICS renders a single event as a standalone calendar document.
func GenerateICS(e event.Event) string {
	var b strings.Builder
	writeCalendarHeader(&b)
	writeEvent(&b, e, time.Now().UTC())
	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

// GenerateCalendar renders a full schedule as one calendar document with
// every event inside.
func GenerateCalendar(events []event.Event, name string) string {
	var b strings.Builder
	writeCalendarHeader(&b)
	if name != "" {
		b.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(name)))
	}
	now := time.Now().UTC()
	for _, e := range events {
		writeEvent(&b, e, now)
	}
	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

func writeCalendarHeader(b *strings.Builder) {
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString(fmt.Sprintf("PRODID:%s\r\n", prodID))
	b.WriteString("CALSCALE:GREGORIAN\r\n")
	b.WriteString("METHOD:PUBLISH\r\n")
}

func writeEvent(b *strings.Builder, e event.Event, now time.Time) {
	b.WriteString("BEGIN:VEVENT\r\n")
	b.WriteString(fmt.Sprintf("UID:%s@marathonkr.github.io\r\n", EventUID(e)))
	b.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", now.Format("20060102T150405Z")))

	// Races are all-day entries; start times vary per distance and are not
	// tracked in the feed.
	b.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", compactDate(e.Date)))
	end := e.EndDate
	if end == "" {
		end = e.Date
	}
	// DTEND for VALUE=DATE is exclusive.
	b.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", compactDate(nextDay(end))))

	b.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(e.Name)))
	b.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description(e))))
	if loc := location(e); loc != "" {
		b.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(loc)))
	}
	if e.RegistrationURL != "" {
		b.WriteString(fmt.Sprintf("URL:%s\r\n", e.RegistrationURL))
	}
	b.WriteString("STATUS:CONFIRMED\r\n")
	b.WriteString("SEQUENCE:0\r\n")
	b.WriteString("TRANSP:TRANSPARENT\r\n")

	for _, offset := range reminderOffsets {
		b.WriteString("BEGIN:VALARM\r\n")
		b.WriteString("ACTION:DISPLAY\r\n")
		b.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(e.Name)))
		b.WriteString(fmt.Sprintf("TRIGGER:%s\r\n", offset))
		b.WriteString("END:VALARM\r\n")
	}

	b.WriteString("END:VEVENT\r\n")
}

// EventUID returns the deterministic calendar UID for an event.
func EventUID(e event.Event) string {
	return uuid.NewSHA1(uidNamespace, []byte(e.ID)).String()
}

func description(e event.Event) string {
	var parts []string
	if len(e.Distances) > 0 {
		parts = append(parts, fmt.Sprintf("종목: %s", strings.Join(e.Distances, ", ")))
	}
	if e.Organizer != "" {
		parts = append(parts, fmt.Sprintf("주최: %s", e.Organizer))
	}
	if e.RegistrationURL != "" {
		parts = append(parts, fmt.Sprintf("접수: %s", e.RegistrationURL))
	}
	return strings.Join(parts, "\n")
}

func location(e event.Event) string {
	switch {
	case e.LocationDetail != "" && e.Region != "" && e.Region != event.RegionOther:
		return fmt.Sprintf("%s, %s", e.LocationDetail, e.Region)
	case e.LocationDetail != "":
		return e.LocationDetail
	case e.Region != "" && e.Region != event.RegionOther:
		return e.Region
	}
	return ""
}

// compactDate converts YYYY-MM-DD to YYYYMMDD.
func compactDate(date string) string {
	return strings.ReplaceAll(date, "-", "")
}

func nextDay(date string) string {
	t, err := time.Parse(event.ISODate, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, 1).Format(event.ISODate)
}

// escapeICS escapes text per RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
