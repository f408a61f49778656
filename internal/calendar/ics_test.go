package calendar

import (
	"strings"
	"testing"

	"github.com/marathonkr/marathon-pipeline/internal/event"
)

func seoulMarathon() event.Event {
	return event.Event{
		ID:                 "gorunning-seoul-marathon-20260315",
		Name:               "2026 서울마라톤",
		Date:               "2026-03-15",
		Country:            event.CountryKR,
		Region:             "서울",
		LocationDetail:     "광화문광장",
		Distances:          []string{"풀", "10km"},
		RegistrationURL:    "https://gorunning.kr/races/1",
		Organizer:          "서울시체육회",
		RegistrationStatus: event.RegistrationOpen,
		Tags:               []string{},
		Source:             event.SourceGoRunning,
	}
}

func TestGenerateICS(t *testing.T) {
	ics := GenerateICS(seoulMarathon())

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//MarathonKR//marathon-pipeline//KO",
		"BEGIN:VEVENT",
		"DTSTAMP:",
		"DTSTART;VALUE=DATE:20260315",
		"DTEND;VALUE=DATE:20260316", // exclusive end, day after
		"SUMMARY:2026 서울마라톤",
		"DESCRIPTION:종목: 풀\\, 10km",
		"LOCATION:광화문광장\\, 서울",
		"URL:https://gorunning.kr/races/1",
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	if !strings.Contains(ics, "\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestGenerateICS_Reminders(t *testing.T) {
	ics := GenerateICS(seoulMarathon())

	if got := strings.Count(ics, "BEGIN:VALARM"); got != 2 {
		t.Errorf("got %d alarms, want 2", got)
	}
	if !strings.Contains(ics, "TRIGGER:-P7D") {
		t.Error("missing one-week reminder")
	}
	if !strings.Contains(ics, "TRIGGER:-P1D") {
		t.Error("missing one-day reminder")
	}
}

func TestGenerateICS_MultiDayEvent(t *testing.T) {
	e := seoulMarathon()
	e.EndDate = "2026-03-16"

	ics := GenerateICS(e)
	if !strings.Contains(ics, "DTEND;VALUE=DATE:20260317") {
		t.Error("multi-day event should end the day after its last day")
	}
}

func TestEventUIDDeterministic(t *testing.T) {
	e := seoulMarathon()
	if EventUID(e) != EventUID(e) {
		t.Error("UID must be stable for the same event ID")
	}

	other := e
	other.ID = "aims-berlin-2026"
	if EventUID(e) == EventUID(other) {
		t.Error("different event IDs must produce different UIDs")
	}
}

func TestGenerateCalendar(t *testing.T) {
	a := seoulMarathon()
	b := seoulMarathon()
	b.ID = "gorunning-chuncheon-20261025"
	b.Name = "춘천마라톤"
	b.Date = "2026-10-25"

	ics := GenerateCalendar([]event.Event{a, b}, "한국 마라톤 일정")

	if !strings.Contains(ics, "X-WR-CALNAME:한국 마라톤 일정") {
		t.Error("missing calendar name")
	}
	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("got %d VEVENTs, want 2", got)
	}
	if got := strings.Count(ics, "BEGIN:VCALENDAR"); got != 1 {
		t.Errorf("got %d VCALENDARs, want 1", got)
	}
}

func TestGenerateCalendar_NoName(t *testing.T) {
	ics := GenerateCalendar([]event.Event{seoulMarathon()}, "")
	if strings.Contains(ics, "X-WR-CALNAME:") {
		t.Error("empty name should omit X-WR-CALNAME")
	}
}

func TestGenerateCalendar_Empty(t *testing.T) {
	ics := GenerateCalendar(nil, "빈 달력")
	if !strings.Contains(ics, "BEGIN:VCALENDAR") || !strings.Contains(ics, "END:VCALENDAR") {
		t.Error("empty calendar should still be a valid document")
	}
	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("empty calendar should carry no events")
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple text", "Simple text"},
		{"Text with, comma", "Text with\\, comma"},
		{"Text with; semicolon", "Text with\\; semicolon"},
		{"Text with\\backslash", "Text with\\\\backslash"},
		{"Text with\nnewline", "Text with\\nnewline"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapeICS(tt.input); got != tt.expected {
				t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
