package collector

import (
	"fmt"
	"regexp"
	"strings"
)

// icsEvent is one VEVENT component of an iCalendar feed, limited to the
// properties the pipeline reads.
type icsEvent struct {
	UID         string
	Summary     string
	Description string
	Location    string
	DTStart     string
	DTEnd       string
	URL         string
}

var icsDateRe = regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`)

// parseICS splits an iCalendar feed into VEVENT components. Lines starting
// with whitespace are folded into the previous property value per the
// RFC 5545 line-folding rule. Components missing UID, SUMMARY, or DTSTART
// are dropped.
func parseICS(text string) []icsEvent {
	var events []icsEvent
	var current *icsEvent
	var key, value string

	flush := func() {
		if current != nil && key != "" {
			setICSProperty(current, key, value)
		}
		key, value = "", ""
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")

		// Continuation line: append to the property being accumulated.
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			value += line[1:]
			continue
		}

		flush()

		switch {
		case line == "BEGIN:VEVENT":
			current = &icsEvent{}
			continue
		case line == "END:VEVENT":
			if current != nil && current.UID != "" && current.Summary != "" && current.DTStart != "" {
				events = append(events, *current)
			}
			current = nil
			continue
		}

		if current == nil {
			continue
		}
		if idx := strings.Index(line, ":"); idx > 0 {
			// Property parameters (e.g. DTSTART;VALUE=DATE) are ignored.
			key = strings.SplitN(line[:idx], ";", 2)[0]
			value = line[idx+1:]
		}
	}

	return events
}

func setICSProperty(e *icsEvent, key, value string) {
	value = unescapeICS(value)
	switch strings.ToUpper(key) {
	case "UID":
		e.UID = value
	case "SUMMARY":
		e.Summary = value
	case "DESCRIPTION":
		e.Description = value
	case "LOCATION":
		e.Location = value
	case "DTSTART":
		e.DTStart = value
	case "DTEND":
		e.DTEnd = value
	case "URL":
		e.URL = value
	}
}

// unescapeICS decodes the backslash escapes RFC 5545 defines for text
// values.
func unescapeICS(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n', 'N':
			b.WriteByte('\n')
			i++
		case ',':
			b.WriteByte(',')
			i++
		case ';':
			b.WriteByte(';')
			i++
		case '\\':
			b.WriteByte('\\')
			i++
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// parseICSDate converts a compact iCalendar date ("20260315" or
// "20260315T090000Z") to YYYY-MM-DD.
func parseICSDate(s string) (string, error) {
	m := icsDateRe.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("invalid ICS date: %q", s)
	}
	return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]), nil
}
