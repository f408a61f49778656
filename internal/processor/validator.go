package processor

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/marathonkr/marathon-pipeline/internal/event"
	"github.com/marathonkr/marathon-pipeline/internal/logger"
)

// maxFutureYears is how far ahead an event date may lie before the record
// is rejected as implausible.
const maxFutureYears = 2

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// InvalidEvent pairs a rejected record with everything wrong with it.
type InvalidEvent struct {
	Event  event.Event `json:"event"`
	Errors []string    `json:"errors"`
}

// ValidationIssue is one non-fatal finding on one record.
type ValidationIssue struct {
	EventID string `json:"eventId"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult partitions a batch into records that passed and
// records that were rejected. Warnings do not remove a record.
type ValidationResult struct {
	Valid    []event.Event     `json:"valid"`
	Invalid  []InvalidEvent    `json:"invalid"`
	Warnings []ValidationIssue `json:"warnings"`
}

// Validate checks every record against the canonical schema and drops the
// ones that cannot be published. Every rule runs on every record; nothing
// short-circuits, so a rejected record carries all its errors. Suspicious
// but publishable records (past dates, malformed registration URLs) stay
// in the output with a warning.
func Validate(events []event.Event) ValidationResult {
	result := ValidationResult{Valid: make([]event.Event, 0, len(events))}
	now := time.Now().UTC()

	for _, e := range events {
		errs, warns := checkEvent(e, now)
		result.Warnings = append(result.Warnings, warns...)

		if len(errs) > 0 {
			result.Invalid = append(result.Invalid, InvalidEvent{Event: e, Errors: errs})
			logger.Warn("dropping invalid event", logger.Fields{
				"id":     e.ID,
				"errors": strings.Join(errs, "; "),
			})
			continue
		}
		result.Valid = append(result.Valid, e)
	}

	logger.Info("validation finished", logger.Fields{
		"input":    len(events),
		"valid":    len(result.Valid),
		"invalid":  len(result.Invalid),
		"warnings": len(result.Warnings),
	})
	return result
}

func checkEvent(e event.Event, now time.Time) (errs []string, warns []ValidationIssue) {
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}
	warn := func(field, message string) {
		warns = append(warns, ValidationIssue{EventID: e.ID, Field: field, Message: message})
	}

	if strings.TrimSpace(e.ID) == "" {
		fail("missing id")
	}
	if strings.TrimSpace(e.Name) == "" {
		fail("missing name")
	}
	if !e.Source.Valid() {
		fail("unknown source %q", e.Source)
	}
	if !e.Country.Valid() {
		fail("unknown country code %q", e.Country)
	}
	if !e.RegistrationStatus.Valid() {
		fail("unknown registration status %q", e.RegistrationStatus)
	}
	if len(e.Distances) == 0 {
		fail("at least one distance is required")
	}
	if _, err := time.Parse(time.RFC3339, e.LastUpdated); err != nil {
		fail("lastUpdated %q is not RFC 3339", e.LastUpdated)
	}

	switch {
	case e.Date == "":
		fail("missing date")
	case !isoDateRe.MatchString(e.Date):
		fail("date %q is not YYYY-MM-DD", e.Date)
	default:
		start, err := time.Parse(event.ISODate, e.Date)
		if err != nil {
			fail("date %q is not a real calendar date", e.Date)
			break
		}
		if start.After(now.AddDate(maxFutureYears, 0, 0)) {
			fail("date %s is more than %d years in the future", e.Date, maxFutureYears)
		} else if start.Before(now.Truncate(24 * time.Hour)) {
			warn("date", fmt.Sprintf("date %s is in the past", e.Date))
		}
	}

	if e.EndDate != "" {
		if !isoDateRe.MatchString(e.EndDate) {
			fail("end date %q is not YYYY-MM-DD", e.EndDate)
		} else if e.Date != "" && e.EndDate < e.Date {
			fail("end date %s precedes start date %s", e.EndDate, e.Date)
		}
	}

	if e.RegistrationURL != "" && !validHTTPURL(e.RegistrationURL) {
		warn("registrationUrl", fmt.Sprintf("registration URL %q is not a valid http(s) URL", e.RegistrationURL))
	}

	return errs, warns
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
