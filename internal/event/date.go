package event

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ISODate is the canonical date layout used across the pipeline.
const ISODate = "2006-01-02"

var (
	yearFirstRe  = regexp.MustCompile(`(\d{4})[./](\d{1,2})[./](\d{1,2})`)
	isoRe        = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	koreanFullRe = regexp.MustCompile(`(\d{4})년?\s*(\d{1,2})월\s*(\d{1,2})일?`)
	koreanRe     = regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일?`)
	shortRe      = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})$`)
)

func isoDate(year, month, day string) string {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// ParseFlexible converts a source-specific date string to YYYY-MM-DD.
// Supported shapes: "2026.03.15", "2026/03/15", "2026-03-15",
// "2026년 3월 15일", "3월 15일" and "03/15" (current year assumed).
func ParseFlexible(s string) (string, error) {
	if m := yearFirstRe.FindStringSubmatch(s); m != nil {
		return isoDate(m[1], m[2], m[3]), nil
	}
	if m := isoRe.FindString(s); m != "" {
		return m, nil
	}
	if m := koreanFullRe.FindStringSubmatch(s); m != nil {
		return isoDate(m[1], m[2], m[3]), nil
	}
	if m := koreanRe.FindStringSubmatch(s); m != nil {
		return isoDate(strconv.Itoa(time.Now().Year()), m[1], m[2]), nil
	}
	if m := shortRe.FindStringSubmatch(s); m != nil {
		return isoDate(strconv.Itoa(time.Now().Year()), m[1], m[2]), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(ISODate), nil
	}
	return "", fmt.Errorf("unable to parse date: %q", s)
}

// DatesWithin reports whether two YYYY-MM-DD dates are at most days
// calendar days apart. Unparseable dates are never close.
func DatesWithin(a, b string, days int) bool {
	ta, err := time.Parse(ISODate, a)
	if err != nil {
		return false
	}
	tb, err := time.Parse(ISODate, b)
	if err != nil {
		return false
	}
	diff := ta.Sub(tb)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}
