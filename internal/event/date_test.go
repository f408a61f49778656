package event

import (
	"fmt"
	"testing"
	"time"
)

func TestParseFlexible(t *testing.T) {
	year := time.Now().Year()

	tests := []struct {
		in   string
		want string
	}{
		{"2026.03.15", "2026-03-15"},
		{"2026/03/15", "2026-03-15"},
		{"2026-03-15", "2026-03-15"},
		{"2026년 3월 15일", "2026-03-15"},
		{"3월 15일", fmt.Sprintf("%d-03-15", year)},
		{"03월 08일 (일)", fmt.Sprintf("%d-03-08", year)},
		{"03/15", fmt.Sprintf("%d-03-15", year)},
		{"2026-03-15T09:00:00Z", "2026-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFlexible(tt.in)
			if err != nil {
				t.Fatalf("ParseFlexible(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFlexible(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFlexibleRejectsGarbage(t *testing.T) {
	if _, err := ParseFlexible("sometime next spring"); err == nil {
		t.Error("expected error for unparseable input")
	}
}

func TestDatesWithin(t *testing.T) {
	tests := []struct {
		a, b string
		days int
		want bool
	}{
		{"2026-03-15", "2026-03-15", 1, true},
		{"2026-03-15", "2026-03-16", 1, true},
		{"2026-03-16", "2026-03-15", 1, true},
		{"2026-03-15", "2026-03-17", 1, false},
		{"2026-03-15", "garbage", 1, false},
	}

	for _, tt := range tests {
		if got := DatesWithin(tt.a, tt.b, tt.days); got != tt.want {
			t.Errorf("DatesWithin(%q, %q, %d) = %v, want %v", tt.a, tt.b, tt.days, got, tt.want)
		}
	}
}
