package notifier

import (
	"bytes"
	"strings"
	"testing"

	"github.com/marathonkr/marathon-pipeline/internal/event"
)

func TestFormatAnnouncement(t *testing.T) {
	tests := []struct {
		name     string
		event    event.Event
		contains []string
		omits    []string
	}{
		{
			name: "complete event",
			event: event.Event{
				ID:              "gorunning-seoul",
				Name:            "2026 서울마라톤",
				Date:            "2026-03-15",
				Region:          "서울",
				Distances:       []string{"풀", "10km"},
				RegistrationURL: "https://gorunning.kr/races/1",
			},
			contains: []string{"2026 서울마라톤", "2026-03-15", "서울", "풀 · 10km", "https://gorunning.kr/races/1", "#마라톤"},
		},
		{
			name: "unknown region omitted",
			event: event.Event{
				ID:   "aims-berlin",
				Name: "Berlin Marathon",
				Date: "2026-09-27",
				Region: event.RegionOther,
				Distances: []string{"풀"},
			},
			contains: []string{"Berlin Marathon", "풀"},
			omits:    []string{"🗺"},
		},
		{
			name: "no registration URL",
			event: event.Event{
				ID:        "gorunning-suwon",
				Name:      "수원 하프마라톤",
				Date:      "2026-04-12",
				Region:    "경기",
				Distances: []string{"하프"},
			},
			contains: []string{"수원 하프마라톤"},
			omits:    []string{"🔗"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatAnnouncement(tt.event)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("announcement missing %q:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.omits {
				if strings.Contains(got, unwanted) {
					t.Errorf("announcement should omit %q:\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestFormatAnnouncementLengthCap(t *testing.T) {
	e := event.Event{
		ID:              "gorunning-long",
		Name:            strings.Repeat("아주아주긴대회이름", 30),
		Date:            "2026-05-01",
		Region:          "서울",
		Distances:       []string{"풀", "하프", "10km", "5km"},
		RegistrationURL: "https://example.com/register/very/long/path",
	}

	got := formatAnnouncement(e)
	if n := len([]rune(got)); n > maxPostLen {
		t.Errorf("announcement is %d runes, want <= %d", n, maxPostLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated announcement should end with ellipsis")
	}
}

func TestNewTwitterNotifierMissingCredentials(t *testing.T) {
	t.Setenv("TWITTER_API_KEY", "")
	t.Setenv("TWITTER_API_SECRET", "")
	t.Setenv("TWITTER_ACCESS_TOKEN", "")
	t.Setenv("TWITTER_ACCESS_SECRET", "")

	if _, err := NewTwitterNotifier(); err == nil {
		t.Error("expected an error with no credentials set")
	}
}

func TestDryRunNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewDryRunNotifier(&buf)

	events := []event.Event{
		{ID: "a", Name: "서울마라톤", Date: "2026-03-15", Distances: []string{"풀"}},
		{ID: "b", Name: "춘천마라톤", Date: "2026-10-25", Distances: []string{"풀"}},
	}
	if err := n.Notify(events); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "게시물 1/2") || !strings.Contains(out, "게시물 2/2") {
		t.Errorf("missing post counters:\n%s", out)
	}
	if !strings.Contains(out, "서울마라톤") || !strings.Contains(out, "춘천마라톤") {
		t.Errorf("missing event names:\n%s", out)
	}
}
