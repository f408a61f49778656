package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/marathonkr/marathon-pipeline/internal/event"
)

type stubFetcher struct {
	text string
	err  error
}

func (s stubFetcher) FetchText(ctx context.Context, url string) (string, error) {
	return s.text, s.err
}

func aimsFeed(year int) string {
	return fmt.Sprintf("BEGIN:VCALENDAR\r\n"+
		"BEGIN:VEVENT\r\n"+
		"UID:berlin@aims\r\n"+
		"SUMMARY:Berlin Marathon\r\n"+
		"LOCATION:Berlin\\, Germany\r\n"+
		"DTSTART:%d0927\r\n"+
		"URL:https://berlin.example\r\n"+
		"END:VEVENT\r\n"+
		"BEGIN:VEVENT\r\n"+
		"UID:old@aims\r\n"+
		"SUMMARY:Last Year Marathon\r\n"+
		"LOCATION:Tokyo\\, Japan\r\n"+
		"DTSTART:%d0101\r\n"+
		"END:VEVENT\r\n"+
		"END:VCALENDAR\r\n", year, year-1)
}

func TestAimsCollect(t *testing.T) {
	year := time.Now().Year()
	a := NewAimsWith(stubFetcher{text: aimsFeed(year)}, "https://feed.example/events.ics")

	res := a.Collect(context.Background())

	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.Source != event.SourceAims {
		t.Errorf("unexpected source: %s", res.Source)
	}
	if res.Metadata.TotalFound != 2 {
		t.Errorf("expected 2 components found, got %d", res.Metadata.TotalFound)
	}
	// The past-year component is filtered out.
	if len(res.Events) != 1 {
		t.Fatalf("expected 1 event after the past-year filter, got %d", len(res.Events))
	}
	if res.Metadata.ProcessedCount != 1 {
		t.Errorf("processedCount should be 1, got %d", res.Metadata.ProcessedCount)
	}

	e := res.Events[0]
	if e.SourceID != "berlin@aims" {
		t.Errorf("unexpected source id: %s", e.SourceID)
	}
	if e.Date != fmt.Sprintf("%d-09-27", year) {
		t.Errorf("unexpected date: %s", e.Date)
	}
	if e.Location.Country != event.CountryDE {
		t.Errorf("expected DE from location keywords, got %s", e.Location.Country)
	}
	if e.RegistrationURL != "https://berlin.example" {
		t.Errorf("unexpected registration url: %s", e.RegistrationURL)
	}
	if len(e.Distances) != 1 || e.Distances[0] != "풀" {
		t.Errorf("marathon keyword should map to 풀, got %v", e.Distances)
	}
}

func TestAimsCollectFetchFailure(t *testing.T) {
	a := NewAimsWith(stubFetcher{err: errors.New("connection refused")}, "")

	res := a.Collect(context.Background())

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error == "" {
		t.Error("failure should carry an error message")
	}
	if len(res.Events) != 0 {
		t.Errorf("failed collection must produce no events, got %d", len(res.Events))
	}
}

func TestDetectCountry(t *testing.T) {
	tests := []struct {
		location, summary string
		want              event.CountryCode
	}{
		{"Seoul, Korea", "", event.CountryKR},
		{"", "Tokyo Marathon", event.CountryJP},
		{"Boston, MA", "", event.CountryUS},
		{"BERLIN", "", event.CountryDE},
		{"London", "", event.CountryUK},
		{"Nairobi, Kenya", "Nairobi City Run", event.CountryINTL},
	}
	for _, tt := range tests {
		if got := detectCountry(tt.location, tt.summary); got != tt.want {
			t.Errorf("detectCountry(%q, %q) = %s, want %s", tt.location, tt.summary, got, tt.want)
		}
	}
}

func TestDetectDistances(t *testing.T) {
	tests := []struct {
		summary string
		want    []string
	}{
		{"City Marathon and Half", []string{"풀", "하프"}},
		{"Charity Fun Run 10k", []string{"10km"}},
		{"Scenic trail event", []string{"풀"}}, // default
	}
	for _, tt := range tests {
		got := detectDistances(tt.summary, "")
		if len(got) != len(tt.want) {
			t.Errorf("detectDistances(%q) = %v, want %v", tt.summary, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("detectDistances(%q) = %v, want %v", tt.summary, got, tt.want)
				break
			}
		}
	}
}
