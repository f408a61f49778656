package collector

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/marathonkr/marathon-pipeline/internal/event"
	"github.com/marathonkr/marathon-pipeline/internal/httpx"
	"github.com/marathonkr/marathon-pipeline/internal/logger"
)

// DefaultAimsFeedURL is the public AIMS calendar feed.
const DefaultAimsFeedURL = "https://aims-worldrunning.org/events.ics"

// TextFetcher downloads a URL as text. Tests substitute canned feeds.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Aims collects international marathon events from the AIMS ICS feed.
type Aims struct {
	fetcher TextFetcher
	feedURL string
}

// NewAims creates the AIMS collector with the default transport and feed.
func NewAims() *Aims {
	return &Aims{fetcher: httpx.New(), feedURL: DefaultAimsFeedURL}
}

// NewAimsWith creates an AIMS collector with an explicit fetcher and URL.
func NewAimsWith(fetcher TextFetcher, feedURL string) *Aims {
	if feedURL == "" {
		feedURL = DefaultAimsFeedURL
	}
	return &Aims{fetcher: fetcher, feedURL: feedURL}
}

// Name implements Collector.
func (a *Aims) Name() event.Source { return event.SourceAims }

// Collect downloads and parses the feed. Components from years before the
// current one are skipped; individual conversion failures drop only the
// affected component.
func (a *Aims) Collect(ctx context.Context) (res Result) {
	started := time.Now()
	defer guard(event.SourceAims, started, &res)

	logger.Info("collecting AIMS feed", logger.Fields{"url": a.feedURL})

	text, err := a.fetcher.FetchText(ctx, a.feedURL)
	if err != nil {
		logger.Error("AIMS feed download failed", logger.Fields{"url": a.feedURL}, err)
		return failure(event.SourceAims, started, err)
	}

	components := parseICS(text)
	logger.Debug("parsed ICS components", logger.Fields{"count": len(components)})

	currentYear := time.Now().Year()
	events := make([]event.RawEvent, 0, len(components))
	for _, comp := range components {
		raw, err := a.transform(comp, currentYear)
		if err != nil {
			logger.Warn("skipping ICS component", logger.Fields{
				"summary": comp.Summary,
				"reason":  err.Error(),
			})
			continue
		}
		if raw == nil {
			// Past-year event, filtered.
			continue
		}
		events = append(events, *raw)
	}

	logger.Info("AIMS collection finished", logger.Fields{
		"found":     len(components),
		"processed": len(events),
	})
	return success(event.SourceAims, events, len(components), started)
}

// transform converts one ICS component to a raw event. Returns (nil, nil)
// when the component starts before the current year.
func (a *Aims) transform(comp icsEvent, currentYear int) (*event.RawEvent, error) {
	date, err := parseICSDate(comp.DTStart)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse(event.ISODate, date)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", date, err)
	}
	if start.Year() < currentYear {
		return nil, nil
	}

	endDate := ""
	if comp.DTEnd != "" {
		if d, err := parseICSDate(comp.DTEnd); err == nil {
			endDate = d
		}
	}

	return &event.RawEvent{
		Source:   event.SourceAims,
		SourceID: comp.UID,
		Name:     comp.Summary,
		Date:     date,
		EndDate:  endDate,
		Location: event.Location{
			Country: detectCountry(comp.Location, comp.Summary),
			Detail:  comp.Location,
		},
		Distances:       detectDistances(comp.Summary, comp.Description),
		RegistrationURL: extractURL(comp.Description, comp.URL),
		Tags:            []string{"AIMS", "국제대회"},
		RawData: map[string]any{
			"uid":      comp.UID,
			"summary":  comp.Summary,
			"location": comp.Location,
			"dtstart":  comp.DTStart,
		},
	}, nil
}

// countryKeywords maps city/country keywords to country codes. Order
// matters: the first matching entry wins.
var countryKeywords = []struct {
	code     event.CountryCode
	keywords []string
}{
	{event.CountryKR, []string{"korea", "seoul", "busan", "daegu"}},
	{event.CountryJP, []string{"japan", "tokyo", "osaka", "nagoya"}},
	{event.CountryUS, []string{"usa", "united states", "boston", "new york", "chicago"}},
	{event.CountryDE, []string{"germany", "berlin", "munich"}},
	{event.CountryUK, []string{"united kingdom", "london", "manchester"}},
}

// detectCountry infers a country code from keyword matches over the
// location and summary text. Defaults to INTL.
func detectCountry(location, summary string) event.CountryCode {
	text := strings.ToLower(location + " " + summary)
	for _, entry := range countryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.code
			}
		}
	}
	return event.CountryINTL
}

// distanceKeywords maps text keywords to canonical distance labels.
var distanceKeywords = []struct {
	label    string
	keywords []string
}{
	{"풀", []string{"marathon", "42"}},
	{"하프", []string{"half", "21k"}},
	{"10km", []string{"10k", "10km"}},
	{"5km", []string{"5k", "5km"}},
	{"100km", []string{"ultra", "100k"}},
	{"50km", []string{"50k"}},
}

// detectDistances infers distance labels from the summary and description.
// Defaults to the full marathon.
func detectDistances(summary, description string) []string {
	text := strings.ToLower(summary + " " + description)
	var distances []string
	for _, entry := range distanceKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				distances = append(distances, entry.label)
				break
			}
		}
	}
	if len(distances) == 0 {
		return []string{event.DefaultDistance}
	}
	return distances
}

var urlRe = regexp.MustCompile(`https?://[^\s<>'"]+`)

// extractURL prefers the component's URL property, falling back to the
// first link in the description.
func extractURL(description, icsURL string) string {
	if icsURL != "" {
		return icsURL
	}
	return urlRe.FindString(description)
}
