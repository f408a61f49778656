package collector

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/marathonkr/marathon-pipeline/internal/event"
	"github.com/marathonkr/marathon-pipeline/internal/logger"
)

// DefaultGoRunningURL is the public race listing page.
const DefaultGoRunningURL = "https://gorunning.kr/races"

// GoRunning collects domestic marathon events from gorunning.kr. The site
// renders its listing client-side, so a browser renderer produces the
// HTML and goquery extracts the date-section tables from it.
type GoRunning struct {
	renderer PageRenderer
	url      string
}

// NewGoRunning creates the gorunning collector with a headless browser.
func NewGoRunning() *GoRunning {
	return &GoRunning{renderer: NewChromeRenderer(), url: DefaultGoRunningURL}
}

// NewGoRunningWith creates a gorunning collector with an explicit renderer
// and listing URL.
func NewGoRunningWith(renderer PageRenderer, url string) *GoRunning {
	if url == "" {
		url = DefaultGoRunningURL
	}
	return &GoRunning{renderer: renderer, url: url}
}

// Name implements Collector.
func (g *GoRunning) Name() event.Source { return event.SourceGoRunning }

// Collect renders the listing page and extracts every race row. Rows that
// fail to convert are logged and skipped.
func (g *GoRunning) Collect(ctx context.Context) (res Result) {
	started := time.Now()
	defer guard(event.SourceGoRunning, started, &res)

	logger.Info("collecting gorunning listing", logger.Fields{"url": g.url})

	html, err := g.renderer.Render(ctx, g.url)
	if err != nil {
		logger.Error("gorunning page render failed", logger.Fields{"url": g.url}, err)
		return failure(event.SourceGoRunning, started, err)
	}

	rows, err := parseRaceSections(html)
	if err != nil {
		logger.Error("gorunning page parse failed", nil, err)
		return failure(event.SourceGoRunning, started, err)
	}
	logger.Debug("extracted race rows", logger.Fields{"count": len(rows)})

	events := make([]event.RawEvent, 0, len(rows))
	for _, row := range rows {
		raw, err := row.toRaw()
		if err != nil {
			logger.Warn("skipping race row", logger.Fields{
				"name":   row.Name,
				"reason": err.Error(),
			})
			continue
		}
		events = append(events, raw)
	}

	logger.Info("gorunning collection finished", logger.Fields{
		"found":     len(rows),
		"processed": len(events),
	})
	return success(event.SourceGoRunning, events, len(rows), started)
}

// raceRow is one table row of the listing, tagged with the date parsed
// from its section header.
type raceRow struct {
	Name      string
	Date      string // YYYY-MM-DD, from the section header
	Distance  string
	Region    string
	Location  string
	Organizer string
	Status    string
	Link      string
}

// parseRaceSections walks the date-anchored sections of the listing page.
// Each section header carries a label like "03월 08일 (일)"; the label plus
// the current year gives the date for every row in that section. A section
// whose header does not parse is dropped whole, rows included.
func parseRaceSections(html string) ([]raceRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var rows []raceRow

	doc.Find(`[id^="race-"]`).Each(func(_ int, section *goquery.Selection) {
		label := strings.TrimSpace(section.Find("h3 span.bg-blue-100").First().Text())
		date, err := event.ParseFlexible(label)
		if err != nil {
			logger.Debug("section header without a date", logger.Fields{"label": label})
			return
		}

		section.Find("table tbody tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() < 6 {
				return
			}
			name := strings.TrimSpace(cells.Eq(1).Text())
			if name == "" {
				return
			}
			rows = append(rows, raceRow{
				Name:      name,
				Date:      date,
				Distance:  strings.TrimSpace(cells.Eq(2).Text()),
				Region:    strings.TrimSpace(cells.Eq(3).Text()),
				Location:  strings.TrimSpace(cells.Eq(4).Text()),
				Organizer: strings.TrimSpace(cells.Eq(5).Text()),
				Status:    strings.TrimSpace(cells.Eq(6).Text()),
				Link:      cells.Eq(1).Find("a").AttrOr("href", ""),
			})
		})
	})

	return rows, nil
}

func (r raceRow) toRaw() (event.RawEvent, error) {
	if r.Name == "" {
		return event.RawEvent{}, fmt.Errorf("race row without a name")
	}

	return event.RawEvent{
		Source:   event.SourceGoRunning,
		SourceID: raceID(r.Name, r.Date),
		Name:     r.Name,
		Date:     r.Date,
		Location: event.Location{
			Country: event.CountryKR,
			Region:  extractKRRegion(r.Region, r.Location),
			Detail:  firstNonEmpty(r.Location, r.Region),
		},
		Distances:       extractRaceDistances(r.Distance, r.Name),
		RegistrationURL: r.Link,
		Organizer:       r.Organizer,
		Registration:    &event.Registration{Status: parseStatus(r.Status)},
		Tags:            extractRaceTags(r.Name),
		RawData: map[string]any{
			"region":   r.Region,
			"location": r.Location,
			"status":   r.Status,
		},
	}, nil
}

var (
	idSanitizeRe = regexp.MustCompile(`[^a-zA-Z0-9가-힣]+`)
	nonDigitRe   = regexp.MustCompile(`[^0-9]`)
)

// raceID derives a stable source-local identifier from name and date.
func raceID(name, date string) string {
	id := strings.ToLower(strings.Trim(idSanitizeRe.ReplaceAllString(name, "-"), "-"))
	id = id + "-" + nonDigitRe.ReplaceAllString(date, "")
	if len(id) > 100 {
		id = id[:100]
	}
	return id
}

// extractKRRegion matches the region column, then the location column,
// against the known Korean regions.
func extractKRRegion(region, location string) string {
	for _, r := range event.KRRegions {
		if region != "" && strings.Contains(region, r) {
			return r
		}
	}
	for _, r := range event.KRRegions {
		if strings.Contains(location, r) {
			return r
		}
	}
	return event.RegionOther
}

// extractRaceDistances reads the distance column, falling back to keywords
// in the race name, then to the full-marathon default.
func extractRaceDistances(distance, name string) []string {
	distances := distancesFromText(distance)
	if len(distances) == 0 {
		distances = distancesFromText(name)
	}
	if len(distances) == 0 {
		return []string{event.DefaultDistance}
	}
	return distances
}

func distancesFromText(text string) []string {
	t := strings.ToLower(text)
	var out []string
	if strings.Contains(t, "풀") || strings.Contains(t, "full") || strings.Contains(t, "42") {
		out = append(out, "풀")
	}
	if strings.Contains(t, "하프") || strings.Contains(t, "half") || strings.Contains(t, "21") {
		out = append(out, "하프")
	}
	if strings.Contains(t, "10k") {
		out = append(out, "10km")
	}
	if strings.Contains(t, "5k") {
		out = append(out, "5km")
	}
	if strings.Contains(t, "울트라") || strings.Contains(t, "100k") || strings.Contains(t, "50k") {
		if strings.Contains(t, "100") {
			out = append(out, "100km")
		}
		if strings.Contains(t, "50") {
			out = append(out, "50km")
		}
	}
	return out
}

func extractRaceTags(name string) []string {
	var tags []string
	t := strings.ToLower(name)
	if strings.Contains(t, "iaaf") || strings.Contains(t, "공인") {
		tags = append(tags, "IAAF공인")
	}
	if strings.Contains(t, "국제") {
		tags = append(tags, "국제대회")
	}
	if strings.Contains(t, "울트라") {
		tags = append(tags, "울트라")
	}
	if strings.Contains(t, "트레일") {
		tags = append(tags, "트레일런")
	}
	if strings.Contains(t, "야간") || strings.Contains(t, "나이트") {
		tags = append(tags, "야간대회")
	}
	if strings.Contains(t, "비대면") || strings.Contains(t, "버추얼") {
		tags = append(tags, "비대면")
	}
	return tags
}

// parseStatus maps the listing's status column to a registration status.
func parseStatus(status string) event.RegistrationStatus {
	switch {
	case status == "":
		return event.RegistrationUnknown
	case strings.Contains(status, "접수중") || strings.Contains(status, "모집중"):
		return event.RegistrationOpen
	case strings.Contains(status, "마감") || strings.Contains(status, "종료"):
		return event.RegistrationClosed
	case strings.Contains(status, "예정") || strings.Contains(status, "준비"):
		return event.RegistrationUpcoming
	}
	return event.RegistrationUnknown
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
