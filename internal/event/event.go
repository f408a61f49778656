package event

import "time"

// Source identifies the upstream data source a record came from.
type Source string

const (
	SourceGoRunning  Source = "gorunning"
	SourceMarathonGo Source = "marathongo"
	SourceAims       Source = "aims"
	SourceManual     Source = "manual"
)

// SourcePriority maps each source to its merge priority.
// Lower number wins when two sources describe the same event.
var SourcePriority = map[Source]int{
	SourceGoRunning:  1,
	SourceMarathonGo: 2,
	SourceAims:       3,
	SourceManual:     4,
}

// Valid reports whether s is a known source identifier.
func (s Source) Valid() bool {
	_, ok := SourcePriority[s]
	return ok
}

// Priority returns the merge priority for s. Unknown sources sort last.
func (s Source) Priority() int {
	if p, ok := SourcePriority[s]; ok {
		return p
	}
	return len(SourcePriority) + 1
}

// CountryCode is a fixed country enumeration used by the pipeline.
type CountryCode string

const (
	CountryKR   CountryCode = "KR"
	CountryJP   CountryCode = "JP"
	CountryUS   CountryCode = "US"
	CountryDE   CountryCode = "DE"
	CountryUK   CountryCode = "UK"
	CountryINTL CountryCode = "INTL"
)

// Countries lists every valid country code.
var Countries = []CountryCode{CountryKR, CountryJP, CountryUS, CountryDE, CountryUK, CountryINTL}

// Valid reports whether c is a member of the country enumeration.
func (c CountryCode) Valid() bool {
	for _, cc := range Countries {
		if c == cc {
			return true
		}
	}
	return false
}

// RegistrationStatus describes where an event is in its signup window.
type RegistrationStatus string

const (
	RegistrationUpcoming RegistrationStatus = "upcoming"
	RegistrationOpen     RegistrationStatus = "open"
	RegistrationClosed   RegistrationStatus = "closed"
	RegistrationUnknown  RegistrationStatus = "unknown"
)

// Valid reports whether s is one of the recognized statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationUpcoming, RegistrationOpen, RegistrationClosed, RegistrationUnknown:
		return true
	}
	return false
}

// RegionOther is the sentinel region used when no region is known.
const RegionOther = "기타"

// DefaultDistance is assumed when a source exposes no distance information.
const DefaultDistance = "풀"

// DistanceOrder is the canonical longest-first ordering of distance labels.
// Labels not in this list sort after all recognized ones.
var DistanceOrder = []string{"100km", "50km", "풀", "하프", "10km", "5km", "3km"}

// KRRegions lists the Korean administrative regions recognized by collectors.
var KRRegions = []string{
	"서울", "부산", "대구", "인천", "광주", "대전", "울산", "세종",
	"경기", "강원", "충북", "충남", "전북", "전남", "경북", "경남", "제주",
}

// PriceEntry is one distance's entry fee.
type PriceEntry struct {
	Distance string  `json:"distance"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Location holds the raw location fields a collector extracted.
type Location struct {
	Country CountryCode
	Region  string
	Detail  string
}

// Registration holds the raw signup sub-record a collector extracted.
type Registration struct {
	Status    RegistrationStatus
	StartDate string
	EndDate   string
}

// RawEvent is a source-specific record as a collector produced it.
// Raw events are created once per collection run, never mutated, and
// discarded after normalization.
type RawEvent struct {
	Source          Source
	SourceID        string
	Name            string
	Date            string // source-specific format, not guaranteed ISO
	EndDate         string
	Location        Location
	Distances       []string
	RegistrationURL string
	Organizer       string
	Registration    *Registration
	Price           []PriceEntry
	Tags            []string

	// RawData carries the original source fields for diagnostics only.
	// No downstream logic may consult it.
	RawData map[string]any
}

// Event is the canonical record shape exposed to consumers of the feed.
// JSON field names match the published data files.
type Event struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Date               string             `json:"date"` // YYYY-MM-DD
	EndDate            string             `json:"endDate,omitempty"`
	Country            CountryCode        `json:"country"`
	Region             string             `json:"region"`
	LocationDetail     string             `json:"locationDetail"`
	Distances          []string           `json:"distances"`
	RegistrationURL    string             `json:"registrationUrl"`
	Organizer          string             `json:"organizer,omitempty"`
	RegistrationStatus RegistrationStatus `json:"registrationStatus"`
	RegistrationStart  string             `json:"registrationStart,omitempty"`
	RegistrationEnd    string             `json:"registrationEnd,omitempty"`
	Price              []PriceEntry       `json:"price,omitempty"`
	Tags               []string           `json:"tags"`
	IsPopular          bool               `json:"isPopular"`
	Source             Source             `json:"source"`
	LastUpdated        string             `json:"lastUpdated"` // RFC 3339
}

// Clone returns a deep copy of e. Stages treat events as values; cloning
// before a merge keeps the surviving slot independent of its inputs.
func (e Event) Clone() Event {
	c := e
	c.Distances = append([]string(nil), e.Distances...)
	c.Tags = append([]string(nil), e.Tags...)
	if e.Price != nil {
		c.Price = append([]PriceEntry(nil), e.Price...)
	}
	return c
}

// StartTime parses the event date. Returns the zero time when the date
// is not a valid YYYY-MM-DD string.
func (e Event) StartTime() time.Time {
	t, err := time.Parse(ISODate, e.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsPast reports whether the event date is before today (UTC midnight).
// Unparseable dates report false so that nothing is filtered by accident.
func (e Event) IsPast() bool {
	t := e.StartTime()
	if t.IsZero() {
		return false
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return t.Before(today)
}
