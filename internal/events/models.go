package events

import "time"

// Event represents a single enriched pageview or custom event record.
// Records are produced by the excluded ingestion layer (geo already
// resolved, visitor identifiers already anonymized) and are treated as
// immutable by everything in this engine.
type Event struct {
	Timestamp time.Time // UTC
	SessionID string
	UserID    string // optional, empty = anonymous visitor
	Path      string
	Referrer  string // optional raw referrer URL
	UserAgent string // optional
	Country   string // optional ISO 3166-1 alpha-2 code
	Region    string // optional
	City      string // optional
	Latitude  *float64
	Longitude *float64
	Duration  int  // optional seconds spent on this page, >= 0
	ExitPage  bool // true when this pageview ended the session

	// Optional enrichment fields carried through to breakdowns.
	CustomEvent string // custom event name, empty for plain pageviews
	Language    string // BCP-47 tag reported by the client
}

// HasCoordinates reports whether both latitude and longitude are set.
func (e Event) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// Session groups the pageviews of a single visit. Sessions are assembled
// by the excluded session-assembly logic and consumed read-only here.
// PageViews are in insertion order, which is chronological order.
type Session struct {
	ID        string
	UserID    string
	StartTime time.Time
	EndTime   *time.Time // nil while the session is still open
	PageViews []Event
	Converted bool
}

// Bounced reports whether the session consists of at most one pageview.
// Always derived from the pageview count, never stored.
func (s Session) Bounced() bool {
	return len(s.PageViews) <= 1
}

// Duration returns the session length, or false when the session is
// still open and has no end time yet.
func (s Session) Duration() (time.Duration, bool) {
	if s.EndTime == nil {
		return 0, false
	}
	return s.EndTime.Sub(s.StartTime), true
}

// MetricCountResult is a single (label, count) pair in a ranked
// breakdown list.
type MetricCountResult struct {
	Name  string
	Count int
}
