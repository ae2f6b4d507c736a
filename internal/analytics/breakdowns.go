package analytics

import (
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"pagepulse/internal/events"
	"pagepulse/internal/geo"
	"pagepulse/internal/pkg/referrers"
	"pagepulse/internal/pkg/user_agent"
)

// breakdownAccumulator collects per-dimension counts for one
// Summarize call. It is never shared or retained.
type breakdownAccumulator struct {
	pageViews int
	visitors  map[string]struct{}
	sessions  map[string]struct{}

	pages        map[string]int
	sources      map[string]int
	campaigns    map[string]int
	devices      map[string]int
	browsers     map[string]int
	oss          map[string]int
	countries    map[string]int
	languages    map[string]int
	customEvents map[string]int
}

func collectBreakdowns(records []events.Event, siteHost string) *breakdownAccumulator {
	acc := &breakdownAccumulator{
		visitors:     make(map[string]struct{}),
		sessions:     make(map[string]struct{}),
		pages:        make(map[string]int),
		sources:      make(map[string]int),
		campaigns:    make(map[string]int),
		devices:      make(map[string]int),
		browsers:     make(map[string]int),
		oss:          make(map[string]int),
		countries:    make(map[string]int),
		languages:    make(map[string]int),
		customEvents: make(map[string]int),
	}

	for _, record := range records {
		if record.UserID != "" {
			acc.visitors[record.UserID] = struct{}{}
		}
		if record.SessionID != "" {
			acc.sessions[record.SessionID] = struct{}{}
		}

		if record.CustomEvent != "" {
			acc.customEvents[record.CustomEvent]++
			continue
		}

		acc.pageViews++
		if record.Path != "" {
			acc.pages[record.Path]++
		}

		ref := referrers.Classify(record.Referrer, siteHost)
		acc.sources[referrers.NormalizeSource(ref.Source)]++
		if ref.Campaign != "" {
			acc.campaigns[ref.Campaign]++
		}

		if record.UserAgent != "" {
			info := user_agent.Classify(record.UserAgent)
			acc.devices[info.Device]++
			acc.browsers[info.Browser]++
			acc.oss[info.OS]++
		}

		if record.Country != "" {
			acc.countries[geo.CountryName(record.Country)]++
		}
		if record.Language != "" {
			acc.languages[languageName(record.Language)]++
		}
	}

	return acc
}

func (acc *breakdownAccumulator) visitorCount() int { return len(acc.visitors) }
func (acc *breakdownAccumulator) sessionCount() int { return len(acc.sessions) }

// rank converts a count map into a descending (label, count) list,
// ties broken by name so output is deterministic.
func (acc *breakdownAccumulator) rank(counts map[string]int, limit int) []events.MetricCountResult {
	results := make([]events.MetricCountResult, 0, len(counts))
	for name, count := range counts {
		results = append(results, events.MetricCountResult{Name: name, Count: count})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Name < results[j].Name
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// languageName resolves a BCP-47 tag to its English display name.
// Unparseable tags pass through unchanged.
func languageName(tag string) string {
	parsed, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	name := display.English.Languages().Name(parsed)
	if name == "" {
		return tag
	}
	return name
}
