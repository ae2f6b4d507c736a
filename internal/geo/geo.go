// Package geo aggregates geo-tagged event records into location
// breakdowns and provides coordinate math for distance and clustering.
// Records arrive already geo-resolved; this package never sees IPs.
package geo

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pariz/gountries"

	"pagepulse/internal/events"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
const EarthRadiusKm = 6371.0

// LocationStat is one row of a ranked location breakdown.
type LocationStat struct {
	Location  string
	Visitors  int
	PageViews int
	Sessions  int
}

var countryQuery = gountries.New()

// ByCountry aggregates events by country, ranked by pageviews.
// Events without a country are skipped.
func ByCountry(records []events.Event) []LocationStat {
	return aggregateBy(records, func(e events.Event) (string, bool) {
		if e.Country == "" {
			return "", false
		}
		return e.Country, true
	})
}

// ByRegion aggregates events by "{country} - {region}", ranked by
// pageviews. Events without a region are skipped.
func ByRegion(records []events.Event) []LocationStat {
	return aggregateBy(records, func(e events.Event) (string, bool) {
		if e.Country == "" || e.Region == "" {
			return "", false
		}
		return fmt.Sprintf("%s - %s", e.Country, e.Region), true
	})
}

// ByCity aggregates events by "{city}, {country}", ranked by
// pageviews. Events without a city are skipped.
func ByCity(records []events.Event) []LocationStat {
	return aggregateBy(records, func(e events.Event) (string, bool) {
		if e.Country == "" || e.City == "" {
			return "", false
		}
		return fmt.Sprintf("%s, %s", e.City, e.Country), true
	})
}

// CountryDistribution returns the percentage of pageviews per country,
// rounded to one decimal. Empty map on empty input.
func CountryDistribution(records []events.Event) map[string]float64 {
	counts := make(map[string]int)
	total := 0
	for _, record := range records {
		if record.Country == "" {
			continue
		}
		counts[record.Country]++
		total++
	}

	distribution := make(map[string]float64, len(counts))
	for country, count := range counts {
		distribution[country] = round1(float64(count) / float64(total) * 100)
	}
	return distribution
}

// CountryName resolves an ISO 3166-1 code to its English display name.
// Unknown codes pass through unchanged.
func CountryName(code string) string {
	country, err := countryQuery.FindCountryByAlpha(strings.ToUpper(code))
	if err != nil {
		return code
	}
	return country.Name.Common
}

// Distance computes the Haversine great-circle distance between two
// points in kilometers, rounded to one decimal. Coordinates outside
// the valid ranges are an input-contract violation.
func Distance(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if !IsValidCoordinates(lat1, lon1) {
		return 0, fmt.Errorf("invalid coordinates: %f, %f", lat1, lon1)
	}
	if !IsValidCoordinates(lat2, lon2) {
		return 0, fmt.Errorf("invalid coordinates: %f, %f", lat2, lon2)
	}

	if lat1 == lat2 && lon1 == lon2 {
		return 0, nil
	}

	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return round1(EarthRadiusKm * c), nil
}

// IsValidCoordinates reports whether latitude is within [-90, 90] and
// longitude within [-180, 180], inclusive.
func IsValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// IsWithinBounds reports whether a point lies inside a bounding box,
// inclusive on all edges.
func IsWithinBounds(lat, lon, minLat, maxLat, minLon, maxLon float64) bool {
	return lat >= minLat && lat <= maxLat && lon >= minLon && lon <= maxLon
}

// GroupNearby clusters events by proximity with a single greedy pass:
// each unprocessed event with coordinates seeds a new cluster and
// absorbs every later unprocessed event within maxDistanceKm of the
// seed. Events without coordinates are skipped entirely.
func GroupNearby(records []events.Event, maxDistanceKm float64) [][]events.Event {
	clusters := [][]events.Event{}
	processed := make([]bool, len(records))

	for i, seed := range records {
		if processed[i] || !seed.HasCoordinates() {
			continue
		}
		processed[i] = true
		cluster := []events.Event{seed}

		for j := i + 1; j < len(records); j++ {
			candidate := records[j]
			if processed[j] || !candidate.HasCoordinates() {
				continue
			}
			distance, err := Distance(*seed.Latitude, *seed.Longitude,
				*candidate.Latitude, *candidate.Longitude)
			if err != nil {
				continue
			}
			if distance <= maxDistanceKm {
				processed[j] = true
				cluster = append(cluster, candidate)
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}

func aggregateBy(records []events.Event, key func(events.Event) (string, bool)) []LocationStat {
	type accumulator struct {
		visitors  map[string]struct{}
		sessions  map[string]struct{}
		pageViews int
	}

	groups := make(map[string]*accumulator)
	for i, record := range records {
		label, ok := key(record)
		if !ok {
			continue
		}
		group, exists := groups[label]
		if !exists {
			group = &accumulator{
				visitors: make(map[string]struct{}),
				sessions: make(map[string]struct{}),
			}
			groups[label] = group
		}
		group.pageViews++
		// Anonymous records count as distinct visitors
		identity := record.UserID
		if identity == "" {
			identity = fmt.Sprintf("anon-%d", i)
		}
		group.visitors[identity] = struct{}{}
		if record.SessionID != "" {
			group.sessions[record.SessionID] = struct{}{}
		}
	}

	stats := make([]LocationStat, 0, len(groups))
	for label, group := range groups {
		stats = append(stats, LocationStat{
			Location:  label,
			Visitors:  len(group.visitors),
			PageViews: group.pageViews,
			Sessions:  len(group.sessions),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].PageViews != stats[j].PageViews {
			return stats[i].PageViews > stats[j].PageViews
		}
		return stats[i].Location < stats[j].Location
	})

	return stats
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
