package user_agent

import (
	"math"
	"sort"
)

// UsageStat is one row of a ranked browser/OS/device breakdown.
type UsageStat struct {
	Name       string
	Count      int
	Percentage float64
}

// BrowserStats ranks browsers across a set of user agent strings.
func BrowserStats(userAgents []string) []UsageStat {
	return rankBy(userAgents, func(info DeviceInfo) string { return info.Browser })
}

// OSStats ranks operating systems across a set of user agent strings.
func OSStats(userAgents []string) []UsageStat {
	return rankBy(userAgents, func(info DeviceInfo) string { return info.OS })
}

// DeviceStats ranks device types across a set of user agent strings.
func DeviceStats(userAgents []string) []UsageStat {
	return rankBy(userAgents, func(info DeviceInfo) string { return info.Device })
}

// MobilePercentage returns the share of user agents classified as
// mobile, rounded to one decimal. Zero on empty input.
func MobilePercentage(userAgents []string) float64 {
	if len(userAgents) == 0 {
		return 0
	}
	mobile := 0
	for _, ua := range userAgents {
		if Classify(ua).Mobile {
			mobile++
		}
	}
	return round1(float64(mobile) / float64(len(userAgents)) * 100)
}

// FilterBots returns the user agents not classified as bots,
// preserving input order.
func FilterBots(userAgents []string) []string {
	humans := make([]string, 0, len(userAgents))
	for _, ua := range userAgents {
		if !Classify(ua).Bot {
			humans = append(humans, ua)
		}
	}
	return humans
}

func rankBy(userAgents []string, label func(DeviceInfo) string) []UsageStat {
	if len(userAgents) == 0 {
		return []UsageStat{}
	}

	counts := make(map[string]int)
	for _, ua := range userAgents {
		counts[label(Classify(ua))]++
	}

	total := float64(len(userAgents))
	stats := make([]UsageStat, 0, len(counts))
	for name, count := range counts {
		stats = append(stats, UsageStat{
			Name:       name,
			Count:      count,
			Percentage: round1(float64(count) / total * 100),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})

	return stats
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
