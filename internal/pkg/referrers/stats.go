package referrers

import (
	"math"
	"sort"
)

// SourceStat is one row of a ranked source/medium breakdown.
type SourceStat struct {
	Name       string
	Count      int
	Percentage float64
}

// SourceStats ranks traffic sources across a set of referrer strings.
// currentHost applies the same internal-traffic detection as Classify.
func SourceStats(referrerURLs []string, currentHost string) []SourceStat {
	return rankBy(referrerURLs, currentHost, func(info ReferrerInfo) string { return info.Source })
}

// MediumStats ranks traffic mediums across a set of referrer strings.
func MediumStats(referrerURLs []string, currentHost string) []SourceStat {
	return rankBy(referrerURLs, currentHost, func(info ReferrerInfo) string { return info.Medium })
}

// TopReferrers returns the n most frequent referrer domains. Direct
// traffic (no parseable domain) is not ranked.
func TopReferrers(referrerURLs []string, n int) []SourceStat {
	counts := make(map[string]int)
	total := 0
	for _, ref := range referrerURLs {
		domain := ExtractDomain(ref)
		if domain == "" {
			continue
		}
		counts[domain]++
		total++
	}

	stats := toRanked(counts, total)
	if n >= 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// FilterByMedium returns the referrer strings classified as the given
// medium, preserving input order.
func FilterByMedium(referrerURLs []string, currentHost, medium string) []string {
	matched := make([]string, 0, len(referrerURLs))
	for _, ref := range referrerURLs {
		if Classify(ref, currentHost).Medium == medium {
			matched = append(matched, ref)
		}
	}
	return matched
}

// OrganicPercentage returns the share of referrers classified as search
// traffic, rounded to one decimal. Zero on empty input.
func OrganicPercentage(referrerURLs []string, currentHost string) float64 {
	if len(referrerURLs) == 0 {
		return 0
	}
	organic := 0
	for _, ref := range referrerURLs {
		if Classify(ref, currentHost).Medium == MediumSearch {
			organic++
		}
	}
	return round1(float64(organic) / float64(len(referrerURLs)) * 100)
}

func rankBy(referrerURLs []string, currentHost string, label func(ReferrerInfo) string) []SourceStat {
	if len(referrerURLs) == 0 {
		return []SourceStat{}
	}

	counts := make(map[string]int)
	for _, ref := range referrerURLs {
		counts[label(Classify(ref, currentHost))]++
	}

	return toRanked(counts, len(referrerURLs))
}

func toRanked(counts map[string]int, total int) []SourceStat {
	stats := make([]SourceStat, 0, len(counts))
	for name, count := range counts {
		percentage := 0.0
		if total > 0 {
			percentage = round1(float64(count) / float64(total) * 100)
		}
		stats = append(stats, SourceStat{Name: name, Count: count, Percentage: percentage})
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
