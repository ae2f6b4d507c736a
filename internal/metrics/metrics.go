// Package metrics computes derived statistics over sessions and
// pageviews: bounce rate, duration percentiles, conversion and exit
// rates, engagement scoring and z-score anomaly detection. Every
// function is a pure transformation and safe on empty input.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"pagepulse/internal/events"
)

// DefaultAnomalyThreshold is the z-score above which a value is
// considered anomalous when the caller has no preference.
const DefaultAnomalyThreshold = 2.0

// BounceRate returns the percentage of sessions with at most one
// pageview, rounded to one decimal. Zero on empty input.
func BounceRate(sessions []events.Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	bounced := 0
	for _, session := range sessions {
		if session.Bounced() {
			bounced++
		}
	}
	return round1(float64(bounced) / float64(len(sessions)) * 100)
}

// AverageSessionDuration returns the mean session length in whole
// seconds. Sessions still open (no end time) are excluded from both
// numerator and denominator, not treated as zero-duration.
func AverageSessionDuration(sessions []events.Session) int {
	durations := closedDurations(sessions)
	if len(durations) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range durations {
		sum += d
	}
	return int(math.Round(sum / float64(len(durations))))
}

// MedianSessionDuration returns the median session length in whole
// seconds, over sessions with an end time only.
func MedianSessionDuration(sessions []events.Session) int {
	durations := closedDurations(sessions)
	if len(durations) == 0 {
		return 0
	}
	sort.Float64s(durations)
	mid := len(durations) / 2
	if len(durations)%2 == 1 {
		return int(math.Round(durations[mid]))
	}
	return int(math.Round((durations[mid-1] + durations[mid]) / 2))
}

// Percentile computes the p-th percentile of values using linear
// interpolation between closest ranks (the R-7 estimator). p outside
// [0, 100] is an input-contract violation. The input slice is never
// mutated; zero on empty input.
func Percentile(values []float64, p float64) (float64, error) {
	if p < 0 || p > 100 {
		return 0, fmt.Errorf("percentile must be within [0, 100], got %g", p)
	}
	if len(values) == 0 {
		return 0, nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower], nil
	}
	fraction := rank - float64(lower)
	return sorted[lower] + fraction*(sorted[upper]-sorted[lower]), nil
}

// EngagementScore derives a 0-100 composite score: pageviews
// contribute 5 points each up to 30, session time 4 points per minute
// up to 40, and a conversion a flat 30. The sum is capped at 100.
func EngagementScore(pageViews int, duration time.Duration, converted bool) float64 {
	score := math.Min(float64(pageViews)*5, 30)
	score += math.Min(duration.Minutes()*4, 40)
	if converted {
		score += 30
	}
	return round1(math.Min(score, 100))
}

// ConversionRate returns the percentage of sessions whose id appears
// in the supplied conversion-event set, rounded to one decimal.
func ConversionRate(sessions []events.Session, conversionSessionIDs []string) float64 {
	if len(sessions) == 0 {
		return 0
	}
	converted := make(map[string]struct{}, len(conversionSessionIDs))
	for _, id := range conversionSessionIDs {
		converted[id] = struct{}{}
	}
	count := 0
	for _, session := range sessions {
		if _, ok := converted[session.ID]; ok {
			count++
		}
	}
	return round1(float64(count) / float64(len(sessions)) * 100)
}

// ExitRate returns the percentage of pageviews for the exact path that
// were marked as exit pages, rounded to one decimal.
func ExitRate(records []events.Event, path string) float64 {
	total := 0
	exits := 0
	for _, record := range records {
		if record.Path != path {
			continue
		}
		total++
		if record.ExitPage {
			exits++
		}
	}
	if total == 0 {
		return 0
	}
	return round1(float64(exits) / float64(total) * 100)
}

// ReturnVisitorRate returns the percentage of distinct visitors with
// more than one session, rounded to one decimal. Sessions without a
// visitor identifier are ignored.
func ReturnVisitorRate(sessions []events.Session) float64 {
	sessionsPerVisitor := make(map[string]int)
	for _, session := range sessions {
		if session.UserID == "" {
			continue
		}
		sessionsPerVisitor[session.UserID]++
	}
	if len(sessionsPerVisitor) == 0 {
		return 0
	}
	returning := 0
	for _, count := range sessionsPerVisitor {
		if count > 1 {
			returning++
		}
	}
	return round1(float64(returning) / float64(len(sessionsPerVisitor)) * 100)
}

// AnomalyReport holds the outcome of z-score anomaly detection.
type AnomalyReport struct {
	Mean      float64
	StdDev    float64
	Anomalies []float64
}

// DetectAnomalies flags values whose standardized deviation from the
// population mean exceeds the threshold. The standard deviation is
// floored at 1 when standardizing so that identical-valued series do
// not divide by zero. Anomalies keep input order; mean and standard
// deviation are rounded to one decimal.
func DetectAnomalies(values []float64, threshold float64) AnomalyReport {
	if len(values) == 0 {
		return AnomalyReport{Anomalies: []float64{}}
	}

	sum := 0.0
	for _, value := range values {
		sum += value
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, value := range values {
		variance += (value - mean) * (value - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(values)))

	divisor := math.Max(stdDev, 1)
	anomalies := []float64{}
	for _, value := range values {
		if math.Abs(value-mean)/divisor > threshold {
			anomalies = append(anomalies, value)
		}
	}

	return AnomalyReport{
		Mean:      round1(mean),
		StdDev:    round1(stdDev),
		Anomalies: anomalies,
	}
}

func closedDurations(sessions []events.Session) []float64 {
	durations := make([]float64, 0, len(sessions))
	for _, session := range sessions {
		if duration, ok := session.Duration(); ok {
			durations = append(durations, duration.Seconds())
		}
	}
	return durations
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
