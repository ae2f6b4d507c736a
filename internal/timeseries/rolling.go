package timeseries

import (
	"fmt"
	"math"
)

// Metric selects which bucket counter a derived statistic reads.
type Metric string

const (
	MetricPageViews      Metric = "pageViews"
	MetricUniqueVisitors Metric = "uniqueVisitors"
	MetricSessions       Metric = "sessions"
)

func (m Metric) value(b Bucket) (float64, error) {
	switch m {
	case MetricPageViews:
		return float64(b.PageViews), nil
	case MetricUniqueVisitors:
		return float64(b.UniqueVisitors), nil
	case MetricSessions:
		return float64(b.Sessions), nil
	default:
		return 0, fmt.Errorf("unknown metric: %s", m)
	}
}

// RollingAverage computes a trailing moving average of the chosen
// metric. For each index the window covers the windowSize preceding
// buckets including the current one, shrinking near the start of the
// series. Averages are rounded to one decimal. A non-positive window
// size is an input-contract violation. The input slice is never
// mutated.
func RollingAverage(buckets []Bucket, windowSize int, metric Metric) ([]float64, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}

	averages := make([]float64, len(buckets))
	for i := range buckets {
		start := i - windowSize + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for j := start; j <= i; j++ {
			value, err := metric.value(buckets[j])
			if err != nil {
				return nil, err
			}
			sum += value
		}
		averages[i] = math.Round(sum/float64(i-start+1)*10) / 10
	}

	return averages, nil
}

// GrowthRate returns the percentage change from previous to current,
// rounded to one decimal. A previous value of zero yields 100 for any
// growth and 0 when both values are zero.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Round(((current-previous)/previous)*1000) / 10
}

// Trend fits a least-squares line through the metric series and
// returns its slope. Zero for fewer than two buckets.
func Trend(buckets []Bucket, metric Metric) float64 {
	if len(buckets) < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	n := float64(len(buckets))

	for i, bucket := range buckets {
		value, err := metric.value(bucket)
		if err != nil {
			return 0
		}
		x := float64(i)
		sumX += x
		sumY += value
		sumXY += x * value
		sumXX += x * x
	}

	return (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
}
