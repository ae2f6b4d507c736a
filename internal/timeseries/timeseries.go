// Package timeseries buckets event records into fixed or custom time
// windows and derives per-bucket statistics for charting. All
// bucketing happens in UTC; period keys are RFC3339 instants, so
// lexicographic ordering of keys is chronological ordering.
package timeseries

import (
	"fmt"
	"sort"
	"time"

	"pagepulse/internal/events"
)

// BucketSize identifies a fixed bucketing granularity.
type BucketSize string

const (
	BucketSizeHour   BucketSize = "hour"
	BucketSizeDay    BucketSize = "day"
	BucketSizeWeek   BucketSize = "week"
	BucketSizeMonth  BucketSize = "month"
	BucketSizeYear   BucketSize = "year"
	BucketSizeCustom BucketSize = "custom"
)

// Granularity selects either a fixed bucket size or a custom window
// expressed in minutes.
type Granularity struct {
	BucketSize    BucketSize
	WindowMinutes int
}

// Predefined granularities
var (
	Hourly  = Granularity{BucketSize: BucketSizeHour}
	Daily   = Granularity{BucketSize: BucketSizeDay}
	Weekly  = Granularity{BucketSize: BucketSizeWeek}
	Monthly = Granularity{BucketSize: BucketSizeMonth}
	Yearly  = Granularity{BucketSize: BucketSizeYear}
)

// CustomWindow returns a granularity bucketing by fixed windows of the
// given number of minutes.
func CustomWindow(minutes int) Granularity {
	return Granularity{BucketSize: BucketSizeCustom, WindowMinutes: minutes}
}

func (g Granularity) validate() error {
	switch g.BucketSize {
	case BucketSizeHour, BucketSizeDay, BucketSizeWeek, BucketSizeMonth, BucketSizeYear:
		return nil
	case BucketSizeCustom:
		if g.WindowMinutes <= 0 {
			return fmt.Errorf("custom window minutes must be positive, got %d", g.WindowMinutes)
		}
		return nil
	default:
		return fmt.Errorf("unknown bucket size: %s", g.BucketSize)
	}
}

// truncate returns the start of the bucket containing t.
// Weeks start on Monday.
func (g Granularity) truncate(t time.Time) time.Time {
	utc := t.UTC()
	year, month, day := utc.Year(), utc.Month(), utc.Day()

	switch g.BucketSize {
	case BucketSizeYear:
		return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	case BucketSizeMonth:
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	case BucketSizeWeek:
		weekday := int(utc.Weekday())
		if weekday == 0 { // Sunday
			weekday = 7
		}
		daysToSubtract := weekday - 1
		return time.Date(year, month, day-daysToSubtract, 0, 0, 0, 0, time.UTC)
	case BucketSizeDay:
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	case BucketSizeHour:
		return time.Date(year, month, day, utc.Hour(), 0, 0, 0, time.UTC)
	default:
		windowMs := int64(g.WindowMinutes) * 60 * 1000
		ms := utc.UnixMilli()
		return time.UnixMilli((ms / windowMs) * windowMs).UTC()
	}
}

// next returns the start of the bucket following the one starting at t.
func (g Granularity) next(t time.Time) time.Time {
	switch g.BucketSize {
	case BucketSizeYear:
		return t.AddDate(1, 0, 0)
	case BucketSizeMonth:
		return t.AddDate(0, 1, 0)
	case BucketSizeWeek:
		return t.AddDate(0, 0, 7)
	case BucketSizeDay:
		return t.AddDate(0, 0, 1)
	case BucketSizeHour:
		return t.Add(time.Hour)
	default:
		return t.Add(time.Duration(g.WindowMinutes) * time.Minute)
	}
}

func (g Granularity) periodKey(t time.Time) string {
	return g.truncate(t).Format(time.RFC3339)
}

// TimeRange bounds an aggregation, inclusive on both ends.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func (tr TimeRange) validate() error {
	if tr.Start.After(tr.End) {
		return fmt.Errorf("time range start must not be after end")
	}
	return nil
}

func (tr TimeRange) contains(t time.Time) bool {
	return !t.Before(tr.Start) && !t.After(tr.End)
}

// Bucket holds the aggregated counts for one period.
type Bucket struct {
	Period         string
	PageViews      int
	UniqueVisitors int
	Sessions       int
}

// Aggregate buckets events by granularity and returns one bucket per
// non-empty period, sorted ascending by period. When timeRange is
// non-nil only events within it (inclusive both ends) are counted.
// The accumulator map is scoped to this call and never retained.
func Aggregate(records []events.Event, granularity Granularity, timeRange *TimeRange) ([]Bucket, error) {
	if err := granularity.validate(); err != nil {
		return nil, err
	}
	if timeRange != nil {
		if err := timeRange.validate(); err != nil {
			return nil, err
		}
	}

	type accumulator struct {
		pageViews int
		visitors  map[string]struct{}
		sessions  map[string]struct{}
	}

	groups := make(map[string]*accumulator)
	for _, record := range records {
		if timeRange != nil && !timeRange.contains(record.Timestamp) {
			continue
		}
		key := granularity.periodKey(record.Timestamp)
		group, exists := groups[key]
		if !exists {
			group = &accumulator{
				visitors: make(map[string]struct{}),
				sessions: make(map[string]struct{}),
			}
			groups[key] = group
		}
		group.pageViews++
		if record.UserID != "" {
			group.visitors[record.UserID] = struct{}{}
		}
		if record.SessionID != "" {
			group.sessions[record.SessionID] = struct{}{}
		}
	}

	buckets := make([]Bucket, 0, len(groups))
	for period, group := range groups {
		buckets = append(buckets, Bucket{
			Period:         period,
			PageViews:      group.pageViews,
			UniqueVisitors: len(group.visitors),
			Sessions:       len(group.sessions),
		})
	}

	sortBuckets(buckets)
	return buckets, nil
}

// FillMissingPeriods walks every granularity step between the range
// start and end inclusive and inserts a zero-valued bucket for any
// step absent from the input. Existing buckets are preserved
// unchanged.
func FillMissingPeriods(buckets []Bucket, granularity Granularity, timeRange TimeRange) ([]Bucket, error) {
	if err := granularity.validate(); err != nil {
		return nil, err
	}
	if err := timeRange.validate(); err != nil {
		return nil, err
	}

	existing := make(map[string]Bucket, len(buckets))
	for _, bucket := range buckets {
		existing[bucket.Period] = bucket
	}

	filled := make([]Bucket, 0, len(buckets))
	filled = append(filled, buckets...)

	end := timeRange.End.UTC()
	for step := granularity.truncate(timeRange.Start); !step.After(end); step = granularity.next(step) {
		key := step.Format(time.RFC3339)
		if _, ok := existing[key]; !ok {
			filled = append(filled, Bucket{Period: key})
		}
	}

	sortBuckets(filled)
	return filled, nil
}

// Merge combines several bucketed datasets, summing the counts of
// buckets sharing a period key and unioning the rest. The result is
// sorted ascending by period.
func Merge(datasets ...[]Bucket) []Bucket {
	merged := make(map[string]Bucket)
	for _, dataset := range datasets {
		for _, bucket := range dataset {
			combined := merged[bucket.Period]
			combined.Period = bucket.Period
			combined.PageViews += bucket.PageViews
			combined.UniqueVisitors += bucket.UniqueVisitors
			combined.Sessions += bucket.Sessions
			merged[bucket.Period] = combined
		}
	}

	result := make([]Bucket, 0, len(merged))
	for _, bucket := range merged {
		result = append(result, bucket)
	}

	sortBuckets(result)
	return result
}

// TopPeriods returns the n buckets with the most pageviews, or fewer
// if the list is shorter. The input slice is not mutated.
func TopPeriods(buckets []Bucket, n int) []Bucket {
	ranked := make([]Bucket, len(buckets))
	copy(ranked, buckets)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PageViews > ranked[j].PageViews
	})

	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func sortBuckets(buckets []Bucket) {
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Period < buckets[j].Period
	})
}
