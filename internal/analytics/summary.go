// Package analytics composes the classifier, geo, time-series and
// metrics components into the summary object a dashboard displays.
// Everything here is synchronous, pure computation over the inputs:
// one accumulator map per call, converted to sorted results before
// return, nothing shared or retained between calls.
package analytics

import (
	"fmt"
	"log/slog"
	"math"

	"pagepulse/internal/config"
	"pagepulse/internal/events"
	"pagepulse/internal/metrics"
	"pagepulse/internal/pkg/user_agent"
	"pagepulse/internal/timeseries"
)

// SummaryParams carries one aggregation request. Events and Sessions
// are read-only inputs owned by the caller.
type SummaryParams struct {
	Events               []events.Event
	Sessions             []events.Session
	ConversionSessionIDs []string
	Granularity          timeseries.Granularity
	TimeRange            *timeseries.TimeRange
	SiteHost             string // marks internal referrer traffic; falls back to config
	Limit                int    // breakdown list length; falls back to config
	Logger               *slog.Logger
}

// Summary is the aggregated result returned to the dashboard layer.
type Summary struct {
	// Totals over bot-filtered pageviews
	PageViews      int
	UniqueVisitors int
	Sessions       int

	// Ranked breakdowns, sorted by count descending
	TopPages         []events.MetricCountResult
	TopReferrers     []events.MetricCountResult
	TopCampaigns     []events.MetricCountResult
	Devices          []events.MetricCountResult
	Browsers         []events.MetricCountResult
	OperatingSystems []events.MetricCountResult
	Countries        []events.MetricCountResult
	Languages        []events.MetricCountResult
	CustomEvents     []events.MetricCountResult

	// Session metrics
	BounceRate                   float64
	AvgSessionDurationSeconds    int
	MedianSessionDurationSeconds int
	ConversionRate               float64
	ReturnVisitorRate            float64
	AvgEngagementScore           float64

	// Time-bucketed series for charting
	Series []timeseries.Bucket
}

// Summarize runs the full aggregation pipeline over a prepared set of
// events and sessions for one site and time window.
func Summarize(params SummaryParams) (*Summary, error) {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := config.GetConfig()
	limit := params.Limit
	if limit <= 0 {
		limit = cfg.DefaultLimit
	}
	siteHost := params.SiteHost
	if siteHost == "" {
		siteHost = cfg.SiteHost
	}

	// Bots never reach breakdowns or totals
	humanEvents := filterBotEvents(params.Events)

	// The charting series covers pageviews only, not custom events
	pageviews := make([]events.Event, 0, len(humanEvents))
	for _, record := range humanEvents {
		if record.CustomEvent == "" {
			pageviews = append(pageviews, record)
		}
	}

	series, err := timeseries.Aggregate(pageviews, params.Granularity, params.TimeRange)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate time series: %w", err)
	}
	if params.TimeRange != nil {
		series, err = timeseries.FillMissingPeriods(series, params.Granularity, *params.TimeRange)
		if err != nil {
			return nil, fmt.Errorf("failed to fill missing periods: %w", err)
		}
	}

	breakdowns := collectBreakdowns(humanEvents, siteHost)

	summary := &Summary{
		PageViews:      breakdowns.pageViews,
		UniqueVisitors: breakdowns.visitorCount(),
		Sessions:       breakdowns.sessionCount(),

		TopPages:         breakdowns.rank(breakdowns.pages, limit),
		TopReferrers:     breakdowns.rank(breakdowns.sources, limit),
		TopCampaigns:     breakdowns.rank(breakdowns.campaigns, limit),
		Devices:          breakdowns.rank(breakdowns.devices, limit),
		Browsers:         breakdowns.rank(breakdowns.browsers, limit),
		OperatingSystems: breakdowns.rank(breakdowns.oss, limit),
		Countries:        breakdowns.rank(breakdowns.countries, limit),
		Languages:        breakdowns.rank(breakdowns.languages, limit),
		CustomEvents:     breakdowns.rank(breakdowns.customEvents, limit),

		BounceRate:                   metrics.BounceRate(params.Sessions),
		AvgSessionDurationSeconds:    metrics.AverageSessionDuration(params.Sessions),
		MedianSessionDurationSeconds: metrics.MedianSessionDuration(params.Sessions),
		ConversionRate:               metrics.ConversionRate(params.Sessions, params.ConversionSessionIDs),
		ReturnVisitorRate:            metrics.ReturnVisitorRate(params.Sessions),
		AvgEngagementScore:           averageEngagement(params.Sessions, params.ConversionSessionIDs),

		Series: series,
	}

	logger.Debug("Built analytics summary",
		slog.Int("events", len(params.Events)),
		slog.Int("human_events", len(humanEvents)),
		slog.Int("sessions", len(params.Sessions)),
		slog.Int("series_points", len(series)))

	return summary, nil
}

// averageEngagement scores each session and returns the mean, rounded
// to one decimal. Open sessions contribute their pageviews only.
func averageEngagement(sessions []events.Session, conversionSessionIDs []string) float64 {
	if len(sessions) == 0 {
		return 0
	}
	converted := make(map[string]struct{}, len(conversionSessionIDs))
	for _, id := range conversionSessionIDs {
		converted[id] = struct{}{}
	}

	sum := 0.0
	for _, session := range sessions {
		duration, _ := session.Duration()
		_, didConvert := converted[session.ID]
		sum += metrics.EngagementScore(len(session.PageViews), duration, didConvert || session.Converted)
	}
	return math.Round(sum/float64(len(sessions))*10) / 10
}

func filterBotEvents(records []events.Event) []events.Event {
	humans := make([]events.Event, 0, len(records))
	for _, record := range records {
		if record.UserAgent != "" && user_agent.Classify(record.UserAgent).Bot {
			continue
		}
		humans = append(humans, record)
	}
	return humans
}
