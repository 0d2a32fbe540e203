package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/devnunu/sentry-crash-report/internal/alerting"
	"github.com/devnunu/sentry-crash-report/internal/sentry"
)

// SentryAPI is the slice of the Sentry client the report pipeline needs.
type SentryAPI interface {
	ListIssues(ctx context.Context, q sentry.IssueQuery) ([]sentry.Issue, error)
	CrashFreeRate(ctx context.Context, start, end time.Time) (rate float64, ok bool, err error)
}

// Collector builds metric snapshots from Sentry data for one category
// window. It is stateless; all windows derive from the now passed in.
type Collector struct {
	api SentryAPI
	log *zap.Logger
}

// NewCollector creates a snapshot collector.
func NewCollector(api SentryAPI, log *zap.Logger) *Collector {
	return &Collector{api: api, log: log}
}

// crashStats aggregates crash-level issues from one window's listing.
type crashStats struct {
	totalCrashes  int
	totalIssues   int
	affectedUsers int
}

// isCrashLevel reports whether an issue level counts as a crash. Warnings
// and info-level issues are tracked by Sentry but never alerted on here.
func isCrashLevel(level string) bool {
	return level == "error" || level == "fatal"
}

// aggregate sums crash events, issue count, and affected users over a
// listing, skipping non-crash levels.
func aggregate(issues []sentry.Issue) crashStats {
	var s crashStats
	for i := range issues {
		if !isCrashLevel(issues[i].Level) {
			continue
		}
		s.totalIssues++
		s.affectedUsers += issues[i].UserCount
		if n, err := strconv.Atoi(issues[i].Count); err == nil {
			s.totalCrashes += n
		}
	}
	return s
}

// Collect builds the metric snapshot for one category. It returns the
// snapshot, the crash issues observed in the current window sorted by
// event count descending, and the current window itself.
//
// Metrics that cannot be computed (no session data, unknown baseline) are
// left out of the snapshot rather than set to zero; rule evaluation reads
// an absent metric as zero, so an uncomputable signal can only loosen a
// rule, never fire it with a fabricated value.
func (c *Collector) Collect(ctx context.Context, category, release string, now time.Time) (alerting.Snapshot, []sentry.Issue, Window, error) {
	var current, baseline Window
	switch category {
	case alerting.CategoryDaily:
		current, baseline = dailyWindows(now)
	case alerting.CategoryWeekly:
		current, baseline = weeklyWindows(now)
	case alerting.CategoryVersionMonitor:
		current, baseline = monitorWindows(now)
	default:
		return nil, nil, Window{}, fmt.Errorf("unknown report category %q", category)
	}

	issues, err := c.api.ListIssues(ctx, sentry.IssueQuery{
		Start:   current.Start,
		End:     current.End,
		Release: release,
	})
	if err != nil {
		return nil, nil, Window{}, fmt.Errorf("listing issues for %s: %w", category, err)
	}
	stats := aggregate(issues)

	newIssues, err := c.api.ListIssues(ctx, sentry.IssueQuery{
		Start:   current.Start,
		End:     current.End,
		Release: release,
		NewOnly: true,
	})
	if err != nil {
		return nil, nil, Window{}, fmt.Errorf("listing new issues for %s: %w", category, err)
	}

	snapshot := alerting.Snapshot{
		alerting.MetricTotalCrashes:  float64(stats.totalCrashes),
		alerting.MetricTotalIssues:   float64(stats.totalIssues),
		alerting.MetricAffectedUsers: float64(stats.affectedUsers),
		alerting.MetricNewIssueCount: float64(aggregate(newIssues).totalIssues),
	}

	if alerting.MetricApplicable(alerting.MetricCrashFreeRateDrop, category) {
		c.addCrashFreeRateDrop(ctx, snapshot, current, baseline)
	}
	if alerting.MetricApplicable(alerting.MetricSurgeMultiplier, category) {
		c.addSurgeMultiplier(ctx, snapshot, stats, baseline, release, category)
	}

	crashes := filterCrashes(issues)
	sort.SliceStable(crashes, func(i, j int) bool {
		return eventCount(crashes[i]) > eventCount(crashes[j])
	})
	return snapshot, crashes, current, nil
}

// addCrashFreeRateDrop sets crash_free_rate_drop to the percentage-point
// decline from the baseline window to the current one. Missing session
// data for either window leaves the metric out.
func (c *Collector) addCrashFreeRateDrop(ctx context.Context, snapshot alerting.Snapshot, current, baseline Window) {
	curRate, curOK, err := c.api.CrashFreeRate(ctx, current.Start, current.End)
	if err != nil {
		c.log.Warn("crash-free rate unavailable for current window", zap.Error(err))
		return
	}
	baseRate, baseOK, err := c.api.CrashFreeRate(ctx, baseline.Start, baseline.End)
	if err != nil {
		c.log.Warn("crash-free rate unavailable for baseline window", zap.Error(err))
		return
	}
	if !curOK || !baseOK {
		return
	}
	snapshot[alerting.MetricCrashFreeRateDrop] = baseRate - curRate
}

// addSurgeMultiplier sets surge_multiplier to the percent increase of
// current crash events over the baseline window, scaled to the same span.
// A zero-crash baseline is treated as one event to keep the ratio finite.
func (c *Collector) addSurgeMultiplier(ctx context.Context, snapshot alerting.Snapshot, current crashStats, baseline Window, release, category string) {
	baseIssues, err := c.api.ListIssues(ctx, sentry.IssueQuery{
		Start:   baseline.Start,
		End:     baseline.End,
		Release: release,
	})
	if err != nil {
		c.log.Warn("baseline issue listing failed, skipping surge metric",
			zap.String("category", category), zap.Error(err))
		return
	}

	baseCrashes := float64(aggregate(baseIssues).totalCrashes)
	spans := baseline.End.Sub(baseline.Start).Hours() / currentSpanHours(category)
	if spans > 1 {
		baseCrashes /= spans
	}
	if baseCrashes < 1 {
		baseCrashes = 1
	}
	snapshot[alerting.MetricSurgeMultiplier] = (float64(current.totalCrashes) - baseCrashes) / baseCrashes * 100
}

// currentSpanHours returns the current window length in hours, used to
// scale a longer baseline window down to a comparable span.
func currentSpanHours(category string) float64 {
	if category == alerting.CategoryVersionMonitor {
		return 24
	}
	return 24 * 7
}

// filterCrashes keeps only crash-level issues.
func filterCrashes(issues []sentry.Issue) []sentry.Issue {
	out := make([]sentry.Issue, 0, len(issues))
	for i := range issues {
		if isCrashLevel(issues[i].Level) {
			out = append(out, issues[i])
		}
	}
	return out
}

// eventCount parses an issue's string event count, treating unparsable
// values as zero.
func eventCount(issue sentry.Issue) int {
	n, _ := strconv.Atoi(issue.Count)
	return n
}
