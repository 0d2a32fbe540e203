// Package alerting provides the crash report alert rules engine.
package alerting

// Categories identify which report pipeline a rule applies to.
const (
	CategoryDaily          = "daily"
	CategoryWeekly         = "weekly"
	CategoryVersionMonitor = "version-monitor"
)

// Severities classify a report once its rules are evaluated.
// SeverityNormal is never stored on a rule; it is the resolution outcome
// when no enabled rule matches.
const (
	SeverityNormal   = "normal"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Metric keys identify numeric signals extracted from a report snapshot.
const (
	MetricTotalCrashes      = "total_crashes"
	MetricTotalIssues       = "total_issues"
	MetricAffectedUsers     = "affected_users"
	MetricNewIssueCount     = "new_issue_count"
	MetricCrashFreeRateDrop = "crash_free_rate_drop"
	MetricSurgeMultiplier   = "surge_multiplier"
)

// Operators define how an observed metric value is compared to a threshold.
const (
	OperatorGreaterOrEqual = "gte"
	OperatorGreaterThan    = "gt"
	OperatorLessOrEqual    = "lte"
	OperatorLessThan       = "lt"
	OperatorEqual          = "eq"
)

// Condition combination modes. A rule combines its conditions with exactly
// one of these; there is no negation or nesting.
const (
	CombineAll = "AND"
	CombineAny = "OR"
)

// Metric units. Percent metrics carry already-scaled percentage points,
// not 0-1 fractions.
const (
	UnitCount   = "count"
	UnitPercent = "percent"
)

// Categories lists all known categories in a stable order.
func Categories() []string {
	return []string{CategoryDaily, CategoryWeekly, CategoryVersionMonitor}
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryDaily, CategoryWeekly, CategoryVersionMonitor:
		return true
	default:
		return false
	}
}

// ValidSeverity reports whether s is a severity a rule may carry.
func ValidSeverity(s string) bool {
	return s == SeverityWarning || s == SeverityCritical
}
