package alerting

import (
	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
)

// DefaultRules returns the built-in alert rules seeded on first run: one
// warning and one critical rule per category. Thresholds follow the
// long-standing report pipeline defaults (surge percentages over baseline,
// minimum user impact for critical).
func DefaultRules() []entities.AlertRule {
	return []entities.AlertRule{
		{
			Name:              "Daily crash warning",
			Category:          CategoryDaily,
			Severity:          SeverityWarning,
			Enabled:           true,
			ConditionOperator: CombineAny,
			Conditions: []entities.AlertCondition{
				{Metric: MetricTotalCrashes, Operator: OperatorGreaterOrEqual, Threshold: 100, Position: 0},
				{Metric: MetricNewIssueCount, Operator: OperatorGreaterOrEqual, Threshold: 5, Position: 1},
			},
		},
		{
			Name:              "Daily crash critical",
			Category:          CategoryDaily,
			Severity:          SeverityCritical,
			Enabled:           true,
			ConditionOperator: CombineAny,
			Conditions: []entities.AlertCondition{
				{Metric: MetricTotalCrashes, Operator: OperatorGreaterOrEqual, Threshold: 500, Position: 0},
				{Metric: MetricAffectedUsers, Operator: OperatorGreaterOrEqual, Threshold: 20, Position: 1},
				{Metric: MetricCrashFreeRateDrop, Operator: OperatorGreaterOrEqual, Threshold: 1, Position: 2},
			},
		},
		{
			Name:              "Weekly crash warning",
			Category:          CategoryWeekly,
			Severity:          SeverityWarning,
			Enabled:           true,
			ConditionOperator: CombineAny,
			Conditions: []entities.AlertCondition{
				{Metric: MetricSurgeMultiplier, Operator: OperatorGreaterOrEqual, Threshold: 50, Position: 0},
			},
		},
		{
			Name:              "Weekly crash critical",
			Category:          CategoryWeekly,
			Severity:          SeverityCritical,
			Enabled:           true,
			ConditionOperator: CombineAny,
			Conditions: []entities.AlertCondition{
				{Metric: MetricSurgeMultiplier, Operator: OperatorGreaterOrEqual, Threshold: 100, Position: 0},
				{Metric: MetricCrashFreeRateDrop, Operator: OperatorGreaterOrEqual, Threshold: 2, Position: 1},
			},
		},
		{
			Name:              "Release crash warning",
			Category:          CategoryVersionMonitor,
			Severity:          SeverityWarning,
			Enabled:           true,
			ConditionOperator: CombineAny,
			Conditions: []entities.AlertCondition{
				{Metric: MetricSurgeMultiplier, Operator: OperatorGreaterOrEqual, Threshold: 50, Position: 0},
				{Metric: MetricNewIssueCount, Operator: OperatorGreaterOrEqual, Threshold: 5, Position: 1},
			},
		},
		{
			Name:              "Release crash critical",
			Category:          CategoryVersionMonitor,
			Severity:          SeverityCritical,
			Enabled:           true,
			ConditionOperator: CombineAny,
			Conditions: []entities.AlertCondition{
				{Metric: MetricSurgeMultiplier, Operator: OperatorGreaterOrEqual, Threshold: 100, Position: 0},
				{Metric: MetricAffectedUsers, Operator: OperatorGreaterOrEqual, Threshold: 20, Position: 1},
			},
		},
	}
}
