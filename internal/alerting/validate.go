package alerting

import (
	"fmt"
	"math"

	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
)

// ValidationError describes why a rule was rejected at save time. It is
// surfaced synchronously to the caller and never persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid alert rule: %s: %s", e.Field, e.Reason)
}

// ValidateRule checks a rule before it reaches the store. An invalid rule
// must not be constructible by the store layer; the evaluator assumes
// well-formed input.
func ValidateRule(rule *entities.AlertRule) error {
	if rule.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !ValidCategory(rule.Category) {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", rule.Category)}
	}
	if !ValidSeverity(rule.Severity) {
		return &ValidationError{Field: "severity", Reason: fmt.Sprintf("severity must be %q or %q", SeverityWarning, SeverityCritical)}
	}
	if rule.ConditionOperator != CombineAll && rule.ConditionOperator != CombineAny {
		return &ValidationError{Field: "condition_operator", Reason: fmt.Sprintf("must be %q or %q", CombineAll, CombineAny)}
	}
	if len(rule.Conditions) == 0 {
		return &ValidationError{Field: "conditions", Reason: "at least one condition is required"}
	}
	for i := range rule.Conditions {
		if err := validateCondition(&rule.Conditions[i], rule.Category, i); err != nil {
			return err
		}
	}
	return nil
}

func validateCondition(cond *entities.AlertCondition, category string, index int) error {
	field := fmt.Sprintf("conditions[%d]", index)

	metric, ok := metricRegistry[cond.Metric]
	if !ok {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown metric %q", cond.Metric)}
	}
	if !MetricApplicable(cond.Metric, category) {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("metric %q does not apply to category %q", cond.Metric, category)}
	}
	if _, ok := operatorRegistry[cond.Operator]; !ok {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown operator %q", cond.Operator)}
	}
	if math.IsNaN(cond.Threshold) || math.IsInf(cond.Threshold, 0) {
		return &ValidationError{Field: field, Reason: "threshold must be a finite number"}
	}
	// Percent metrics may use negative thresholds (a negative delta means
	// improvement); count metrics may not.
	if metric.Unit == UnitCount && cond.Threshold < 0 {
		return &ValidationError{Field: field, Reason: "threshold must not be negative for count metrics"}
	}
	return nil
}

// NormalizeConditions recomputes each condition's Position from its slice
// index. Conditions are replaced wholesale on save, so stored positions are
// never trusted.
func NormalizeConditions(rule *entities.AlertRule) {
	for i := range rule.Conditions {
		rule.Conditions[i].Position = i
	}
}
