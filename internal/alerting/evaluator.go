package alerting

import (
	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
)

// Snapshot maps metric keys to the values computed for one report execution.
// Metrics absent from the snapshot are treated as 0 during evaluation: a
// missing signal means nothing happened, and a metric not computed for a
// given category must not break evaluation.
type Snapshot map[string]float64

// ConditionResult is the outcome of evaluating a single condition. Callers
// need the full breakdown to explain why a rule fired, not just that it did.
type ConditionResult struct {
	ConditionID uint    `json:"condition_id"`
	Metric      string  `json:"metric"`
	Operator    string  `json:"operator"`
	Threshold   float64 `json:"threshold"`
	Observed    float64 `json:"observed"`
	Passed      bool    `json:"passed"`
}

// Evaluation is the verdict for one rule against one snapshot.
type Evaluation struct {
	Matched          bool              `json:"matched"`
	ConditionResults []ConditionResult `json:"condition_results"`
}

// Evaluate checks a rule against a metric snapshot and returns the combined
// verdict with the per-condition breakdown in stored condition order.
//
// Conditions combine per the rule's ConditionOperator: AND requires every
// condition to pass, OR requires at least one. A single-condition rule
// behaves identically under both. Evaluation is pure and deterministic;
// the rule is assumed to have passed ValidateRule at save time. A condition
// referencing an operator no longer in the registry fails closed; that is
// registry drift, a programming error, and the caller is expected to have
// logged it via ValidateRule rather than get a silent default here.
func Evaluate(rule *entities.AlertRule, snapshot Snapshot) Evaluation {
	results := make([]ConditionResult, 0, len(rule.Conditions))
	for i := range rule.Conditions {
		cond := &rule.Conditions[i]
		observed := snapshot[cond.Metric] // absent metric reads as 0
		passed := false
		if op, ok := operatorRegistry[cond.Operator]; ok {
			passed = op.Evaluate(observed, cond.Threshold)
		}
		results = append(results, ConditionResult{
			ConditionID: cond.ID,
			Metric:      cond.Metric,
			Operator:    cond.Operator,
			Threshold:   cond.Threshold,
			Observed:    observed,
			Passed:      passed,
		})
	}
	return Evaluation{
		Matched:          combine(rule.ConditionOperator, results),
		ConditionResults: results,
	}
}

// combine folds per-condition outcomes per the rule's combination mode.
// A rule with no conditions never matches; such rules are rejected at save
// time and this is the fail-safe for data that predates validation.
func combine(conditionOperator string, results []ConditionResult) bool {
	if len(results) == 0 {
		return false
	}
	if conditionOperator == CombineAny {
		for i := range results {
			if results[i].Passed {
				return true
			}
		}
		return false
	}
	for i := range results {
		if !results[i].Passed {
			return false
		}
	}
	return true
}

// Verdict is the severity resolution for one report snapshot: the resolved
// severity, the rule that decided it (nil when normal), and that rule's
// evaluation breakdown.
type Verdict struct {
	Severity   string              `json:"severity"`
	Rule       *entities.AlertRule `json:"rule,omitempty"`
	Evaluation *Evaluation         `json:"evaluation,omitempty"`
}

// ResolveSeverity evaluates the given rules against a snapshot and returns
// the severity of the first matching rule. Rules are checked critical first
// so a critical verdict can never be masked by a simultaneously-true warning
// rule; within a severity the first match wins. With no match the verdict
// is SeverityNormal.
//
// The caller supplies the enabled rules for one category, freshly listed for
// this evaluation; nothing is cached across calls.
func ResolveSeverity(rules []entities.AlertRule, snapshot Snapshot) Verdict {
	for _, severity := range []string{SeverityCritical, SeverityWarning} {
		for i := range rules {
			rule := &rules[i]
			if rule.Severity != severity || !rule.Enabled {
				continue
			}
			eval := Evaluate(rule, snapshot)
			if eval.Matched {
				return Verdict{Severity: severity, Rule: rule, Evaluation: &eval}
			}
		}
	}
	return Verdict{Severity: SeverityNormal}
}
