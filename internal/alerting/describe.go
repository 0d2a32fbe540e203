package alerting

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
)

// Combination phrases shown when a rule has more than one condition. These
// back both the editor's live preview and notification text, so they must be
// unambiguous about AND vs OR semantics.
const (
	describeAll = "Triggers when ALL of the following are met:"
	describeAny = "Triggers when ANY of the following is met:"
	describeOne = "Triggers when:"
)

// DescribeRule renders a deterministic, human-readable description of a
// rule's trigger condition: one line per condition in stored order, preceded
// by the combination mode when there is more than one condition.
//
// The description is purely a function of the rule value passed in,
// including unsaved edits, and never consults a snapshot or the evaluator.
// It describes the rule structurally, not its outcome against real data.
func DescribeRule(rule *entities.AlertRule) string {
	var b strings.Builder

	switch {
	case len(rule.Conditions) <= 1:
		b.WriteString(describeOne)
	case rule.ConditionOperator == CombineAny:
		b.WriteString(describeAny)
	default:
		b.WriteString(describeAll)
	}

	for i := range rule.Conditions {
		cond := &rule.Conditions[i]
		b.WriteString("\n- ")
		b.WriteString(describeCondition(cond))
	}
	return b.String()
}

// describeCondition renders one condition as
// "<metric label> <operator symbol> <threshold><unit>".
// Unknown metric or operator keys render as their raw key so that registry
// drift is visible in the preview instead of silently hidden.
func describeCondition(cond *entities.AlertCondition) string {
	metricLabel := cond.Metric
	unit := ""
	if m, ok := metricRegistry[cond.Metric]; ok {
		metricLabel = m.Label
		if m.Unit == UnitPercent {
			unit = "%p"
		}
	}

	symbol := cond.Operator
	if op, ok := operatorRegistry[cond.Operator]; ok {
		symbol = op.Symbol
	}

	return fmt.Sprintf("%s %s %s%s", metricLabel, symbol, formatThreshold(cond.Threshold), unit)
}

// formatThreshold renders thresholds without a trailing ".0" for whole
// numbers so that "1000" stays "1000" while "2.5" stays "2.5".
func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
