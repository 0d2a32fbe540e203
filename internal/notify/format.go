package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/devnunu/sentry-crash-report/internal/alerting"
	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
)

// severity presentation for Slack messages.
var severityEmoji = map[string]string{
	alerting.SeverityCritical: "🚨",
	alerting.SeverityWarning:  "⚠️",
	alerting.SeverityNormal:   "✅",
}

var severityHeadline = map[string]string{
	alerting.SeverityCritical: "Critical alert",
	alerting.SeverityWarning:  "Warning",
	alerting.SeverityNormal:   "All clear",
}

// ReportMessage carries everything needed to render one report notification.
type ReportMessage struct {
	Report       *entities.Report
	Snapshot     alerting.Snapshot
	Verdict      alerting.Verdict
	DashboardURL string
}

// FormatReport renders a report notification as Slack mrkdwn text. The
// output is deterministic for a given input so notification logs stay
// diffable.
func FormatReport(m ReportMessage) string {
	r := m.Report
	var b strings.Builder

	emoji := severityEmoji[m.Verdict.Severity]
	if emoji == "" {
		emoji = severityEmoji[alerting.SeverityNormal]
	}
	headline := severityHeadline[m.Verdict.Severity]
	if headline == "" {
		headline = severityHeadline[alerting.SeverityNormal]
	}

	fmt.Fprintf(&b, "%s *%s: %s*\n", emoji, alerting.CategoryLabel(r.Category), headline)
	if r.FromDate == r.ToDate {
		fmt.Fprintf(&b, "Date: %s\n", r.FromDate)
	} else {
		fmt.Fprintf(&b, "Period: %s ~ %s\n", r.FromDate, r.ToDate)
	}
	if r.Release != "" {
		fmt.Fprintf(&b, "Release: `%s`\n", r.Release)
	}

	b.WriteString("\n*Metrics*\n")
	for _, key := range alerting.SnapshotKeys(m.Snapshot) {
		label, unit := key, ""
		if info, ok := alerting.MetricByKey(key); ok {
			label, unit = info.Label, info.Unit
		}
		fmt.Fprintf(&b, "- %s: %s\n", label, formatValue(m.Snapshot[key], unit))
	}

	if m.Verdict.Rule != nil && m.Verdict.Evaluation != nil {
		fmt.Fprintf(&b, "\n*Matched rule: %s*\n", m.Verdict.Rule.Name)
		for _, cr := range m.Verdict.Evaluation.ConditionResults {
			b.WriteString(formatConditionResult(cr))
		}
	}

	if r.Summary != "" {
		fmt.Fprintf(&b, "\n*Summary*\n%s\n", r.Summary)
	}

	if m.DashboardURL != "" {
		fmt.Fprintf(&b, "\n<%s|Open dashboard>", m.DashboardURL)
	}
	return b.String()
}

// FormatIssueAlert renders an important-issue notification as Slack mrkdwn
// text. These fire from the webhook path when a new issue crosses the
// importance thresholds, outside any report run.
func FormatIssueAlert(issue *entities.Issue, dashboardURL string) string {
	var b strings.Builder

	emoji := "⚠️"
	if issue.Level == "fatal" {
		emoji = "🚨"
	}
	fmt.Fprintf(&b, "%s *Important issue: %s*\n", emoji, issue.Title)
	fmt.Fprintf(&b, "Level: `%s`\n", issue.Level)
	fmt.Fprintf(&b, "Events: %d / Users: %d\n", issue.EventCount, issue.UserCount)
	if issue.Release != "" {
		fmt.Fprintf(&b, "Release: `%s`\n", issue.Release)
	}
	if issue.IsRegression {
		b.WriteString("Regression: yes\n")
	}
	if issue.SentryURL != "" {
		fmt.Fprintf(&b, "\n<%s|Open in Sentry>", issue.SentryURL)
	} else if dashboardURL != "" {
		fmt.Fprintf(&b, "\n<%s|Open dashboard>", dashboardURL)
	}
	return b.String()
}

// formatConditionResult renders one evaluated condition as a bullet line
// with a pass/fail marker.
func formatConditionResult(cr alerting.ConditionResult) string {
	mark := "✗"
	if cr.Passed {
		mark = "✓"
	}
	label, symbol, unit := cr.Metric, cr.Operator, ""
	if info, ok := alerting.MetricByKey(cr.Metric); ok {
		label, unit = info.Label, info.Unit
	}
	if info, ok := alerting.OperatorByKey(cr.Operator); ok {
		symbol = info.Symbol
	}
	return fmt.Sprintf("%s %s %s %s (observed %s)\n",
		mark, label, symbol, formatValue(cr.Threshold, unit), formatValue(cr.Observed, unit))
}

// formatValue renders a metric value with its unit suffix. Count values
// print without a decimal point when whole.
func formatValue(v float64, unit string) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if unit == alerting.UnitPercent {
		return s + "%p"
	}
	return s
}
