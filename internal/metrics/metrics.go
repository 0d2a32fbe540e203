// Package metrics exposes Prometheus instrumentation for the report and
// alerting pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReportsGenerated counts report executions by category and final status.
	ReportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashreport_reports_generated_total",
		Help: "Number of crash reports generated, by category and status.",
	}, []string{"category", "status"})

	// RuleEvaluations counts individual rule evaluations by category.
	RuleEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashreport_rule_evaluations_total",
		Help: "Number of alert rule evaluations, by category.",
	}, []string{"category"})

	// AlertsFired counts matched rules by category and severity.
	AlertsFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashreport_alerts_fired_total",
		Help: "Number of alert rules that matched a report snapshot.",
	}, []string{"category", "severity"})

	// NotificationsSent counts delivery attempts by channel and outcome.
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashreport_notifications_sent_total",
		Help: "Number of notifications sent, by channel and outcome.",
	}, []string{"channel", "outcome"})
)
