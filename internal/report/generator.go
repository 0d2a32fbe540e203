// Package report runs the crash report pipeline: collect Sentry metrics
// for a category window, evaluate the alert rules, persist the report, and
// notify.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devnunu/sentry-crash-report/internal/alerting"
	"github.com/devnunu/sentry-crash-report/internal/analysis"
	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
	"github.com/devnunu/sentry-crash-report/internal/datastore/repository"
	"github.com/devnunu/sentry-crash-report/internal/metrics"
	"github.com/devnunu/sentry-crash-report/internal/notify"
	"github.com/devnunu/sentry-crash-report/internal/sentry"
)

// Summarizer produces an optional human-readable digest for a report.
type Summarizer interface {
	Summarize(ctx context.Context, req analysis.SummaryRequest) (*analysis.SummaryResponse, error)
}

// Sender delivers a finished report notification.
type Sender interface {
	SendReport(ctx context.Context, m notify.ReportMessage) error
}

// Generator orchestrates one report run end to end. Summarizer and Sender
// may be nil; the pipeline then skips those stages.
type Generator struct {
	collector  *Collector
	engine     *alerting.Engine
	repo       repository.ReportRepository
	summarizer Summarizer
	sender     Sender
	log        *zap.Logger
	clock      func() time.Time
}

// NewGenerator wires a report generator.
func NewGenerator(collector *Collector, engine *alerting.Engine, repo repository.ReportRepository, summarizer Summarizer, sender Sender, log *zap.Logger) *Generator {
	return &Generator{
		collector:  collector,
		engine:     engine,
		repo:       repo,
		summarizer: summarizer,
		sender:     sender,
		log:        log,
		clock:      time.Now,
	}
}

// Run executes one report for the category. Release is required for
// version-monitor runs and optional otherwise. The report row is persisted
// before collection starts so failed runs remain visible with their error.
func (g *Generator) Run(ctx context.Context, category, release string) (*entities.Report, error) {
	if !alerting.ValidCategory(category) {
		return nil, fmt.Errorf("unknown report category %q", category)
	}
	if category == alerting.CategoryVersionMonitor && release == "" {
		return nil, fmt.Errorf("version-monitor reports require a release")
	}

	rpt := &entities.Report{
		ReportID: uuid.NewString(),
		Category: category,
		Release:  release,
		Status:   entities.ReportStatusRunning,
	}
	if err := g.repo.CreateReport(ctx, rpt); err != nil {
		return nil, fmt.Errorf("creating report row: %w", err)
	}

	now := g.clock()
	snapshot, crashes, window, err := g.collector.Collect(ctx, category, release, now)
	if err != nil {
		return rpt, g.fail(ctx, rpt, err)
	}
	rpt.FromDate = window.FromDate()
	rpt.ToDate = window.ToDate()

	verdict, err := g.engine.EvaluateCategory(ctx, category, snapshot)
	if err != nil {
		return rpt, g.fail(ctx, rpt, err)
	}

	rpt.Severity = verdict.Severity
	if verdict.Rule != nil {
		rpt.RuleID = verdict.Rule.ID
		rpt.RuleName = verdict.Rule.Name
	}
	if data, err := json.Marshal(snapshot); err == nil {
		rpt.Snapshot = string(data)
	}
	if verdict.Evaluation != nil {
		if data, err := json.Marshal(verdict.Evaluation); err == nil {
			rpt.Breakdown = string(data)
		}
	}

	g.summarize(ctx, rpt, snapshot, crashes)

	rpt.Status = entities.ReportStatusDone
	rpt.FinishedAt = g.clock()
	if err := g.repo.UpdateReport(ctx, rpt); err != nil {
		return rpt, fmt.Errorf("saving report: %w", err)
	}
	metrics.ReportsGenerated.WithLabelValues(category, rpt.Status).Inc()

	if g.sender != nil {
		msg := notify.ReportMessage{Report: rpt, Snapshot: snapshot, Verdict: verdict}
		if err := g.sender.SendReport(ctx, msg); err != nil {
			// Delivery failure is logged on the notifier side too; the
			// report itself is complete and must not flip to error.
			g.log.Warn("report notification failed",
				zap.String("report_id", rpt.ReportID), zap.Error(err))
		}
	}
	return rpt, nil
}

// summarize fills Title and Summary via the summarization service. Any
// failure degrades to a plain title; it never fails the run.
func (g *Generator) summarize(ctx context.Context, rpt *entities.Report, snapshot alerting.Snapshot, crashes []sentry.Issue) {
	rpt.Title = fmt.Sprintf("%s %s", alerting.CategoryLabel(rpt.Category), rpt.ToDate)

	if g.summarizer == nil {
		return
	}
	req := analysis.SummaryRequest{
		Category: rpt.Category,
		FromDate: rpt.FromDate,
		ToDate:   rpt.ToDate,
		Release:  rpt.Release,
		Severity: rpt.Severity,
		Snapshot: snapshot,
	}
	if len(crashes) > 0 {
		req.TopIssue = crashes[0].Title
	}
	resp, err := g.summarizer.Summarize(ctx, req)
	if err != nil {
		g.log.Warn("report summarization failed",
			zap.String("report_id", rpt.ReportID), zap.Error(err))
		return
	}
	if resp.Title != "" {
		rpt.Title = resp.Title
	}
	rpt.Summary = resp.Summary
}

// fail marks the report row as errored and records the cause.
func (g *Generator) fail(ctx context.Context, rpt *entities.Report, cause error) error {
	rpt.Status = entities.ReportStatusError
	rpt.ErrorText = cause.Error()
	rpt.FinishedAt = g.clock()
	if err := g.repo.UpdateReport(ctx, rpt); err != nil {
		g.log.Error("saving failed report",
			zap.String("report_id", rpt.ReportID), zap.Error(err))
	}
	metrics.ReportsGenerated.WithLabelValues(rpt.Category, rpt.Status).Inc()
	return cause
}
