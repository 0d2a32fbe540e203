package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/devnunu/sentry-crash-report/internal/alerting"
	"github.com/devnunu/sentry-crash-report/internal/analysis"
	"github.com/devnunu/sentry-crash-report/internal/datastore"
	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
	"github.com/devnunu/sentry-crash-report/internal/datastore/repository"
	"github.com/devnunu/sentry-crash-report/internal/notify"
	"github.com/devnunu/sentry-crash-report/internal/sentry"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=ON",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, datastore.Migrate(db))
	return db
}

// recordingSender captures notification messages instead of delivering.
type recordingSender struct {
	messages []notify.ReportMessage
	err      error
}

func (r *recordingSender) SendReport(_ context.Context, m notify.ReportMessage) error {
	r.messages = append(r.messages, m)
	return r.err
}

// stubSummarizer returns a canned summary or error.
type stubSummarizer struct {
	resp *analysis.SummaryResponse
	err  error
}

func (s *stubSummarizer) Summarize(context.Context, analysis.SummaryRequest) (*analysis.SummaryResponse, error) {
	return s.resp, s.err
}

func newTestGenerator(t *testing.T, api SentryAPI, summarizer Summarizer, sender Sender) (*Generator, repository.ReportRepository) {
	t.Helper()
	db := setupTestDB(t)
	log := zap.NewNop()

	ruleRepo := repository.NewAlertRuleRepository(db)
	require.NoError(t, alerting.SeedDefaultRules(t.Context(), ruleRepo, log))

	reportRepo := repository.NewReportRepository(db)
	gen := NewGenerator(NewCollector(api, log), alerting.NewEngine(ruleRepo, log),
		reportRepo, summarizer, sender, log)
	gen.clock = func() time.Time { return testNow }
	return gen, reportRepo
}

// quietAPI returns traffic far below every default threshold.
func quietAPI() *stubSentry {
	return &stubSentry{
		listFn: func(q sentry.IssueQuery) ([]sentry.Issue, error) {
			if q.NewOnly {
				return nil, nil
			}
			return []sentry.Issue{{ID: "1", Title: "minor", Level: "error", Count: "3", UserCount: 1}}, nil
		},
	}
}

// noisyAPI returns traffic that trips the daily critical defaults.
func noisyAPI() *stubSentry {
	return &stubSentry{
		listFn: func(q sentry.IssueQuery) ([]sentry.Issue, error) {
			if q.NewOnly {
				return nil, nil
			}
			return []sentry.Issue{
				{ID: "1", Title: "login crash", Level: "fatal", Count: "800", UserCount: 120},
			}, nil
		},
	}
}

func TestRun_DailyNormal(t *testing.T) {
	gen, repo := newTestGenerator(t, quietAPI(), nil, nil)

	rpt, err := gen.Run(t.Context(), alerting.CategoryDaily, "")
	require.NoError(t, err)

	assert.Equal(t, entities.ReportStatusDone, rpt.Status)
	assert.Equal(t, alerting.SeverityNormal, rpt.Severity)
	assert.Equal(t, "2026-08-29", rpt.FromDate)
	assert.Equal(t, "2026-08-29", rpt.ToDate)
	assert.Empty(t, rpt.RuleName)
	assert.NotEmpty(t, rpt.ReportID)

	var snapshot map[string]float64
	require.NoError(t, json.Unmarshal([]byte(rpt.Snapshot), &snapshot))
	assert.InDelta(t, 3, snapshot[alerting.MetricTotalCrashes], 0.0001)

	stored, err := repo.GetReportByReportID(t.Context(), rpt.ReportID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReportStatusDone, stored.Status)
}

func TestRun_DailyCritical(t *testing.T) {
	sender := &recordingSender{}
	gen, _ := newTestGenerator(t, noisyAPI(), nil, sender)

	rpt, err := gen.Run(t.Context(), alerting.CategoryDaily, "")
	require.NoError(t, err)

	assert.Equal(t, alerting.SeverityCritical, rpt.Severity)
	assert.NotZero(t, rpt.RuleID)
	assert.NotEmpty(t, rpt.RuleName)
	assert.NotEmpty(t, rpt.Breakdown)

	var eval alerting.Evaluation
	require.NoError(t, json.Unmarshal([]byte(rpt.Breakdown), &eval))
	assert.True(t, eval.Matched)
	assert.NotEmpty(t, eval.ConditionResults)

	require.Len(t, sender.messages, 1)
	assert.Equal(t, alerting.SeverityCritical, sender.messages[0].Verdict.Severity)
	assert.Same(t, rpt, sender.messages[0].Report)
}

func TestRun_CollectFailureMarksError(t *testing.T) {
	api := &stubSentry{
		listFn: func(sentry.IssueQuery) ([]sentry.Issue, error) {
			return nil, errors.New("sentry unreachable")
		},
	}
	gen, repo := newTestGenerator(t, api, nil, nil)

	rpt, err := gen.Run(t.Context(), alerting.CategoryDaily, "")
	require.Error(t, err)

	stored, getErr := repo.GetReportByReportID(t.Context(), rpt.ReportID)
	require.NoError(t, getErr)
	assert.Equal(t, entities.ReportStatusError, stored.Status)
	assert.Contains(t, stored.ErrorText, "sentry unreachable")
}

func TestRun_SummarizerFillsTitleAndSummary(t *testing.T) {
	summarizer := &stubSummarizer{resp: &analysis.SummaryResponse{
		Title:   "Quiet Friday",
		Summary: "Nothing out of the ordinary.",
	}}
	gen, _ := newTestGenerator(t, quietAPI(), summarizer, nil)

	rpt, err := gen.Run(t.Context(), alerting.CategoryDaily, "")
	require.NoError(t, err)
	assert.Equal(t, "Quiet Friday", rpt.Title)
	assert.Equal(t, "Nothing out of the ordinary.", rpt.Summary)
}

func TestRun_SummarizerFailureIsNonFatal(t *testing.T) {
	summarizer := &stubSummarizer{err: errors.New("model overloaded")}
	gen, _ := newTestGenerator(t, quietAPI(), summarizer, nil)

	rpt, err := gen.Run(t.Context(), alerting.CategoryDaily, "")
	require.NoError(t, err)
	assert.Equal(t, entities.ReportStatusDone, rpt.Status)
	assert.Equal(t, "Daily Report 2026-08-29", rpt.Title)
	assert.Empty(t, rpt.Summary)
}

func TestRun_SenderFailureIsNonFatal(t *testing.T) {
	sender := &recordingSender{err: errors.New("slack down")}
	gen, _ := newTestGenerator(t, noisyAPI(), nil, sender)

	rpt, err := gen.Run(t.Context(), alerting.CategoryDaily, "")
	require.NoError(t, err)
	assert.Equal(t, entities.ReportStatusDone, rpt.Status)
}

func TestRun_VersionMonitorRequiresRelease(t *testing.T) {
	gen, _ := newTestGenerator(t, quietAPI(), nil, nil)

	_, err := gen.Run(t.Context(), alerting.CategoryVersionMonitor, "")
	assert.Error(t, err)
}

func TestRun_UnknownCategory(t *testing.T) {
	gen, _ := newTestGenerator(t, quietAPI(), nil, nil)

	_, err := gen.Run(t.Context(), "hourly", "")
	assert.Error(t, err)
}
