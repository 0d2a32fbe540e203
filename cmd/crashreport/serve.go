package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devnunu/sentry-crash-report/internal/alerting"
	"github.com/devnunu/sentry-crash-report/internal/analysis"
	"github.com/devnunu/sentry-crash-report/internal/api"
	"github.com/devnunu/sentry-crash-report/internal/conf"
	"github.com/devnunu/sentry-crash-report/internal/datastore"
	"github.com/devnunu/sentry-crash-report/internal/datastore/repository"
	"github.com/devnunu/sentry-crash-report/internal/notify"
	"github.com/devnunu/sentry-crash-report/internal/report"
	"github.com/devnunu/sentry-crash-report/internal/scheduler"
	"github.com/devnunu/sentry-crash-report/internal/sentry"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and report scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := conf.Load(configFile)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := datastore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}

	ruleRepo := repository.NewAlertRuleRepository(db)
	reportRepo := repository.NewReportRepository(db)
	issueRepo := repository.NewIssueRepository(db)

	if err := alerting.SeedDefaultRules(ctx, ruleRepo, log); err != nil {
		return fmt.Errorf("seeding default alert rules: %w", err)
	}

	notifier, err := notify.NewSlackNotifier(cfg.Slack.WebhookURL, cfg.Slack.DashboardURL, reportRepo, log)
	if err != nil {
		return err
	}

	gen := buildGenerator(cfg, ruleRepo, reportRepo, notifier, log)

	sched := scheduler.New(gen, scheduler.Config{
		DailyHour:        cfg.Scheduler.DailyHour,
		WeeklyWeekday:    time.Weekday(cfg.Scheduler.WeeklyWeekday),
		WeeklyHour:       cfg.Scheduler.WeeklyHour,
		MonitorInterval:  cfg.Scheduler.MonitorInterval.Std(),
		MonitorIntensive: cfg.Scheduler.MonitorIntensive.Std(),
		MonitorTotal:     cfg.Scheduler.MonitorTotal.Std(),
	}, log)
	if cfg.Scheduler.Enabled {
		sched.Start()
		defer sched.Stop()
	} else {
		log.Info("scheduler disabled; reports run only via the API or CLI")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	api.NewController(e, ruleRepo, reportRepo, issueRepo, gen, sched, notifier, log)

	notifyCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Server.Listen))
		errCh <- e.Start(cfg.Server.Listen)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-notifyCtx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
	}
	return nil
}

// buildGenerator wires the report pipeline from configuration. notifier
// may be nil when no webhook is configured.
func buildGenerator(cfg *conf.Settings, ruleRepo repository.AlertRuleRepository, reportRepo repository.ReportRepository, notifier *notify.Notifier, log *zap.Logger) *report.Generator {
	sentryClient := sentry.NewClient(sentry.Options{
		BaseURL:     cfg.Sentry.BaseURL,
		Token:       cfg.Sentry.Token,
		Org:         cfg.Sentry.Org,
		Project:     cfg.Sentry.Project,
		ProjectID:   cfg.Sentry.ProjectID,
		Environment: cfg.Sentry.Environment,
		Timeout:     cfg.Sentry.Timeout.Std(),
		CacheTTL:    cfg.Sentry.CacheTTL.Std(),
	})

	var summarizer report.Summarizer
	if cfg.Analysis.Enabled && cfg.Analysis.BaseURL != "" {
		summarizer = analysis.NewClient(cfg.Analysis.BaseURL, cfg.Analysis.Timeout.Std())
	}

	var sender report.Sender
	if notifier != nil {
		sender = notifier
	}

	engine := alerting.NewEngine(ruleRepo, log)
	collector := report.NewCollector(sentryClient, log)
	return report.NewGenerator(collector, engine, reportRepo, summarizer, sender, log)
}
