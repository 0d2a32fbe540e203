package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devnunu/sentry-crash-report/internal/alerting"
	"github.com/devnunu/sentry-crash-report/internal/conf"
	"github.com/devnunu/sentry-crash-report/internal/datastore"
	"github.com/devnunu/sentry-crash-report/internal/datastore/repository"
	"github.com/devnunu/sentry-crash-report/internal/notify"
)

func reportCommand() *cobra.Command {
	var category string
	var release string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a single report and print it as JSON",
		Long: `Generate one report run outside the scheduler. The report is stored in
the database and delivered to Slack the same way scheduled runs are.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !alerting.ValidCategory(category) {
				return fmt.Errorf("unknown category %q (valid: %s, %s, %s)",
					category, alerting.CategoryDaily, alerting.CategoryWeekly, alerting.CategoryVersionMonitor)
			}

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

			ctx := cmd.Context()
			if err := alerting.SeedDefaultRules(ctx, ruleRepo, log); err != nil {
				return fmt.Errorf("seeding default alert rules: %w", err)
			}

			notifier, err := notify.NewSlackNotifier(cfg.Slack.WebhookURL, cfg.Slack.DashboardURL, reportRepo, log)
			if err != nil {
				return err
			}
			gen := buildGenerator(cfg, ruleRepo, reportRepo, notifier, log)

			rpt, err := gen.Run(ctx, category, release)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(rpt, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", alerting.CategoryDaily, "report category (daily, weekly, version-monitor)")
	cmd.Flags().StringVar(&release, "release", "", "release version (required for version-monitor)")
	return cmd
}
