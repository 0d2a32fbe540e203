// crashreport is the Sentry crash reporting service: it aggregates crash
// metrics, evaluates alert rules, and posts severity-ranked reports to
// Slack.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	debugMode  bool
)

func main() {
	root := &cobra.Command{
		Use:          "crashreport",
		Short:        "Crash report and alerting service for Sentry projects",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	root.AddCommand(serveCommand())
	root.AddCommand(reportCommand())
	root.AddCommand(monitorCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger.
func newLogger() (*zap.Logger, error) {
	if debugMode {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}
