// Package conf loads and validates the service configuration.
package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the root configuration for the crash report service.
type Settings struct {
	Server    ServerSettings    `mapstructure:"server"`
	Database  DatabaseSettings  `mapstructure:"database"`
	Sentry    SentrySettings    `mapstructure:"sentry"`
	Slack     SlackSettings     `mapstructure:"slack"`
	Analysis  AnalysisSettings  `mapstructure:"analysis"`
	Scheduler SchedulerSettings `mapstructure:"scheduler"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Listen string `mapstructure:"listen"`
}

// DatabaseSettings selects and configures the backing store.
type DatabaseSettings struct {
	Driver string `mapstructure:"driver"` // sqlite or mysql
	DSN    string `mapstructure:"dsn"`    // file path for sqlite, DSN for mysql
}

// SentrySettings configures the error-tracking API client.
type SentrySettings struct {
	BaseURL     string   `mapstructure:"base_url"`
	Token       string   `mapstructure:"token"`
	Org         string   `mapstructure:"org"`
	Project     string   `mapstructure:"project"`
	ProjectID   string   `mapstructure:"project_id"`
	Environment string   `mapstructure:"environment"`
	Timeout     Duration `mapstructure:"timeout"`
	CacheTTL    Duration `mapstructure:"cache_ttl"`
}

// SlackSettings configures notification delivery.
type SlackSettings struct {
	WebhookURL   string `mapstructure:"webhook_url"`
	DashboardURL string `mapstructure:"dashboard_url"`
}

// AnalysisSettings configures the AI summarization server client.
// Summarization is best-effort: reports are saved even when it fails.
type AnalysisSettings struct {
	Enabled bool     `mapstructure:"enabled"`
	BaseURL string   `mapstructure:"base_url"`
	Timeout Duration `mapstructure:"timeout"`
}

// SchedulerSettings configures when reports are generated.
type SchedulerSettings struct {
	Enabled       bool     `mapstructure:"enabled"`
	DailyHour     int      `mapstructure:"daily_hour"`     // local hour, 0-23
	WeeklyWeekday int      `mapstructure:"weekly_weekday"` // 0=Sunday .. 6=Saturday
	WeeklyHour    int      `mapstructure:"weekly_hour"`
	// Version-monitor cadence: checks run every MonitorInterval during the
	// intensive window after a release, then hourly until MonitorTotal.
	MonitorInterval  Duration `mapstructure:"monitor_interval"`
	MonitorIntensive Duration `mapstructure:"monitor_intensive"`
	MonitorTotal     Duration `mapstructure:"monitor_total"`
}

// Load reads configuration from the given file (optional), environment
// variables prefixed CRASHREPORT_, and built-in defaults.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CRASHREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "crashreport.db")
	v.SetDefault("sentry.base_url", "https://sentry.io/api/0")
	v.SetDefault("sentry.environment", "Production")
	v.SetDefault("sentry.timeout", "15s")
	v.SetDefault("sentry.cache_ttl", "5m")
	v.SetDefault("analysis.enabled", false)
	v.SetDefault("analysis.timeout", "30s")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.daily_hour", 9)
	v.SetDefault("scheduler.weekly_weekday", int(time.Monday))
	v.SetDefault("scheduler.weekly_hour", 10)
	v.SetDefault("scheduler.monitor_interval", "15m")
	v.SetDefault("scheduler.monitor_intensive", "6h")
	v.SetDefault("scheduler.monitor_total", "168h")
}

// Validate checks settings that would otherwise fail deep inside a pipeline run.
func (s *Settings) Validate() error {
	if s.Database.Driver != "sqlite" && s.Database.Driver != "mysql" {
		return fmt.Errorf("database.driver must be sqlite or mysql, got %q", s.Database.Driver)
	}
	if s.Database.DSN == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}
	if s.Scheduler.DailyHour < 0 || s.Scheduler.DailyHour > 23 {
		return fmt.Errorf("scheduler.daily_hour must be 0-23, got %d", s.Scheduler.DailyHour)
	}
	if s.Scheduler.WeeklyHour < 0 || s.Scheduler.WeeklyHour > 23 {
		return fmt.Errorf("scheduler.weekly_hour must be 0-23, got %d", s.Scheduler.WeeklyHour)
	}
	if s.Scheduler.WeeklyWeekday < 0 || s.Scheduler.WeeklyWeekday > 6 {
		return fmt.Errorf("scheduler.weekly_weekday must be 0-6, got %d", s.Scheduler.WeeklyWeekday)
	}
	return nil
}
