package conf

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", settings.Server.Listen)
	assert.Equal(t, "sqlite", settings.Database.Driver)
	assert.Equal(t, "https://sentry.io/api/0", settings.Sentry.BaseURL)
	assert.Equal(t, 15*time.Second, settings.Sentry.Timeout.Std())
	assert.Equal(t, 15*time.Minute, settings.Scheduler.MonitorInterval.Std())
	assert.True(t, settings.Scheduler.Enabled)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  listen: ":9090"
database:
  driver: mysql
  dsn: "user:pass@tcp(localhost:3306)/crashreport"
sentry:
  org: acme
  project: mobile-app
  timeout: 30s
scheduler:
  daily_hour: 7
  monitor_interval: 10m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", settings.Server.Listen)
	assert.Equal(t, "mysql", settings.Database.Driver)
	assert.Equal(t, "acme", settings.Sentry.Org)
	assert.Equal(t, 30*time.Second, settings.Sentry.Timeout.Std())
	assert.Equal(t, 7, settings.Scheduler.DailyHour)
	assert.Equal(t, 10*time.Minute, settings.Scheduler.MonitorInterval.Std())
	// Untouched keys keep their defaults.
	assert.Equal(t, "Production", settings.Sentry.Environment)
}

func TestLoad_InvalidSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: postgres\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDuration_JSONRoundTrip(t *testing.T) {
	type payload struct {
		Interval Duration `json:"interval"`
	}

	out, err := json.Marshal(payload{Interval: Duration(90 * time.Second)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"interval":"1m30s"}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"interval":"5m"}`), &in))
	assert.Equal(t, 5*time.Minute, in.Interval.Std())

	require.NoError(t, json.Unmarshal([]byte(`{"interval":null}`), &in))
	assert.Equal(t, time.Duration(0), in.Interval.Std())
}

func TestDuration_JSONInvalid(t *testing.T) {
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_YAML(t *testing.T) {
	var payload struct {
		Interval Duration `yaml:"interval"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("interval: 45s\n"), &payload))
	assert.Equal(t, 45*time.Second, payload.Interval.Std())

	out, err := yaml.Marshal(payload)
	require.NoError(t, err)
	assert.Equal(t, "interval: 45s\n", string(out))

	assert.Error(t, yaml.Unmarshal([]byte("interval: [1, 2]\n"), &payload))
}
