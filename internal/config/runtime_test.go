package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultRuntimeConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()

	assert.Equal(t, time.Second, cfg.Scheduler.PollInterval)
	assert.Equal(t, time.Minute, cfg.Scheduler.ResponseTimeout)
	assert.Equal(t, "", cfg.Storage.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, 5*time.Second, cfg.Daemon.KillTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestGlobalConfigExists(t *testing.T) {
	require.NotNil(t, Global)
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, "nudge", filepath.Base(filepath.Dir(path)))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRuntimeConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
scheduler:
  poll_interval: 2s
  response_timeout: 30s
storage:
  path: /tmp/nudge-db
log:
  level: debug
  json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Scheduler.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.ResponseTimeout)
	assert.Equal(t, "/tmp/nudge-db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	// Unset keys keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.Daemon.KillTimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "scheduler:\n  poll_interval: 2s\n")
	t.Setenv("NUDGE_SCHEDULER_POLL_INTERVAL", "500ms")
	t.Setenv("NUDGE_LOG_LEVEL", "info")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Scheduler.PollInterval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "scheduler: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, "scheduler:\n  poll_interval: 1m\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll_interval")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RuntimeConfig)
	}{
		{"poll_too_fast", func(c *RuntimeConfig) { c.Scheduler.PollInterval = time.Millisecond }},
		{"zero_response_timeout", func(c *RuntimeConfig) { c.Scheduler.ResponseTimeout = 0 }},
		{"zero_kill_timeout", func(c *RuntimeConfig) { c.Daemon.KillTimeout = 0 }},
		{"unknown_level", func(c *RuntimeConfig) { c.Log.Level = "loud" }},
		{"webhook_bad_name", func(c *RuntimeConfig) {
			c.Webhooks = []WebhookConfig{{Name: "team chat", URL: "https://example.com/hook"}}
		}},
		{"webhook_duplicate", func(c *RuntimeConfig) {
			c.Webhooks = []WebhookConfig{
				{Name: "team", URL: "https://example.com/a"},
				{Name: "team", URL: "https://example.com/b"},
			}
		}},
		{"webhook_unknown_type", func(c *RuntimeConfig) {
			c.Webhooks = []WebhookConfig{{Name: "team", Type: "pager", URL: "https://example.com/hook"}}
		}},
		{"webhook_plain_http", func(c *RuntimeConfig) {
			c.Webhooks = []WebhookConfig{{Name: "team", URL: "http://example.com/hook"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRuntimeConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadWebhooks(t *testing.T) {
	path := writeConfig(t, `
webhooks:
  - name: team
    type: Slack
    url: https://hooks.slack.com/services/T0/B0/X
  - name: local
    url: http://localhost:8080/alerts
    template: '{"text": "{{.Subtitle}}"}'
  - name: old
    type: discord
    url: https://discord.com/api/webhooks/1/abc
    disabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Webhooks, 3)

	assert.Equal(t, WebhookSlack, cfg.Webhooks[0].Type)
	assert.Equal(t, WebhookGeneric, cfg.Webhooks[1].Type)
	assert.Equal(t, `{"text": "{{.Subtitle}}"}`, cfg.Webhooks[1].Template)
	assert.True(t, cfg.Webhooks[2].Disabled)

	enabled := cfg.EnabledWebhooks()
	require.Len(t, enabled, 2)
	assert.Equal(t, "team", enabled[0].Name)
	assert.Equal(t, "local", enabled[1].Name)
}
