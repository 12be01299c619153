// Package config loads nudge's runtime configuration from
// $XDG_CONFIG_HOME/nudge/config.yaml and NUDGE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/nudge-cli/nudge/internal/validate"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// NUDGE_SCHEDULER_POLL_INTERVAL=2s.
const EnvPrefix = "NUDGE"

// RuntimeConfig holds the process-level settings. User defaults for new
// reminders live in model.Preferences instead.
type RuntimeConfig struct {
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
	Daemon    DaemonConfig    `mapstructure:"daemon"`
	Webhooks  []WebhookConfig `mapstructure:"webhooks"`
}

// SchedulerConfig holds scheduler-related configuration.
type SchedulerConfig struct {
	// PollInterval is how often the current minute is checked.
	// Default: 1s
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// ResponseTimeout is how long an alert waits for an answer in the
	// shell before it is acknowledged.
	// Default: 1m
	ResponseTimeout time.Duration `mapstructure:"response_timeout"`
}

// StorageConfig holds storage-related configuration.
type StorageConfig struct {
	// Path is the database directory. Empty uses $XDG_DATA_HOME/nudge/db.
	Path string `mapstructure:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	// Default: warn
	Level string `mapstructure:"level"`

	// JSON switches the log handler to JSON.
	JSON bool `mapstructure:"json"`
}

// DaemonConfig holds settings for the background runner.
type DaemonConfig struct {
	// KillTimeout is how long stop waits for a graceful exit before
	// sending SIGKILL.
	// Default: 5s
	KillTimeout time.Duration `mapstructure:"kill_timeout"`
}

// Webhook types.
const (
	WebhookGeneric = "generic"
	WebhookSlack   = "slack"
	WebhookDiscord = "discord"
	WebhookTeams   = "teams"
)

// WebhookConfig describes an endpoint that receives every delivered alert.
type WebhookConfig struct {
	Name string `mapstructure:"name"`

	// Type selects the payload format: generic, slack, discord or teams.
	// Default: generic
	Type string `mapstructure:"type"`

	URL string `mapstructure:"url"`

	// Template is a text/template for generic webhooks. Empty sends the
	// default JSON payload.
	Template string `mapstructure:"template"`

	Disabled bool `mapstructure:"disabled"`
}

// EnabledWebhooks returns the webhooks that are not disabled.
func (c *RuntimeConfig) EnabledWebhooks() []WebhookConfig {
	var out []WebhookConfig
	for _, w := range c.Webhooks {
		if !w.Disabled {
			out = append(out, w)
		}
	}
	return out
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Scheduler: SchedulerConfig{
			PollInterval:    time.Second,
			ResponseTimeout: time.Minute,
		},
		Log: LogConfig{
			Level: "warn",
		},
		Daemon: DaemonConfig{
			KillTimeout: 5 * time.Second,
		},
	}
}

// Global holds the configuration loaded at startup.
var Global = DefaultRuntimeConfig()

// DefaultConfigPath returns $XDG_CONFIG_HOME/nudge/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "nudge", "config.yaml")
}

// Load reads the config file at path, layered over the defaults and
// under NUDGE_* environment overrides. A missing file is not an error.
func Load(path string) (*RuntimeConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRuntimeConfig()
	v.SetDefault("scheduler.poll_interval", defaults.Scheduler.PollInterval)
	v.SetDefault("scheduler.response_timeout", defaults.Scheduler.ResponseTimeout)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.json", defaults.Log.JSON)
	v.SetDefault("daemon.kill_timeout", defaults.Daemon.KillTimeout)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultRuntimeConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that durations are usable.
func (c *RuntimeConfig) Validate() error {
	if c.Scheduler.PollInterval < 100*time.Millisecond || c.Scheduler.PollInterval > 30*time.Second {
		return fmt.Errorf("scheduler.poll_interval must be between 100ms and 30s, got %s", c.Scheduler.PollInterval)
	}
	if c.Scheduler.ResponseTimeout <= 0 {
		return fmt.Errorf("scheduler.response_timeout must be positive, got %s", c.Scheduler.ResponseTimeout)
	}
	if c.Daemon.KillTimeout <= 0 {
		return fmt.Errorf("daemon.kill_timeout must be positive, got %s", c.Daemon.KillTimeout)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}

	seen := make(map[string]bool, len(c.Webhooks))
	for i := range c.Webhooks {
		w := &c.Webhooks[i]
		if err := validate.Name(w.Name); err != nil {
			return fmt.Errorf("webhooks[%d].name: %w", i, err)
		}
		if seen[w.Name] {
			return fmt.Errorf("webhooks[%d]: duplicate name %q", i, w.Name)
		}
		seen[w.Name] = true

		w.Type = strings.ToLower(w.Type)
		switch w.Type {
		case "":
			w.Type = WebhookGeneric
		case WebhookGeneric, WebhookSlack, WebhookDiscord, WebhookTeams:
		default:
			return fmt.Errorf("webhooks[%d].type must be generic, slack, discord or teams, got %q", i, w.Type)
		}
		if err := validate.URL(w.URL); err != nil {
			return fmt.Errorf("webhooks[%d].url: %w", i, err)
		}
	}
	return nil
}
