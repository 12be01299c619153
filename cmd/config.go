package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/config"
	"github.com/nudge-cli/nudge/internal/output"
	"github.com/nudge-cli/nudge/internal/storage"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg"},
	Short:   "Show the runtime configuration",
	Long: `Show the settings nudge runs with: the config file merged over the
defaults, with NUDGE_* environment variables applied on top.

Reminder defaults such as ring offsets and snooze length are preferences;
see 'nudge prefs'.

Keys:
  scheduler.poll_interval     How often the current minute is checked (100ms to 30s)
  scheduler.response_timeout  How long the shell waits for an answer to an alert
  storage.path                Database directory, or :memory:
  log.level                   debug, info, warn or error
  log.json                    Log as JSON
  daemon.kill_timeout         How long 'nudge stop' waits before killing the runner
  webhooks                    Endpoints alerts are posted to; see 'nudge webhook'

Examples:
  nudge config
  nudge config path
  NUDGE_LOG_LEVEL=debug nudge config`,
	Annotations: noDB,
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show the effective configuration",
	Annotations: noDB,
	RunE:        runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file path",
	Annotations: noDB,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := formatter()
		if f.IsJSON() {
			return f.JSON(map[string]string{"path": configPath()})
		}
		f.Println(configPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

type configOutput struct {
	File            string `json:"file"`
	PollInterval    string `json:"poll_interval"`
	ResponseTimeout string `json:"response_timeout"`
	StoragePath     string `json:"storage_path"`
	LogLevel        string `json:"log_level"`
	LogJSON         bool   `json:"log_json"`
	KillTimeout     string `json:"kill_timeout"`
	Webhooks        int    `json:"webhooks"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Global
	storagePath := cfg.Storage.Path
	if storagePath == "" {
		storagePath = storage.DefaultPath()
	}

	out := configOutput{
		File:            configPath(),
		PollInterval:    cfg.Scheduler.PollInterval.String(),
		ResponseTimeout: cfg.Scheduler.ResponseTimeout.String(),
		StoragePath:     storagePath,
		LogLevel:        cfg.Log.Level,
		LogJSON:         cfg.Log.JSON,
		KillTimeout:     cfg.Daemon.KillTimeout.String(),
		Webhooks:        len(cfg.EnabledWebhooks()),
	}

	f := formatter()
	if f.IsJSON() {
		return f.JSON(out)
	}

	cli := output.NewCLIFormatter(f)
	cli.Title("nudge configuration")
	cli.Muted("  file: " + out.File)
	cli.Println("")
	cli.Printf("  %-28s %s\n", "scheduler.poll_interval", out.PollInterval)
	cli.Printf("  %-28s %s\n", "scheduler.response_timeout", out.ResponseTimeout)
	cli.Printf("  %-28s %s\n", "storage.path", out.StoragePath)
	cli.Printf("  %-28s %s\n", "log.level", out.LogLevel)
	cli.Printf("  %-28s %t\n", "log.json", out.LogJSON)
	cli.Printf("  %-28s %s\n", "daemon.kill_timeout", out.KillTimeout)
	cli.Printf("  %-28s %s\n", "webhooks", fmt.Sprintf("%d enabled", out.Webhooks))
	return nil
}
