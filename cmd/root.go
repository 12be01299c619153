// Package cmd provides the CLI commands for nudge.
//
// This software is a derivative work based on Humantime
// (https://github.com/manav03panchal/humantime), itself based on Zeit
// (https://github.com/mrusme/zeit).
// Original work copyright (c) マリウス (mrusme), Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/config"
	"github.com/nudge-cli/nudge/internal/errors"
	"github.com/nudge-cli/nudge/internal/logging"
	"github.com/nudge-cli/nudge/internal/output"
	"github.com/nudge-cli/nudge/internal/parser"
	"github.com/nudge-cli/nudge/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagJSON   bool
	flagColor  string
	flagDebug  bool
	flagConfig string
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// annotationNoDB marks commands that must not open the database, either
// because they never need it or because they open it themselves.
const annotationNoDB = "nudge/no-db"

var noDB = map[string]string{annotationNoDB: "true"}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Reminders and deadlines that ring on time",
	Long: `nudge keeps reminders, tasks and notes, and rings when they are due.

Reminders ring at their event time and at each ring offset before it.
Tasks ring once, at their deadline. Alerts are delivered by 'nudge run'
in the background, or by 'nudge shell' while you work in it.

Examples:
  nudge remind add "Standup" --at "tomorrow 9:30am" --rings 15m,5m
  nudge task add "Send invoice" friday 5pm
  nudge agenda
  nudge run --background
  nudge shell`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion and help commands (but allow __complete for dynamic completions)
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		// Inside the shell the context is already open.
		if inShell {
			applyOutputFlags(ctx.Formatter)
			return nil
		}

		if err := loadConfig(); err != nil {
			return err
		}

		if cmd.Annotations[annotationNoDB] == "true" {
			return nil
		}

		var err error
		ctx, err = openContext()
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if inShell || ctx == nil {
			return nil
		}
		err := ctx.Close()
		ctx = nil
		return err
	},
	Annotations: noDB,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show runner status
		return runStatus(cmd, args)
	},
}

// loadConfig reads the runtime configuration and sets up logging.
func loadConfig() error {
	path := flagConfig
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	config.Global = cfg

	if flagDebug {
		logging.Init(logging.DebugConfig())
		return nil
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Log.Level)
	logCfg.JSON = cfg.Log.JSON
	logging.Init(logCfg)
	return nil
}

// openContext opens the database and runtime context using the global
// flags and configuration.
func openContext() (*runtime.Context, error) {
	opts := runtime.DefaultOptions()
	opts.Config = config.Global
	opts.Debug = flagDebug

	c, err := runtime.New(opts)
	if err != nil {
		return nil, err
	}
	applyOutputFlags(c.Formatter)
	return c, nil
}

// applyOutputFlags sets the output format and colour mode from flags.
func applyOutputFlags(f *output.Formatter) {
	f.Format = outputFormat()
	switch flagColor {
	case "always":
		f.ColorMode = output.ColorAlways
	case "never":
		f.ColorMode = output.ColorNever
	default:
		f.ColorMode = output.ColorAuto
	}
}

func outputFormat() output.Format {
	if flagJSON || flagFormat == "json" {
		return output.FormatJSON
	}
	return output.FormatCLI
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Errors are printed once here.
func Execute() error {
	registerFlagCompletions()
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	// PersistentPostRunE is skipped when a command fails.
	if ctx != nil {
		_ = ctx.Close()
		ctx = nil
	}
	return err
}

// printError reports err on stderr as an "ERROR:" line with a hint, or
// as a JSON error object in JSON mode.
func printError(err error) {
	var pe *parser.ParseError
	if stderrors.As(err, &pe) {
		err = pe.ToUserError()
	}

	if outputFormat() == output.FormatJSON {
		_ = output.NewJSONFormatter(formatter()).PrintError(err.Error(), errors.GetSuggestion(err))
		return
	}
	fmt.Fprintln(os.Stderr, errors.FormatUserError(err))
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false,
		"Shorthand for --format json")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $XDG_CONFIG_HOME/nudge/config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: noDB,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("nudge %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}
