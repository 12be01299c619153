package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/output"
	"github.com/nudge-cli/nudge/internal/parser"
)

// Prefs command flags.
var (
	prefsFlagSnooze      string
	prefsFlagRings       string
	prefsFlagEventOffset string
	prefsFlagTitle       string
	prefsFlagDesc        string
	prefsFlagSound       string
	prefsFlagTaskSound   string
	prefsFlagRepeat      string
)

// prefsCmd represents the prefs command.
var prefsCmd = &cobra.Command{
	Use:     "prefs",
	Aliases: []string{"preferences", "defaults"},
	Short:   "Show or change preferences",
	Long: `Preferences are the defaults used for new reminders and tasks, and the
snooze length of delivered alerts. Without a subcommand, shows them.

Examples:
  nudge prefs
  nudge prefs set --snooze 5m --rings 1h,10m
  nudge prefs edit
  nudge prefs reset`,
	RunE: runPrefsShow,
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show preferences",
	RunE:  runPrefsShow,
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change preferences with flags",
	RunE:  runPrefsSet,
}

var prefsEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Change preferences interactively",
	RunE:  runPrefsEdit,
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default preferences",
	RunE:  runPrefsReset,
}

func init() {
	f := prefsSetCmd.Flags()
	f.StringVar(&prefsFlagSnooze, "snooze", "", "Snooze length, 1m to 24h")
	f.StringVar(&prefsFlagRings, "rings", "", "Default ring offsets, e.g. '1h,15m' or 'none'")
	f.StringVar(&prefsFlagEventOffset, "event-offset", "", "Default event time of a new reminder, from now")
	f.StringVar(&prefsFlagTitle, "title", "", "Default reminder title")
	f.StringVar(&prefsFlagDesc, "desc", "", "Default reminder description")
	f.StringVar(&prefsFlagSound, "sound", "", "Default reminder sound")
	f.StringVar(&prefsFlagTaskSound, "task-sound", "", "Default task sound")
	f.StringVar(&prefsFlagRepeat, "repeat", "", "Default repeat pattern")

	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	prefsCmd.AddCommand(prefsEditCmd)
	prefsCmd.AddCommand(prefsResetCmd)

	rootCmd.AddCommand(prefsCmd)
}

func printPreferences(prefs *model.Preferences) error {
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewPreferencesOutput(prefs))
	}
	ctx.CLIFormatter().PrintPreferences(prefs)
	return nil
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	prefs, err := ctx.Preferences.Get()
	if err != nil {
		return err
	}
	return printPreferences(prefs)
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	prefs, err := ctx.Preferences.Get()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := false
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) { changed = changed || f.Changed })
	if !changed {
		return fmt.Errorf("nothing to change; see 'nudge prefs set --help'")
	}

	durations := []struct {
		flag  string
		value string
		dst   *time.Duration
	}{
		{"snooze", prefsFlagSnooze, &prefs.SnoozeFor},
		{"event-offset", prefsFlagEventOffset, &prefs.EventOffset},
	}
	for _, d := range durations {
		if !flags.Changed(d.flag) {
			continue
		}
		v, err := parser.ParseDuration(d.value)
		if err != nil {
			return err
		}
		*d.dst = v
	}

	if flags.Changed("rings") {
		offsets, err := parser.ParseOffsets(prefsFlagRings)
		if err != nil {
			return err
		}
		prefs.RingOffsets = offsets
	}
	if flags.Changed("repeat") {
		repeat, err := parser.ParseRepeat(prefsFlagRepeat)
		if err != nil {
			return err
		}
		prefs.Repeat = repeat
	}
	if flags.Changed("title") {
		prefs.ReminderTitle = prefsFlagTitle
	}
	if flags.Changed("desc") {
		prefs.ReminderDescription = prefsFlagDesc
	}
	if flags.Changed("sound") {
		prefs.ReminderSound = prefsFlagSound
	}
	if flags.Changed("task-sound") {
		prefs.TaskSound = prefsFlagTaskSound
	}

	if err := ctx.Preferences.Set(prefs); err != nil {
		return err
	}
	if !ctx.IsJSON() {
		ctx.CLIFormatter().Success("Preferences saved")
	}
	return printPreferences(prefs)
}

func runPrefsEdit(cmd *cobra.Command, args []string) error {
	if inShell || !isInteractive() {
		return fmt.Errorf("prefs edit needs a terminal; use 'nudge prefs set' instead")
	}

	prefs, err := ctx.Preferences.Get()
	if err != nil {
		return err
	}
	if err := output.EditPreferences(prefs); err != nil {
		return err
	}
	if err := ctx.Preferences.Set(prefs); err != nil {
		return err
	}
	ctx.CLIFormatter().Success("Preferences saved")
	return printPreferences(prefs)
}

func runPrefsReset(cmd *cobra.Command, args []string) error {
	if err := ctx.Preferences.Reset(); err != nil {
		return err
	}
	if !ctx.IsJSON() {
		ctx.CLIFormatter().Success("Preferences reset to defaults")
	}
	return printPreferences(model.DefaultPreferences())
}
