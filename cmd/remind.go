package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/output"
	"github.com/nudge-cli/nudge/internal/parser"
)

// Remind command flags.
var (
	remindFlagAt     string
	remindFlagTitle  string
	remindFlagDesc   string
	remindFlagRings  string
	remindFlagRepeat string
	remindFlagSound  string
	remindDeleteYes  bool
)

// remindCmd represents the remind command.
var remindCmd = &cobra.Command{
	Use:     "remind",
	Aliases: []string{"r", "rem", "reminder"},
	Short:   "Manage reminders",
	Long: `Create and manage reminders.

A reminder rings at its event time and at each ring offset before it.
Without a subcommand, lists reminders.

Time formats:
  - Relative: +5m, +1h30m, +2d
  - Natural language: "tomorrow 9am", "friday 5pm", "in 2 hours"
  - Date/time: "2026-01-15 14:00"

Examples:
  nudge remind add "Standup" tomorrow 9:30am
  nudge remind add "Dentist" --at "friday 3pm" --rings 1h,15m
  nudge remind add "Water plants" --at +1h --repeat mon,thu
  nudge remind list`,
	RunE: runRemindList,
}

// remindAddCmd creates a reminder.
var remindAddCmd = &cobra.Command{
	Use:   "add TITLE [WHEN]",
	Short: "Add a reminder",
	Long: `Add a reminder. WHEN may be given as trailing arguments or with --at.
Without a time the reminder is due after the preferred event offset.

Examples:
  nudge remind add "Standup" tomorrow 9:30am
  nudge remind add "Call back" --at +45m --rings none`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemindAdd,
}

// remindListCmd lists reminders.
var remindListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List reminders",
	RunE:    runRemindList,
}

// remindShowCmd shows one reminder.
var remindShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a reminder",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemindShow,
}

// remindEditCmd changes a reminder.
var remindEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a reminder",
	Long: `Change a reminder's fields. Only the flags given are changed, and the
reminder's pending alerts are rescheduled.

Examples:
  nudge remind edit 3fa2 --at "tomorrow 10am"
  nudge remind edit 3fa2 --title "Standup (moved)" --rings 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runRemindEdit,
}

// remindDeleteCmd deletes a reminder.
var remindDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm", "remove"},
	Short:   "Delete a reminder",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemindDelete,
}

func init() {
	for _, c := range []*cobra.Command{remindAddCmd, remindEditCmd} {
		c.Flags().StringVarP(&remindFlagAt, "at", "a", "", "Event time")
		c.Flags().StringVarP(&remindFlagDesc, "desc", "d", "", "Description")
		c.Flags().StringVarP(&remindFlagRings, "rings", "r", "",
			"Ring offsets before the event, e.g. '1h,15m' or 'none'")
		c.Flags().StringVar(&remindFlagRepeat, "repeat", "",
			"Recurrence: never, minute, daily, weekly, monthly, yearly or weekdays like 'mon,wed'")
		c.Flags().StringVar(&remindFlagSound, "sound", "", "Sound file or name; empty rings the terminal bell")
	}
	remindEditCmd.Flags().StringVarP(&remindFlagTitle, "title", "t", "", "Title")

	remindDeleteCmd.Flags().BoolVarP(&remindDeleteYes, "yes", "y", false, "Skip confirmation")

	// Dynamic completion
	remindShowCmd.ValidArgsFunction = completeReminderArgs
	remindEditCmd.ValidArgsFunction = completeReminderArgs
	remindDeleteCmd.ValidArgsFunction = completeReminderArgs

	remindCmd.AddCommand(remindAddCmd)
	remindCmd.AddCommand(remindListCmd)
	remindCmd.AddCommand(remindShowCmd)
	remindCmd.AddCommand(remindEditCmd)
	remindCmd.AddCommand(remindDeleteCmd)

	rootCmd.AddCommand(remindCmd)
}

// applyReminderFlags copies the changed flags onto r.
func applyReminderFlags(cmd *cobra.Command, r *model.Reminder) error {
	flags := cmd.Flags()
	if flags.Changed("title") {
		title, err := cleanTitle("title", remindFlagTitle)
		if err != nil {
			return err
		}
		r.Title = title
	}
	if flags.Changed("desc") {
		desc, err := cleanText("description", remindFlagDesc)
		if err != nil {
			return err
		}
		r.Description = desc
	}
	if flags.Changed("rings") {
		offsets, err := parser.ParseOffsets(remindFlagRings)
		if err != nil {
			return err
		}
		r.RingOffsets = offsets
	}
	if flags.Changed("repeat") {
		repeat, err := parser.ParseRepeat(remindFlagRepeat)
		if err != nil {
			return err
		}
		r.Repeat = repeat
	}
	if flags.Changed("sound") {
		r.Sound = remindFlagSound
	}
	return nil
}

// runRemindAdd handles creating a new reminder.
func runRemindAdd(cmd *cobra.Command, args []string) error {
	prefs, err := ctx.Preferences.Get()
	if err != nil {
		return err
	}

	now := ctx.Now()
	event, err := parseWhenOr(whenInput(remindFlagAt, args[1:]), now, now.Add(prefs.EventOffset))
	if err != nil {
		return err
	}

	title, err := cleanTitle("title", args[0])
	if err != nil {
		return err
	}

	reminder := model.NewReminder(title, "", event, prefs)
	if err := applyReminderFlags(cmd, reminder); err != nil {
		return err
	}

	if err := saved(ctx.CreateReminder(reminder)); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewReminderOutput(reminder))
	}
	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Reminder %s added for %s", cli.ID(reminder.ShortID()),
		parser.FormatWhen(reminder.EventTime, now)))
	if len(reminder.RingOffsets) > 0 {
		cli.Muted("  Rings " + parser.FormatOffsets(reminder.RingOffsets) + " before")
	}
	return nil
}

// runRemindList lists reminders.
func runRemindList(cmd *cobra.Command, args []string) error {
	reminders, err := ctx.Reminders.List()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintReminders(reminders)
	}
	ctx.CLIFormatter().PrintReminders(reminders, ctx.Now())
	return nil
}

// runRemindShow shows one reminder.
func runRemindShow(cmd *cobra.Command, args []string) error {
	reminder, err := ctx.ResolveReminder(args[0])
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewReminderOutput(reminder))
	}
	ctx.CLIFormatter().PrintReminder(reminder, ctx.Now())
	return nil
}

// runRemindEdit changes a reminder and reschedules it.
func runRemindEdit(cmd *cobra.Command, args []string) error {
	reminder, err := ctx.ResolveReminder(args[0])
	if err != nil {
		return err
	}
	old := *reminder

	if cmd.Flags().Changed("at") {
		event, err := parser.ParseWhen(remindFlagAt, ctx.Now())
		if err != nil {
			return err
		}
		reminder.EventTime = event
	}
	if err := applyReminderFlags(cmd, reminder); err != nil {
		return err
	}

	if err := saved(ctx.UpdateReminder(&old, reminder)); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewReminderOutput(reminder))
	}
	ctx.CLIFormatter().Success("Reminder " + reminder.ShortID() + " updated")
	return nil
}

// runRemindDelete deletes a reminder and its pending alerts.
func runRemindDelete(cmd *cobra.Command, args []string) error {
	reminder, err := ctx.ResolveReminder(args[0])
	if err != nil {
		return err
	}

	if !confirm(remindDeleteYes, fmt.Sprintf("Delete reminder %q?", reminder.Title)) {
		ctx.CLIFormatter().Muted("Cancelled.")
		return nil
	}

	if err := ctx.DeleteReminder(reminder); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"deleted": reminder.Key})
	}
	ctx.CLIFormatter().Success("Reminder " + reminder.ShortID() + " deleted")
	return nil
}
