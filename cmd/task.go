package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/output"
	"github.com/nudge-cli/nudge/internal/parser"
)

// Task command flags.
var (
	taskFlagDue   string
	taskFlagDesc  string
	taskFlagSound string
	taskDeleteYes bool
)

// taskCmd represents the task command.
var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t", "tasks"},
	Short:   "Manage tasks with deadlines",
	Long: `Create and manage tasks. A task rings once, at its deadline.
Without a subcommand, lists tasks.

Examples:
  nudge task add "Send invoice" friday 5pm
  nudge task add "Renew passport" --due "2026-06-01 12:00"
  nudge task remind 7c1e
  nudge task list`,
	RunE: runTaskList,
}

// taskAddCmd creates a task.
var taskAddCmd = &cobra.Command{
	Use:   "add DESCRIPTION [DEADLINE]",
	Short: "Add a task",
	Long: `Add a task. DEADLINE may be given as trailing arguments or with --due.
Without a deadline the task is due after the preferred event offset.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTaskAdd,
}

// taskListCmd lists tasks.
var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	RunE:    runTaskList,
}

// taskShowCmd shows one task.
var taskShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

// taskEditCmd changes a task.
var taskEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a task",
	Long: `Change a task's fields. Only the flags given are changed, and the
deadline alert is rescheduled.

Examples:
  nudge task edit 7c1e --due "monday 9am"
  nudge task edit 7c1e --desc "Send both invoices"`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskEdit,
}

// taskDeleteCmd deletes a task.
var taskDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm", "remove", "done"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runTaskDelete,
}

// taskRemindCmd turns a task into a reminder.
var taskRemindCmd = &cobra.Command{
	Use:   "remind ID",
	Short: "Create a reminder for a task's deadline",
	Long: `Create a reminder from a task. The reminder uses the task's description,
deadline and sound, and the preferred ring offsets, so it also rings
before the deadline. The task is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskRemind,
}

func init() {
	taskAddCmd.Flags().StringVar(&taskFlagDue, "due", "", "Deadline")
	taskAddCmd.Flags().StringVar(&taskFlagSound, "sound", "", "Sound file or name")

	taskEditCmd.Flags().StringVar(&taskFlagDue, "due", "", "Deadline")
	taskEditCmd.Flags().StringVarP(&taskFlagDesc, "desc", "d", "", "Description")
	taskEditCmd.Flags().StringVar(&taskFlagSound, "sound", "", "Sound file or name")

	taskDeleteCmd.Flags().BoolVarP(&taskDeleteYes, "yes", "y", false, "Skip confirmation")

	taskShowCmd.ValidArgsFunction = completeTaskArgs
	taskEditCmd.ValidArgsFunction = completeTaskArgs
	taskDeleteCmd.ValidArgsFunction = completeTaskArgs
	taskRemindCmd.ValidArgsFunction = completeTaskArgs

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskRemindCmd)

	rootCmd.AddCommand(taskCmd)
}

// runTaskAdd handles creating a new task.
func runTaskAdd(cmd *cobra.Command, args []string) error {
	prefs, err := ctx.Preferences.Get()
	if err != nil {
		return err
	}

	now := ctx.Now()
	deadline, err := parseWhenOr(whenInput(taskFlagDue, args[1:]), now, now.Add(prefs.EventOffset))
	if err != nil {
		return err
	}

	desc, err := cleanTitle("description", args[0])
	if err != nil {
		return err
	}

	task := model.NewTask(desc, deadline, taskFlagSound, prefs)
	if err := saved(ctx.CreateTask(task)); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewTaskOutput(task, now))
	}
	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Task %s due %s", cli.ID(task.ShortID()), parser.FormatWhen(task.Deadline, now)))
	return nil
}

// runTaskList lists tasks.
func runTaskList(cmd *cobra.Command, args []string) error {
	tasks, err := ctx.Tasks.List()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintTasks(tasks, ctx.Now())
	}
	ctx.CLIFormatter().PrintTasks(tasks, ctx.Now())
	return nil
}

// runTaskShow shows one task.
func runTaskShow(cmd *cobra.Command, args []string) error {
	task, err := ctx.ResolveTask(args[0])
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewTaskOutput(task, ctx.Now()))
	}
	ctx.CLIFormatter().PrintTask(task, ctx.Now())
	return nil
}

// runTaskEdit changes a task and reschedules its deadline.
func runTaskEdit(cmd *cobra.Command, args []string) error {
	task, err := ctx.ResolveTask(args[0])
	if err != nil {
		return err
	}
	old := *task

	flags := cmd.Flags()
	if flags.Changed("due") {
		deadline, err := parser.ParseWhen(taskFlagDue, ctx.Now())
		if err != nil {
			return err
		}
		task.Deadline = deadline
	}
	if flags.Changed("desc") {
		desc, err := cleanTitle("description", taskFlagDesc)
		if err != nil {
			return err
		}
		task.Description = desc
	}
	if flags.Changed("sound") {
		task.Sound = taskFlagSound
	}

	if err := saved(ctx.UpdateTask(&old, task)); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewTaskOutput(task, ctx.Now()))
	}
	ctx.CLIFormatter().Success("Task " + task.ShortID() + " updated")
	return nil
}

// runTaskDelete deletes a task and its deadline alert.
func runTaskDelete(cmd *cobra.Command, args []string) error {
	task, err := ctx.ResolveTask(args[0])
	if err != nil {
		return err
	}

	if !confirm(taskDeleteYes, fmt.Sprintf("Delete task %q?", task.Description)) {
		ctx.CLIFormatter().Muted("Cancelled.")
		return nil
	}

	if err := ctx.DeleteTask(task); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"deleted": task.Key})
	}
	ctx.CLIFormatter().Success("Task " + task.ShortID() + " deleted")
	return nil
}

// runTaskRemind creates a reminder for a task's deadline.
func runTaskRemind(cmd *cobra.Command, args []string) error {
	task, err := ctx.ResolveTask(args[0])
	if err != nil {
		return err
	}
	prefs, err := ctx.Preferences.Get()
	if err != nil {
		return err
	}

	reminder := task.ToReminder(prefs)
	if err := saved(ctx.CreateReminder(reminder)); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewReminderOutput(reminder))
	}
	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Reminder %s added for task %s", cli.ID(reminder.ShortID()), cli.ID(task.ShortID())))
	return nil
}
