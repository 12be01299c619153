package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/config"
	"github.com/nudge-cli/nudge/internal/model"
)

// completeReminderArgs provides completion for reminder IDs.
func completeReminderArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 || ctx == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	reminders, err := ctx.Reminders.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var suggestions []string
	for _, r := range reminders {
		if shortID := r.ShortID(); strings.HasPrefix(shortID, toComplete) {
			suggestions = append(suggestions, fmt.Sprintf("%s\t%s", shortID, r.Title))
		}
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

// completeTaskArgs provides completion for task IDs.
func completeTaskArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 || ctx == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	tasks, err := ctx.Tasks.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var suggestions []string
	for _, t := range tasks {
		if shortID := t.ShortID(); strings.HasPrefix(shortID, toComplete) {
			suggestions = append(suggestions, fmt.Sprintf("%s\t%s", shortID, t.Description))
		}
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

// completeNoteArgs provides completion for note IDs.
func completeNoteArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 || ctx == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	notes, err := ctx.Notes.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var suggestions []string
	for _, n := range notes {
		if shortID := n.ShortID(); strings.HasPrefix(shortID, toComplete) {
			suggestions = append(suggestions, fmt.Sprintf("%s\t%s", shortID, n.Title))
		}
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

// completeWebhookArgs provides completion for webhook names.
func completeWebhookArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, w := range config.Global.EnabledWebhooks() {
		names = append(names, w.Name+"\t"+w.Type)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// fixedCompletion completes a flag from a fixed list of values.
func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, v := range values {
			if strings.HasPrefix(v, toComplete) {
				out = append(out, v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerFlagCompletions wires value completion for flags with a closed
// set of values. It runs once, after every command's init has defined
// its flags.
func registerFlagCompletions() {
	repeat := fixedCompletion(
		string(model.RepeatNever),
		string(model.RepeatMinute),
		string(model.RepeatDaily),
		string(model.RepeatWeekly),
		string(model.RepeatMonthly),
		string(model.RepeatYearly),
		"mon,tue,wed,thu,fri",
		"sat,sun",
	)
	for _, c := range []*cobra.Command{remindAddCmd, remindEditCmd} {
		_ = c.RegisterFlagCompletionFunc("repeat", repeat)
		_ = c.RegisterFlagCompletionFunc("rings", fixedCompletion("none", "5m", "15m", "1h", "1d", "1h,15m"))
	}
	_ = exportCmd.RegisterFlagCompletionFunc("format", fixedCompletion("json", "csv"))
	_ = rootCmd.RegisterFlagCompletionFunc("format", fixedCompletion("cli", "json"))
	_ = rootCmd.RegisterFlagCompletionFunc("color", fixedCompletion("auto", "always", "never"))
}
