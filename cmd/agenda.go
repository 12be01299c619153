package cmd

import (
	"github.com/spf13/cobra"
)

// agendaCmd lists what will ring, in order.
var agendaCmd = &cobra.Command{
	Use:     "agenda",
	Aliases: []string{"upcoming", "next"},
	Short:   "List pending alerts in the order they ring",
	Long: `List every pending alert: each reminder ring, each task deadline and,
inside the shell, snoozed alerts. Rings that fall in a minute already
taken by another alert are not listed, since they will not ring.

Examples:
  nudge agenda
  nudge agenda --json`,
	RunE: runAgenda,
}

func init() {
	rootCmd.AddCommand(agendaCmd)
}

func runAgenda(cmd *cobra.Command, args []string) error {
	sched := ctx.Scheduler
	if sched == nil {
		var err error
		if sched, err = ctx.Host(); err != nil {
			return err
		}
	}

	pending := sched.Pending()
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintAgenda(pending)
	}
	ctx.CLIFormatter().PrintAgenda(pending, ctx.Now())
	return nil
}
