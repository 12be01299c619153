package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/audio"
	"github.com/nudge-cli/nudge/internal/scheduler"
	"github.com/nudge-cli/nudge/internal/tui"
)

// dashboardCmd represents the dashboard command.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "tui"},
	Short:   "Watch upcoming alerts in a live dashboard",
	Long: `Open a live terminal dashboard. Alerts ring while it is open.

The dashboard shows:
  - The next alert with a countdown
  - What rings after it
  - Alerts delivered since the dashboard opened

Keyboard Controls:
  enter - Acknowledge the ringing alert
  s     - Snooze the ringing alert
  v     - Acknowledge it and show the full record
  esc   - Close the record
  r     - Refresh
  q     - Quit

Examples:
  nudge dashboard
  nudge dash`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if inShell {
		return fmt.Errorf("the dashboard cannot be opened inside the shell")
	}
	if !isInteractive() {
		return fmt.Errorf("the dashboard needs a terminal")
	}

	sched, err := ctx.Host()
	if err != nil {
		return err
	}

	cfg := ctx.Config.Scheduler
	responder := scheduler.NewQueueResponder(cfg.ResponseTimeout)
	config := tui.DashboardConfig{
		Agenda:          sched,
		Clock:           ctx.Clock,
		Requests:        responder.Requests(),
		ResponseTimeout: cfg.ResponseTimeout,
	}

	return tui.Run(config, func(p *tea.Program) (func(), error) {
		presenter, flush := alertPresenter(tui.NewPresenter(p.Send, ctx.Clock))
		poller := scheduler.NewPoller(sched, ctx.Deliverer(audio.NewExecPlayer(), presenter, responder),
			cfg.PollInterval)
		if err := poller.Start(); err != nil {
			flush()
			return nil, err
		}
		return func() {
			poller.Stop()
			flush()
		}, nil
	})
}
