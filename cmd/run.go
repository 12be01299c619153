package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/audio"
	"github.com/nudge-cli/nudge/internal/config"
	"github.com/nudge-cli/nudge/internal/daemon"
	"github.com/nudge-cli/nudge/internal/errors"
	"github.com/nudge-cli/nudge/internal/output"
	"github.com/nudge-cli/nudge/internal/scheduler"
)

// Run command flags.
var (
	runFlagBackground  bool
	runFlagInteractive bool
)

// runCmd delivers alerts until stopped.
var runCmd = &cobra.Command{
	Use:     "run",
	Aliases: []string{"start", "daemon"},
	Short:   "Deliver alerts until stopped",
	Long: `Load every pending reminder and task and ring each one when it is due.

In the foreground, alerts are printed to the terminal and acknowledged
automatically unless --interactive is given. With --background the
runner detaches and writes to its log file; use 'nudge status',
'nudge logs' and 'nudge stop' to manage it.

While the runner holds the database, other commands that read or change
records cannot open it. Stop the runner first, or use 'nudge shell',
which delivers alerts and accepts commands in one process.

Examples:
  nudge run
  nudge run --interactive
  nudge run --background`,
	Annotations: noDB,
	Args:        cobra.NoArgs,
	RunE:        runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runFlagBackground, "background", "b", false,
		"Detach and run in the background")
	runCmd.Flags().BoolVarP(&runFlagInteractive, "interactive", "i", false,
		"Ask how to handle each alert (acknowledge, snooze or view)")

	rootCmd.AddCommand(runCmd)
}

// newRunner creates a runner manager from the loaded configuration.
func newRunner() *daemon.Runner {
	return daemon.NewRunner(daemon.Options{KillTimeout: config.Global.Daemon.KillTimeout})
}

// snapshotOf summarizes a schedule for the runner state file.
func snapshotOf(s *scheduler.Scheduler) daemon.Snapshot {
	pending := s.Pending()
	snap := daemon.Snapshot{Pending: len(pending)}
	if len(pending) > 0 {
		snap.NextFire = pending[0].FireTime
	}
	return snap
}

func runRun(cmd *cobra.Command, args []string) error {
	if inShell {
		return fmt.Errorf("the shell already delivers alerts")
	}

	runner := newRunner()
	if runFlagBackground {
		return runBackground(runner)
	}

	if status := runner.Status(); status.Running {
		return fmt.Errorf("%w (PID %d)", errors.ErrDaemonRunning, status.PID)
	}
	if runFlagInteractive && !isInteractive() {
		return fmt.Errorf("--interactive needs a terminal")
	}

	var err error
	if ctx, err = openContext(); err != nil {
		return err
	}

	sched, err := ctx.Host()
	if err != nil {
		return err
	}

	var responder scheduler.Responder = scheduler.AutoResponder{}
	if runFlagInteractive {
		responder = output.PromptResponder{}
	}
	presenter, flush := alertPresenter(output.NewConsole(ctx.Formatter, ctx.Clock))
	defer flush()
	poller := scheduler.NewPoller(sched, ctx.Deliverer(audio.NewExecPlayer(), presenter, responder),
		ctx.Config.Scheduler.PollInterval)

	if !ctx.IsJSON() {
		cli := ctx.CLIFormatter()
		cli.Title("nudge is running")
		cli.Muted(fmt.Sprintf("%d alerts pending. Press Ctrl+C to stop.", sched.Len()))
	}

	return runner.Run(cmd.Context(), poller, func() daemon.Snapshot { return snapshotOf(sched) })
}

// runBackground re-executes nudge as a detached runner, forwarding the
// flags that change how it loads and logs.
func runBackground(runner *daemon.Runner) error {
	childArgs := []string{"run"}
	if flagConfig != "" {
		childArgs = append(childArgs, "--config", flagConfig)
	}
	if flagDebug {
		childArgs = append(childArgs, "--debug")
	}
	if outputFormat() == output.FormatJSON {
		childArgs = append(childArgs, "--json")
	}
	childArgs = append(childArgs, "--color", "never")

	logPath := daemon.DefaultLogPath()
	pid, err := runner.StartBackground(childArgs, logPath)
	if err != nil {
		if pid != 0 {
			return fmt.Errorf("%w (PID %d)", err, pid)
		}
		return err
	}

	f := formatter()
	if f.IsJSON() {
		return f.JSON(map[string]any{"started": true, "pid": pid, "log": logPath})
	}
	cli := output.NewCLIFormatter(f)
	cli.Success(fmt.Sprintf("nudge started in the background (PID %d)", pid))
	cli.Muted("Logs: " + logPath)
	return nil
}
