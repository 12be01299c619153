package cmd

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/errors"
	"github.com/nudge-cli/nudge/internal/output"
)

// stopCmd stops the background runner.
var stopCmd = &cobra.Command{
	Use:         "stop",
	Short:       "Stop the background runner",
	Annotations: noDB,
	Args:        cobra.NoArgs,
	RunE:        runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	runner := newRunner()
	pid := runner.Status().PID

	f := formatter()
	err := runner.Stop()
	if stderrors.Is(err, errors.ErrDaemonNotRunning) {
		if f.IsJSON() {
			return f.JSON(map[string]any{"stopped": false, "running": false})
		}
		output.NewCLIFormatter(f).Muted("nudge is not running")
		return nil
	}
	if err != nil {
		return err
	}

	if f.IsJSON() {
		return f.JSON(map[string]any{"stopped": true, "pid": pid})
	}
	output.NewCLIFormatter(f).Success(fmt.Sprintf("Stopped nudge (was PID %d)", pid))
	return nil
}
