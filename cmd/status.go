package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/daemon"
	"github.com/nudge-cli/nudge/internal/output"
)

// statusCmd reports on the background runner.
var statusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show whether the background runner is alive",
	Annotations: noDB,
	Args:        cobra.NoArgs,
	RunE:        runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	status := newRunner().Status()

	f := formatter()
	if f.IsJSON() {
		return f.JSON(newStatusResponse(status))
	}

	cli := output.NewCLIFormatter(f)
	cli.Title("nudge status")
	if !status.Running {
		cli.Println("  Status:    stopped")
		cli.Println("")
		cli.Muted("Start with: nudge run --background")
		return nil
	}

	cli.Println("  Status:    running")
	cli.Printf("  PID:       %d\n", status.PID)
	if status.Uptime != "" {
		cli.Printf("  Uptime:    %s\n", status.Uptime)
	}
	cli.Printf("  Pending:   %d\n", status.Pending)
	if !status.NextFire.IsZero() {
		cli.Printf("  Next:      %s\n", output.FormatTimeShort(status.NextFire))
	}
	return nil
}

func newStatusResponse(s *daemon.Status) output.StatusResponse {
	resp := output.StatusResponse{
		Running: s.Running,
		PID:     s.PID,
		Uptime:  s.Uptime,
		Pending: s.Pending,
		PIDFile: s.PIDFile,
	}
	if !s.StartedAt.IsZero() {
		resp.StartedAt = s.StartedAt.Format(time.RFC3339)
	}
	if !s.NextFire.IsZero() {
		resp.NextFire = s.NextFire.Format(time.RFC3339)
	}
	return resp
}

