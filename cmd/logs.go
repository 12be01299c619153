package cmd

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/daemon"
	"github.com/nudge-cli/nudge/internal/output"
)

var logsFlagTail int

// logsCmd prints the end of the background runner's log.
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the background runner's log",
	Long: `Show the last lines of the log written by 'nudge run --background'.

Examples:
  nudge logs
  nudge logs --tail 50`,
	Annotations: noDB,
	Args:        cobra.NoArgs,
	RunE:        runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsFlagTail, "tail", "n", 20, "Number of lines to show")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	logPath := daemon.DefaultLogPath()
	cli := output.NewCLIFormatter(formatter())

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		cli.Muted("No log file found.")
		cli.Muted("Log path: " + logPath)
		return nil
	}

	lines, err := tailFile(logPath, logsFlagTail)
	if err != nil {
		return err
	}
	for _, line := range lines {
		cli.Println(line)
	}
	return nil
}

// tailFile reads the last n lines from a file.
func tailFile(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
