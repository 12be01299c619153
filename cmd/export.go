package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/parser"
	"github.com/nudge-cli/nudge/internal/storage"
)

// Export command flags.
var (
	exportFlagFormat string
	exportFlagOutput string
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"backup", "dump"},
	Short:   "Back up reminders, tasks and notes",
	Long: `Write every reminder, task and note, plus your preferences, as a JSON
backup that 'nudge import' can restore. With --format csv, reminders
and tasks are written as a spreadsheet instead.

Examples:
  nudge export -o backup.json
  nudge export --format csv -o agenda.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlagFormat, "format", "F", "json", "Output format: json, csv")
	exportCmd.Flags().StringVarP(&exportFlagOutput, "output", "o", "", "Output file (stdout if omitted)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFlagFormat != "json" && exportFlagFormat != "csv" {
		return fmt.Errorf("unknown export format %q; use json or csv", exportFlagFormat)
	}

	backup, err := ctx.DB.Snapshot(ctx.Now())
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportFlagOutput != "" {
		f, err := os.Create(exportFlagOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if exportFlagFormat == "csv" {
		err = exportCSV(w, backup)
	} else {
		err = storage.WriteBackup(w, backup)
	}
	if err != nil {
		return err
	}

	// Print summary if writing to file
	if exportFlagOutput != "" && !ctx.IsJSON() {
		cli := ctx.CLIFormatter()
		cli.Success("Backup written: " + exportFlagOutput)
		cli.Printf("  Reminders: %d\n", len(backup.Reminders))
		cli.Printf("  Tasks: %d\n", len(backup.Tasks))
		if exportFlagFormat == "json" {
			cli.Printf("  Notes: %d\n", len(backup.Notes))
		}
	}
	return nil
}

func exportCSV(w io.Writer, b *storage.Backup) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{
		"kind", "id", "title", "description", "when", "rings_before", "repeat", "sound",
	}); err != nil {
		return err
	}

	for _, r := range b.Reminders {
		if err := writer.Write([]string{
			"reminder",
			r.ShortID(),
			r.Title,
			r.Description,
			r.EventTime.Format(time.RFC3339),
			parser.FormatOffsets(r.RingOffsets),
			r.Repeat.String(),
			r.Sound,
		}); err != nil {
			return err
		}
	}
	for _, t := range b.Tasks {
		if err := writer.Write([]string{
			"task",
			t.ShortID(),
			t.Description,
			"",
			t.Deadline.Format(time.RFC3339),
			"",
			"",
			t.Sound,
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
