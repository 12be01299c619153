package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/runtime"
	"github.com/nudge-cli/nudge/internal/storage"
)

// Import command flags.
var (
	importFlagDryRun bool
	importFlagForce  bool
	importFlagPrefs  bool
)

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:     "import FILE",
	Aliases: []string{"restore"},
	Short:   "Restore a backup",
	Long: `Restore reminders, tasks and notes from a backup written by
'nudge export'. Records that already exist are kept unless --force is
given. Preferences are only restored with --prefs.

Examples:
  nudge import backup.json
  nudge import backup.json --dry-run
  nudge import backup.json --force --prefs`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importFlagDryRun, "dry-run", false, "Preview import without making changes")
	importCmd.Flags().BoolVar(&importFlagForce, "force", false, "Overwrite existing records")
	importCmd.Flags().BoolVar(&importFlagPrefs, "prefs", false, "Restore preferences too")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	backup, err := storage.ReadBackup(f)
	if err != nil {
		return err
	}

	stats, err := ctx.Restore(backup, runtime.RestoreOptions{
		DryRun:      importFlagDryRun,
		Force:       importFlagForce,
		Preferences: importFlagPrefs,
	})
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{
			"dry_run":  importFlagDryRun,
			"restored": stats,
		})
	}

	cli := ctx.CLIFormatter()
	if importFlagDryRun {
		cli.Title("Would import:")
	} else {
		cli.Success("Import complete")
	}
	cli.Printf("  Reminders: %d\n", stats.Reminders)
	cli.Printf("  Tasks: %d\n", stats.Tasks)
	cli.Printf("  Notes: %d\n", stats.Notes)
	if stats.Preferences {
		cli.Printf("  Preferences: restored\n")
	}
	if stats.Skipped > 0 {
		cli.Printf("  Skipped (already exist): %d\n", stats.Skipped)
	}
	if stats.Conflicts > 0 {
		cli.Warning(fmt.Sprintf("%d restored records share a minute with another alert and will not ring", stats.Conflicts))
	}
	return nil
}
