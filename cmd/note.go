package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/output"
)

// Note command flags.
var (
	noteFlagTitle string
	noteFlagDesc  string
	noteDeleteYes bool
)

// noteCmd represents the note command.
var noteCmd = &cobra.Command{
	Use:     "note",
	Aliases: []string{"n", "notes"},
	Short:   "Keep notes",
	Long: `Keep short notes alongside reminders and tasks. Notes never ring.
Without a subcommand, lists notes.

Examples:
  nudge note add "Gate code" --desc "4411#"
  nudge note list`,
	RunE: runNoteList,
}

var noteAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteAdd,
}

var noteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes",
	RunE:    runNoteList,
}

var noteShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteShow,
}

var noteEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteEdit,
}

var noteDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm", "remove"},
	Short:   "Delete a note",
	Args:    cobra.ExactArgs(1),
	RunE:    runNoteDelete,
}

func init() {
	noteAddCmd.Flags().StringVarP(&noteFlagDesc, "desc", "d", "", "Note text")
	noteEditCmd.Flags().StringVarP(&noteFlagTitle, "title", "t", "", "Title")
	noteEditCmd.Flags().StringVarP(&noteFlagDesc, "desc", "d", "", "Note text")
	noteDeleteCmd.Flags().BoolVarP(&noteDeleteYes, "yes", "y", false, "Skip confirmation")

	noteShowCmd.ValidArgsFunction = completeNoteArgs
	noteEditCmd.ValidArgsFunction = completeNoteArgs
	noteDeleteCmd.ValidArgsFunction = completeNoteArgs

	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteListCmd)
	noteCmd.AddCommand(noteShowCmd)
	noteCmd.AddCommand(noteEditCmd)
	noteCmd.AddCommand(noteDeleteCmd)

	rootCmd.AddCommand(noteCmd)
}

func runNoteAdd(cmd *cobra.Command, args []string) error {
	title, err := cleanTitle("title", args[0])
	if err != nil {
		return err
	}
	desc, err := cleanText("note text", noteFlagDesc)
	if err != nil {
		return err
	}

	note := &model.Note{Title: title, Description: desc}
	if err := ctx.Notes.Create(note); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewNoteOutput(note))
	}
	cli := ctx.CLIFormatter()
	cli.Success("Note " + cli.ID(note.ShortID()) + " added")
	return nil
}

func runNoteList(cmd *cobra.Command, args []string) error {
	notes, err := ctx.Notes.List()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintNotes(notes)
	}
	ctx.CLIFormatter().PrintNotes(notes)
	return nil
}

func runNoteShow(cmd *cobra.Command, args []string) error {
	note, err := ctx.ResolveNote(args[0])
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewNoteOutput(note))
	}
	ctx.CLIFormatter().PrintNote(note)
	return nil
}

func runNoteEdit(cmd *cobra.Command, args []string) error {
	note, err := ctx.ResolveNote(args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("title") {
		if note.Title, err = cleanTitle("title", noteFlagTitle); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("desc") {
		if note.Description, err = cleanText("note text", noteFlagDesc); err != nil {
			return err
		}
	}
	if err := ctx.Notes.Update(note); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewNoteOutput(note))
	}
	ctx.CLIFormatter().Success("Note " + note.ShortID() + " updated")
	return nil
}

func runNoteDelete(cmd *cobra.Command, args []string) error {
	note, err := ctx.ResolveNote(args[0])
	if err != nil {
		return err
	}

	if !confirm(noteDeleteYes, fmt.Sprintf("Delete note %q?", note.Title)) {
		ctx.CLIFormatter().Muted("Cancelled.")
		return nil
	}

	if err := ctx.Notes.Delete(note.Key); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"deleted": note.Key})
	}
	ctx.CLIFormatter().Success("Note " + note.ShortID() + " deleted")
	return nil
}
