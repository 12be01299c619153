package cmd

import (
	stderrors "errors"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/nudge-cli/nudge/internal/output"
	"github.com/nudge-cli/nudge/internal/parser"
	"github.com/nudge-cli/nudge/internal/runtime"
	"github.com/nudge-cli/nudge/internal/validate"
)

// isInteractive reports whether stdin is a terminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// whenInput returns the time expression given either as trailing
// arguments or as a flag. Arguments win.
func whenInput(flag string, args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	return flag
}

// parseWhenOr parses input relative to now, returning fallback when the
// input is empty.
func parseWhenOr(input string, now, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(input) == "" {
		return fallback, nil
	}
	return parser.ParseWhen(input, now)
}

// saved turns a schedule conflict into a warning. The record itself was
// stored, so the command succeeds.
func saved(err error) error {
	var conflict *runtime.ScheduleConflictError
	if stderrors.As(err, &conflict) {
		if !ctx.IsJSON() {
			ctx.CLIFormatter().Warning(conflict.Error())
		}
		return nil
	}
	return err
}

// confirm asks before a destructive action. It is skipped with --yes,
// in JSON mode, inside the shell, and when stdin is not a terminal.
func confirm(skip bool, title string) bool {
	if skip || ctx.IsJSON() || inShell || !isInteractive() {
		return true
	}
	return output.Confirm(title, "Delete")
}

// formatter returns the context's formatter, or a fresh one configured
// from the global flags for commands that run without a database.
func formatter() *output.Formatter {
	if ctx != nil {
		return ctx.Formatter
	}
	f := output.NewFormatter()
	applyOutputFlags(f)
	return f
}

// cleanTitle trims a one-line title and checks it.
func cleanTitle(field, s string) (string, error) {
	s = validate.CleanLine(s)
	return s, validate.Title(field, s)
}

// cleanText tidies a free-text description and checks its length.
func cleanText(field, s string) (string, error) {
	s = validate.CleanText(s)
	return s, validate.Text(field, s)
}
