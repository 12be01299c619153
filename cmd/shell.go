package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nudge-cli/nudge/internal/audio"
	"github.com/nudge-cli/nudge/internal/daemon"
	"github.com/nudge-cli/nudge/internal/logging"
	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/output"
	"github.com/nudge-cli/nudge/internal/scheduler"
)

// inShell is set while commands run inside 'nudge shell'. The context
// and its scheduler then outlive each command.
var inShell bool

const shellPrompt = "nudge> "

// shellCmd runs commands and delivers alerts in one process.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run commands while alerts are delivered",
	Long: `Start an interactive session. Every nudge command can be typed without
the leading 'nudge', and alerts ring while the session is open.

When an alert rings, answer on the next line: Enter acknowledges it,
's' snoozes it for the snooze length in your preferences and 'v'
acknowledges it and shows the full record. Unanswered alerts are
acknowledged after the response timeout.

Examples:
  nudge shell
  nudge> remind add "Tea" --at "in 4 minutes"
  nudge> agenda
  nudge> exit`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	if inShell {
		return fmt.Errorf("already inside the shell")
	}

	sched, err := ctx.Host()
	if err != nil {
		return err
	}

	timeout := ctx.Config.Scheduler.ResponseTimeout
	responder := scheduler.NewQueueResponder(timeout)
	console := output.NewConsole(ctx.Formatter, ctx.Clock)
	presenter, flush := alertPresenter(console)
	defer flush()
	poller := scheduler.NewPoller(sched, ctx.Deliverer(audio.NewExecPlayer(), presenter, responder),
		ctx.Config.Scheduler.PollInterval)
	if err := poller.Start(); err != nil {
		return err
	}
	defer poller.Stop()

	defaults := persistentValues(rootCmd)
	inShell = true
	defer func() {
		inShell = false
		resetFlags(rootCmd, defaults)
	}()

	signals := daemon.NewSignalHandler()
	defer signals.Stop()

	interactive := isInteractive()
	cli := ctx.CLIFormatter()
	if !ctx.IsJSON() {
		cli.Title("nudge shell")
		cli.Muted(fmt.Sprintf("%d alerts pending. Type 'help' for commands, 'exit' to leave.", sched.Len()))
	}

	lines := readLines(cmd.InOrStdin())
	prompt := func() {
		if interactive && !ctx.IsJSON() {
			ctx.Formatter.Print(shellPrompt)
		}
	}

	var (
		pending  *scheduler.ResponseRequest
		deadline time.Time
	)
	prompt()
	for {
		select {
		case req := <-responder.Requests():
			// A new alert supersedes one left unanswered.
			if pending != nil {
				pending.Reply(model.ResponseAcknowledge)
			}
			pending = &req
			deadline = time.Now().Add(timeout)
			console.Prompt()
			prompt()

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if pending != nil {
				req := pending
				pending = nil
				if time.Now().Before(deadline) {
					req.Reply(model.ParseResponse(line))
					prompt()
					continue
				}
			}

			if done := shellExecute(line, defaults); done {
				return nil
			}
			prompt()

		case sig := <-signals.C():
			logging.DebugLog("shell interrupted", "signal", sig.String())
			if !ctx.IsJSON() {
				ctx.Formatter.Println("")
			}
			return nil
		}
	}
}

// shellExecute runs one input line through the command tree and reports
// whether the session should end.
func shellExecute(line string, defaults map[string]string) bool {
	args, err := splitArgs(line)
	if err != nil {
		printError(err)
		return false
	}
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "exit", "quit":
		return true
	case "nudge":
		args = args[1:]
	}

	resetFlags(rootCmd, defaults)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		printError(err)
	}
	return false
}

// readLines feeds input lines to a channel that is closed at EOF.
func readLines(r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			out <- scanner.Text()
		}
	}()
	return out
}

// persistentValues records the current values of c's persistent flags,
// so flags given to 'nudge shell' itself survive each command.
func persistentValues(c *cobra.Command) map[string]string {
	values := make(map[string]string)
	c.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		values[f.Name] = f.Value.String()
	})
	return values
}

// resetFlags restores every flag in the tree to its default. Persistent
// root flags go back to the values in defaults instead.
func resetFlags(c *cobra.Command, defaults map[string]string) {
	reset := func(f *pflag.Flag) {
		value, ok := defaults[f.Name]
		if !ok {
			value = f.DefValue
		}
		if f.Value.String() == value && !f.Changed {
			return
		}
		_ = f.Value.Set(value)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub, defaults)
	}
}

// splitArgs splits a command line into words. Single and double quotes
// group words and a backslash escapes the next character.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, fmt.Errorf("line ends with a backslash")
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}
