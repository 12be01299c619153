package output

import (
	"encoding/json"

	"github.com/nudge-cli/nudge/internal/clock"
	"github.com/nudge-cli/nudge/internal/logging"
	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/scheduler"
)

var _ scheduler.Presenter = (*Console)(nil)

// Console presents delivered alerts on the terminal. In JSON mode each
// call writes one compact JSON object per line instead.
type Console struct {
	f     *Formatter
	cli   *CLIFormatter
	clock clock.Clock
}

// NewConsole creates a presenter writing through f. A nil clock uses the
// wall clock.
func NewConsole(f *Formatter, c clock.Clock) *Console {
	if c == nil {
		c = clock.Real()
	}
	return &Console{f: f, cli: NewCLIFormatter(f), clock: c}
}

// Alert renders a delivered notification.
func (c *Console) Alert(n model.Notification) {
	if c.f.IsJSON() {
		c.event(AlertEvent{Event: "alert", Notification: NewNotificationOutput(n)})
		return
	}
	c.cli.PrintAlert(n)
}

// ShowReminder renders the full reminder behind an alert.
func (c *Console) ShowReminder(r *model.Reminder) {
	if c.f.IsJSON() {
		c.eventValue("reminder", NewReminderOutput(r))
		return
	}
	c.cli.PrintReminder(r, c.clock.Now())
}

// ShowTask renders the full task behind an alert.
func (c *Console) ShowTask(t *model.Task) {
	if c.f.IsJSON() {
		c.eventValue("task", NewTaskOutput(t, c.clock.Now()))
		return
	}
	c.cli.PrintTask(t, c.clock.Now())
}

// Error reports a delivery problem on an "ERROR:" line.
func (c *Console) Error(msg string) {
	if c.f.IsJSON() {
		c.event(AlertEvent{Event: "error", Message: msg})
		return
	}
	c.cli.Error(msg)
}

// Prompt prints the response hint shown after an alert in the shell.
func (c *Console) Prompt() {
	if c.f.IsJSON() {
		return
	}
	c.cli.Muted("[Enter] acknowledge  [s] snooze  [v] view")
}

func (c *Console) event(e AlertEvent) {
	c.line(e)
}

func (c *Console) eventValue(kind string, v any) {
	c.line(map[string]any{"event": kind, kind: v})
}

func (c *Console) line(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error("failed to encode event", logging.KeyError, err)
		return
	}
	c.f.Println(string(data))
}
