package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/parser"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#10B981") // Green
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorWarning   = lipgloss.Color("#F59E0B") // Yellow
	colorError     = lipgloss.Color("#EF4444") // Red

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSecondary)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleID = lipgloss.NewStyle().
		Foreground(colorPrimary)

	styleAlert = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWarning).
			Padding(0, 1)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an "ERROR:" line to the error stream.
func (c *CLIFormatter) Error(text string) {
	c.Errorln(c.render(styleError, "ERROR:") + " " + text)
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// ID formats a short record id.
func (c *CLIFormatter) ID(id string) string {
	return c.render(styleID, id)
}

// AlertBox renders a delivered notification.
func (c *CLIFormatter) AlertBox(n model.Notification) string {
	var sb strings.Builder
	sb.WriteString(c.render(styleBold, n.Title))
	if n.Subtitle != "" {
		sb.WriteString("\n")
		sb.WriteString(n.Subtitle)
	}
	if n.Body != "" {
		sb.WriteString("\n")
		sb.WriteString(c.render(styleMuted, n.Body))
	}
	sb.WriteString("\n")
	sb.WriteString(c.render(styleMuted, FormatTimeShort(n.FireTime)))
	if n.Snoozed {
		sb.WriteString(c.render(styleMuted, " (snoozed)"))
	}

	if c.IsColorEnabled() {
		return styleAlert.Render(sb.String())
	}
	return sb.String()
}

// PrintAlert prints a delivered notification as one block.
func (c *CLIFormatter) PrintAlert(n model.Notification) {
	c.Print("\n" + c.AlertBox(n) + "\n")
}

// PrintReminder prints a reminder's details.
func (c *CLIFormatter) PrintReminder(r *model.Reminder, now time.Time) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n", c.ID(r.ShortID()), c.render(styleBold, r.Title))
	if r.Description != "" {
		fmt.Fprintf(&sb, "  Description: %s\n", r.Description)
	}
	fmt.Fprintf(&sb, "  Event: %s (%s)\n", parser.FormatWhen(r.EventTime, now), parser.FormatUntil(r.EventTime, now))
	fmt.Fprintf(&sb, "  Rings before: %s\n", parser.FormatOffsets(r.RingOffsets))
	fmt.Fprintf(&sb, "  Repeat: %s\n", r.Repeat)
	fmt.Fprintf(&sb, "  Sound: %s\n", soundName(r.Sound))
	fmt.Fprintf(&sb, "  Added: %s\n", FormatTime(r.CreatedAt))
	c.Print(sb.String())
}

// PrintTask prints a task's details.
func (c *CLIFormatter) PrintTask(t *model.Task, now time.Time) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n", c.ID(t.ShortID()), c.render(styleBold, t.Description))
	status := parser.FormatUntil(t.Deadline, now)
	if t.IsOverdue(now) {
		status = c.render(styleWarning, status)
	}
	fmt.Fprintf(&sb, "  Deadline: %s (%s)\n", parser.FormatWhen(t.Deadline, now), status)
	fmt.Fprintf(&sb, "  Sound: %s\n", soundName(t.Sound))
	fmt.Fprintf(&sb, "  Added: %s\n", FormatTime(t.CreatedAt))
	c.Print(sb.String())
}

// PrintNote prints a note.
func (c *CLIFormatter) PrintNote(n *model.Note) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n", c.ID(n.ShortID()), c.render(styleBold, n.Title))
	if n.Description != "" {
		fmt.Fprintf(&sb, "  %s\n", n.Description)
	}
	fmt.Fprintf(&sb, "  Added: %s\n", FormatTime(n.CreatedAt))
	c.Print(sb.String())
}

// PrintReminders prints reminders as a table.
func (c *CLIFormatter) PrintReminders(reminders []*model.Reminder, now time.Time) {
	if len(reminders) == 0 {
		c.Muted("No reminders.")
		c.Muted("Use 'nudge remind add <title> --at <time>' to add one.")
		return
	}
	rows := make([]TableRow, len(reminders))
	for i, r := range reminders {
		rows[i] = TableRow{Columns: []string{
			r.ShortID(), r.Title, parser.FormatWhen(r.EventTime, now), r.Repeat.String(), parser.FormatOffsets(r.RingOffsets),
		}}
	}
	c.PrintTable([]string{"ID", "TITLE", "EVENT", "REPEAT", "RINGS"}, rows)
}

// PrintTasks prints tasks as a table.
func (c *CLIFormatter) PrintTasks(tasks []*model.Task, now time.Time) {
	if len(tasks) == 0 {
		c.Muted("No tasks.")
		c.Muted("Use 'nudge task add <description> --due <time>' to add one.")
		return
	}
	rows := make([]TableRow, len(tasks))
	for i, t := range tasks {
		rows[i] = TableRow{Columns: []string{
			t.ShortID(), t.Description, parser.FormatWhen(t.Deadline, now), parser.FormatUntil(t.Deadline, now),
		}}
	}
	c.PrintTable([]string{"ID", "DESCRIPTION", "DEADLINE", "DUE"}, rows)
}

// PrintNotes prints notes as a table.
func (c *CLIFormatter) PrintNotes(notes []*model.Note) {
	if len(notes) == 0 {
		c.Muted("No notes.")
		return
	}
	rows := make([]TableRow, len(notes))
	for i, n := range notes {
		rows[i] = TableRow{Columns: []string{n.ShortID(), n.Title, FormatTimeShort(n.CreatedAt)}}
	}
	c.PrintTable([]string{"ID", "TITLE", "ADDED"}, rows)
}

// PrintAgenda prints pending notifications in fire-time order.
func (c *CLIFormatter) PrintAgenda(pending []model.Notification, now time.Time) {
	if len(pending) == 0 {
		c.Muted("Nothing scheduled.")
		return
	}
	rows := make([]TableRow, len(pending))
	for i, n := range pending {
		what := n.Subtitle
		if n.Offset > 0 {
			what += " (" + parser.FormatDuration(n.Offset) + " before)"
		}
		rows[i] = TableRow{Columns: []string{
			FormatTimeShort(n.FireTime), n.Kind.String(), what, parser.FormatUntil(n.FireTime, now),
		}}
	}
	c.PrintTable([]string{"FIRES", "KIND", "WHAT", "IN"}, rows)
}

// PrintPreferences prints the current preferences.
func (c *CLIFormatter) PrintPreferences(p *model.Preferences) {
	rows := []TableRow{
		{Columns: []string{"snooze", parser.FormatDuration(p.SnoozeFor)}},
		{Columns: []string{"ring-offsets", parser.FormatOffsets(p.RingOffsets)}},
		{Columns: []string{"event-offset", parser.FormatDuration(p.EventOffset)}},
		{Columns: []string{"reminder-title", p.ReminderTitle}},
		{Columns: []string{"reminder-description", p.ReminderDescription}},
		{Columns: []string{"reminder-sound", soundName(p.ReminderSound)}},
		{Columns: []string{"task-sound", soundName(p.TaskSound)}},
		{Columns: []string{"repeat", p.Repeat.String()}},
	}
	c.PrintTable([]string{"PREFERENCE", "VALUE"}, rows)
}

func soundName(s string) string {
	if s == "" {
		return "bell"
	}
	return s
}

// TableRow is one row of PrintTable output.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple aligned table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	pad := func(s string, w int) string {
		return s + strings.Repeat(" ", w-lipgloss.Width(s)+2)
	}

	var sb strings.Builder
	var header strings.Builder
	for i, h := range headers {
		header.WriteString(pad(h, widths[i]))
	}
	sb.WriteString(c.render(styleBold, strings.TrimRight(header.String(), " ")))
	sb.WriteString("\n")

	for i, w := range widths {
		sb.WriteString(strings.Repeat("─", w))
		if i < len(widths)-1 {
			sb.WriteString("  ")
		}
	}
	sb.WriteString("\n")

	for _, row := range rows {
		var line strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				line.WriteString(pad(col, widths[i]))
			}
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteString("\n")
	}
	c.Print(sb.String())
}
