// Package tui provides the live terminal dashboard for nudge.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nudge-cli/nudge/internal/model"
)

// Color palette for the dashboard.
var (
	ColorPrimary  = lipgloss.Color("#7C3AED") // Purple
	ColorReminder = lipgloss.Color("#3498DB") // Blue
	ColorTask     = lipgloss.Color("#E67E22") // Orange
	ColorMuted    = lipgloss.Color("#6B7280") // Gray
	ColorWarning  = lipgloss.Color("#F59E0B") // Yellow
	ColorError    = lipgloss.Color("#EF4444") // Red
	ColorSuccess  = lipgloss.Color("#10B981") // Green
	ColorBorder   = lipgloss.Color("#4B5563") // Dark gray
)

// Base styles.
var (
	// StyleTitle is used for section titles.
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// StyleSubtitle is used for secondary information.
	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleMuted is used for muted text.
	StyleMuted = StyleSubtitle

	StyleReminder = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorReminder)

	StyleTask = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorTask)

	// StyleCountdown is used for the time left until the next alert.
	StyleCountdown = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	StyleBody = lipgloss.NewStyle().
			Italic(true).
			Foreground(ColorMuted)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// StyleHelp is used for the key bar at the bottom.
	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)

	StyleHelpKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	StyleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Box styles.
var (
	StyleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2).
			MarginBottom(1)

	// StyleAlertBox frames an alert waiting for an answer.
	StyleAlertBox = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(ColorWarning).
			Padding(1, 2).
			MarginBottom(1)
)

// KindLabel renders a notification kind in its colour.
func KindLabel(k model.Kind) string {
	if k == model.KindTask {
		return StyleTask.Render("Task")
	}
	return StyleReminder.Render("Reminder")
}

// Countdown formats the time left before an alert rings, to the second.
func Countdown(d time.Duration) string {
	if d <= 0 {
		return "now"
	}
	d = d.Round(time.Second)
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %02dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
