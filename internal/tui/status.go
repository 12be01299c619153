package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/parser"
)

// NextComponent shows the next alert and a live countdown to it.
type NextComponent struct {
	Next  *model.Notification
	Now   time.Time
	Width int
}

// NewNextComponent creates a component for the earliest of pending,
// which must be sorted by fire time.
func NewNextComponent(pending []model.Notification, now time.Time, width int) *NextComponent {
	nc := &NextComponent{Now: now, Width: width}
	if len(pending) > 0 {
		next := pending[0]
		nc.Next = &next
	}
	return nc
}

// View renders the next alert.
func (nc *NextComponent) View() string {
	var content strings.Builder

	if nc.Next == nil {
		content.WriteString(StyleMuted.Render("Nothing scheduled"))
		content.WriteString("\n\n")
		content.WriteString(StyleSubtitle.Render("Add one with 'nudge remind add' or 'nudge task add'"))
		return StyleBox.Width(nc.Width - 4).Render(content.String())
	}

	n := nc.Next
	content.WriteString(KindLabel(n.Kind))
	if n.Snoozed {
		content.WriteString(StyleWarning.Render("  snoozed"))
	}
	content.WriteString("\n\n")
	content.WriteString(n.Subtitle)
	content.WriteString("\n\n")
	content.WriteString(StyleCountdown.Render(Countdown(n.FireTime.Sub(nc.Now))))
	content.WriteString("\n")
	content.WriteString(StyleSubtitle.Render(parser.FormatWhen(n.FireTime, nc.Now)))

	return StyleBox.Width(nc.Width - 4).Render(content.String())
}

// AgendaComponent lists the alerts after the next one.
type AgendaComponent struct {
	Pending []model.Notification
	Now     time.Time
	Width   int
	Limit   int
}

// NewAgendaComponent creates the upcoming list. The first entry of
// pending is shown by NextComponent and is skipped here.
func NewAgendaComponent(pending []model.Notification, now time.Time, width, limit int) *AgendaComponent {
	if len(pending) > 0 {
		pending = pending[1:]
	}
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return &AgendaComponent{Pending: pending, Now: now, Width: width, Limit: limit}
}

// View renders the upcoming list.
func (ac *AgendaComponent) View() string {
	var content strings.Builder

	content.WriteString(StyleTitle.Render("Upcoming"))
	content.WriteString("\n")

	if len(ac.Pending) == 0 {
		content.WriteString(StyleMuted.Render("Nothing else pending"))
	}
	for i, n := range ac.Pending {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(fmt.Sprintf("%s  %s  %s",
			StyleSubtitle.Render(n.FireTime.Format("Mon 15:04")),
			KindLabel(n.Kind),
			n.Subtitle))
		content.WriteString(StyleSubtitle.Render("  " + parser.FormatUntil(n.FireTime, ac.Now)))
	}

	return StyleBox.Width(ac.Width - 4).Render(content.String())
}

// AlertsComponent lists alerts delivered during this session, newest first.
type AlertsComponent struct {
	Recent []model.Notification
	Width  int
}

// NewAlertsComponent creates the recent alerts list.
func NewAlertsComponent(recent []model.Notification, width int) *AlertsComponent {
	return &AlertsComponent{Recent: recent, Width: width}
}

// View renders the recent alerts.
func (rc *AlertsComponent) View() string {
	var content strings.Builder

	content.WriteString(StyleTitle.Render("Rang"))
	content.WriteString("\n")

	if len(rc.Recent) == 0 {
		content.WriteString(StyleMuted.Render("No alerts yet"))
	}
	for i, n := range rc.Recent {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(fmt.Sprintf("%s  %s  %s",
			StyleSubtitle.Render(n.FireTime.Format("15:04")),
			KindLabel(n.Kind),
			n.Subtitle))
	}

	return StyleBox.Width(rc.Width - 4).Render(content.String())
}

// PromptComponent frames an alert that is waiting for an answer.
type PromptComponent struct {
	Alert model.Notification
	Left  time.Duration
	Width int
}

// View renders the alert with its body and the time left to answer.
func (pc *PromptComponent) View() string {
	var content strings.Builder

	n := pc.Alert
	content.WriteString(KindLabel(n.Kind))
	content.WriteString("  ")
	content.WriteString(n.Subtitle)
	if n.Body != "" {
		content.WriteString("\n\n")
		content.WriteString(StyleBody.Render(n.Body))
	}
	content.WriteString("\n\n")
	content.WriteString(StyleSubtitle.Render(fmt.Sprintf("Acknowledged automatically in %s", Countdown(pc.Left))))

	return StyleAlertBox.Width(pc.Width - 4).Render(content.String())
}

// HelpBar renders the key bar. While an alert waits for an answer the
// response keys are shown instead of the navigation keys.
func HelpBar(prompting bool) string {
	type binding struct {
		key  string
		desc string
	}
	keys := []binding{
		{"r", "refresh"},
		{"esc", "close"},
		{"q", "quit"},
	}
	if prompting {
		keys = []binding{
			{"enter", "acknowledge"},
			{"s", "snooze"},
			{"v", "view"},
			{"q", "quit"},
		}
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, StyleHelpKey.Render(k.key)+" "+StyleHelpDesc.Render(k.desc))
	}
	return StyleHelp.Render(strings.Join(parts, "  •  "))
}
