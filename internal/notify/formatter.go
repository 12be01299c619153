// Package notify forwards delivered alerts to webhooks.
package notify

import (
	"github.com/nudge-cli/nudge/internal/config"
	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/parser"
)

// Formatter formats alerts for a specific webhook type.
type Formatter interface {
	// Format converts an alert into the webhook-specific payload.
	Format(n model.Notification) ([]byte, error)

	// ContentType returns the HTTP Content-Type for the payload.
	ContentType() string
}

// GetFormatter returns the formatter for a webhook.
func GetFormatter(w config.WebhookConfig) Formatter {
	switch w.Type {
	case config.WebhookDiscord:
		return &DiscordFormatter{}
	case config.WebhookSlack:
		return &SlackFormatter{}
	case config.WebhookTeams:
		return &TeamsFormatter{}
	default:
		return NewGenericFormatter(w.Template)
	}
}

// Embed colours.
const (
	colorReminder = 0x3498DB
	colorTask     = 0xE67E22
)

func colorFor(k model.Kind) int {
	if k == model.KindTask {
		return colorTask
	}
	return colorReminder
}

type field struct {
	Name  string
	Value string
}

// alertFields lists the details shown under an alert, in display order.
func alertFields(n model.Notification) []field {
	var fields []field
	switch n.Kind {
	case model.KindTask:
		fields = append(fields, field{"Deadline", n.FireTime.Local().Format("Mon Jan 2 15:04")})
	default:
		fields = append(fields, field{"Rings at", n.FireTime.Local().Format("Mon Jan 2 15:04")})
		if n.Offset > 0 {
			fields = append(fields, field{"Before event", parser.FormatDuration(n.Offset)})
		}
	}
	if n.Snoozed {
		fields = append(fields, field{"Snoozed", "yes"})
	}
	return fields
}

// heading is the one-line summary of an alert.
func heading(n model.Notification) string {
	if n.Subtitle == "" {
		return n.Title
	}
	return n.Title + ": " + n.Subtitle
}
