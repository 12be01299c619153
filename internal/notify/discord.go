package notify

import (
	"encoding/json"
	"time"

	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/validate"
)

// Discord rejects embed descriptions longer than this.
const discordMaxDescription = 4096

// DiscordFormatter formats alerts for Discord webhooks.
type DiscordFormatter struct{}

type discordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      *discordEmbedFooter `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

// Format converts an alert to a Discord embed.
func (f *DiscordFormatter) Format(n model.Notification) ([]byte, error) {
	embed := discordEmbed{
		Title:       heading(n),
		Description: validate.Truncate(n.Body, discordMaxDescription),
		Color:       colorFor(n.Kind),
		Timestamp:   n.FireTime.UTC().Format(time.RFC3339),
		Footer:      &discordEmbedFooter{Text: "nudge"},
	}
	for _, fl := range alertFields(n) {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   fl.Name,
			Value:  fl.Value,
			Inline: true,
		})
	}

	return json.Marshal(discordPayload{Embeds: []discordEmbed{embed}})
}

// ContentType returns the content type for Discord webhooks.
func (f *DiscordFormatter) ContentType() string {
	return "application/json"
}
