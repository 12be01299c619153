package notify

import (
	"encoding/json"
	"fmt"

	"github.com/nudge-cli/nudge/internal/model"
)

// TeamsFormatter formats alerts for Microsoft Teams webhooks.
type TeamsFormatter struct{}

// teamsPayload is a MessageCard.
type teamsPayload struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Summary    string         `json:"summary"`
	Sections   []teamsSection `json:"sections,omitempty"`
}

type teamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	Text             string      `json:"text,omitempty"`
	Facts            []teamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown"`
}

type teamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Format converts an alert to a MessageCard.
func (f *TeamsFormatter) Format(n model.Notification) ([]byte, error) {
	section := teamsSection{
		ActivityTitle:    heading(n),
		ActivitySubtitle: "nudge | " + n.FireTime.Local().Format("Jan 2, 3:04 PM"),
		Text:             n.Body,
		Markdown:         true,
	}
	for _, fl := range alertFields(n) {
		section.Facts = append(section.Facts, teamsFact{Name: fl.Name, Value: fl.Value})
	}

	payload := teamsPayload{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		ThemeColor: fmt.Sprintf("%06X", colorFor(n.Kind)),
		Summary:    heading(n),
		Sections:   []teamsSection{section},
	}
	return json.Marshal(payload)
}

// ContentType returns the content type for Teams webhooks.
func (f *TeamsFormatter) ContentType() string {
	return "application/json"
}
