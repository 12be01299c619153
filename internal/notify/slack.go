package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/validate"
)

// Slack rejects header blocks longer than this.
const slackMaxHeader = 150

// SlackFormatter formats alerts for Slack incoming webhooks.
type SlackFormatter struct{}

type slackPayload struct {
	Text        string        `json:"text,omitempty"`
	Blocks      []slackBlock  `json:"blocks,omitempty"`
	Attachments []slackAttach `json:"attachments,omitempty"`
}

type slackBlock struct {
	Type     string           `json:"type"`
	Text     *slackBlockText  `json:"text,omitempty"`
	Fields   []slackBlockText `json:"fields,omitempty"`
	Elements []slackBlockText `json:"elements,omitempty"`
}

type slackBlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// slackAttach carries the side colour.
type slackAttach struct {
	Color    string `json:"color,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// Format converts an alert to Slack block kit.
func (f *SlackFormatter) Format(n model.Notification) ([]byte, error) {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackBlockText{Type: "plain_text", Text: validate.Truncate(heading(n), slackMaxHeader)},
		},
	}
	if n.Body != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackBlockText{Type: "mrkdwn", Text: slackEscape(n.Body)},
		})
	}

	var fields []slackBlockText
	for _, fl := range alertFields(n) {
		fields = append(fields, slackBlockText{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*%s*\n%s", fl.Name, slackEscape(fl.Value)),
		})
	}
	if len(fields) > 0 {
		blocks = append(blocks, slackBlock{Type: "section", Fields: fields})
	}

	blocks = append(blocks, slackBlock{
		Type:     "context",
		Elements: []slackBlockText{{Type: "mrkdwn", Text: "nudge"}},
	})

	payload := slackPayload{
		Text:   slackEscape(heading(n)),
		Blocks: blocks,
		Attachments: []slackAttach{
			{Color: colorToHex(colorFor(n.Kind)), Fallback: heading(n)},
		},
	}
	return json.Marshal(payload)
}

// ContentType returns the content type for Slack webhooks.
func (f *SlackFormatter) ContentType() string {
	return "application/json"
}

// colorToHex converts an integer color to a hex string.
func colorToHex(color int) string {
	return fmt.Sprintf("#%06X", color)
}

// slackEscape escapes the characters Slack mrkdwn treats as markup.
func slackEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
