package notify

import (
	"bytes"
	"encoding/json"
	"text/template"
	"time"

	"github.com/nudge-cli/nudge/internal/model"
)

// GenericFormatter formats alerts for any JSON endpoint.
type GenericFormatter struct {
	// Template is an optional text/template for the payload. It is
	// executed with the alert's fields, e.g. {{.Subtitle}}.
	Template string
}

// NewGenericFormatter creates a generic formatter with an optional template.
func NewGenericFormatter(template string) *GenericFormatter {
	return &GenericFormatter{Template: template}
}

type genericPayload struct {
	Kind     string            `json:"kind"`
	Title    string            `json:"title"`
	Subtitle string            `json:"subtitle"`
	Body     string            `json:"body,omitempty"`
	FireTime string            `json:"fire_time"`
	Snoozed  bool              `json:"snoozed,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// templateData is what a custom template sees.
type templateData struct {
	Kind     string
	Title    string
	Subtitle string
	Body     string
	FireTime time.Time
	Snoozed  bool
	Fields   map[string]string
}

// Format converts an alert to JSON, or renders the custom template.
func (f *GenericFormatter) Format(n model.Notification) ([]byte, error) {
	fields := make(map[string]string)
	for _, fl := range alertFields(n) {
		fields[fl.Name] = fl.Value
	}

	if f.Template != "" {
		return f.formatWithTemplate(templateData{
			Kind:     n.Kind.String(),
			Title:    n.Title,
			Subtitle: n.Subtitle,
			Body:     n.Body,
			FireTime: n.FireTime,
			Snoozed:  n.Snoozed,
			Fields:   fields,
		})
	}

	return json.Marshal(genericPayload{
		Kind:     n.Kind.String(),
		Title:    n.Title,
		Subtitle: n.Subtitle,
		Body:     n.Body,
		FireTime: n.FireTime.UTC().Format(time.RFC3339),
		Snoozed:  n.Snoozed,
		Fields:   fields,
	})
}

func (f *GenericFormatter) formatWithTemplate(data templateData) ([]byte, error) {
	tmpl, err := template.New("webhook").Parse(f.Template)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentType returns the content type for generic webhooks.
func (f *GenericFormatter) ContentType() string {
	return "application/json"
}
