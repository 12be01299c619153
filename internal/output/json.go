package output

import (
	"time"

	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/parser"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// ReminderOutput represents a reminder in JSON output.
type ReminderOutput struct {
	Key         string   `json:"key"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	EventTime   string   `json:"event_time"`
	RingOffsets []string `json:"ring_offsets"`
	Repeat      string   `json:"repeat"`
	Sound       string   `json:"sound,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// NewReminderOutput creates a ReminderOutput from a Reminder.
func NewReminderOutput(r *model.Reminder) *ReminderOutput {
	offsets := make([]string, len(r.RingOffsets))
	for i, d := range r.RingOffsets {
		offsets[i] = parser.FormatDuration(d)
	}
	return &ReminderOutput{
		Key:         r.Key,
		ID:          r.ShortID(),
		Title:       r.Title,
		Description: r.Description,
		EventTime:   r.EventTime.Format(time.RFC3339),
		RingOffsets: offsets,
		Repeat:      r.Repeat.String(),
		Sound:       r.Sound,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
}

// TaskOutput represents a task in JSON output.
type TaskOutput struct {
	Key         string `json:"key"`
	ID          string `json:"id"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	Overdue     bool   `json:"overdue"`
	Sound       string `json:"sound,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// NewTaskOutput creates a TaskOutput from a Task.
func NewTaskOutput(t *model.Task, now time.Time) *TaskOutput {
	return &TaskOutput{
		Key:         t.Key,
		ID:          t.ShortID(),
		Description: t.Description,
		Deadline:    t.Deadline.Format(time.RFC3339),
		Overdue:     t.IsOverdue(now),
		Sound:       t.Sound,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

// NoteOutput represents a note in JSON output.
type NoteOutput struct {
	Key         string `json:"key"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// NewNoteOutput creates a NoteOutput from a Note.
func NewNoteOutput(n *model.Note) *NoteOutput {
	return &NoteOutput{
		Key:         n.Key,
		ID:          n.ShortID(),
		Title:       n.Title,
		Description: n.Description,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
}

// NotificationOutput represents a scheduled or delivered alert.
type NotificationOutput struct {
	Kind       string `json:"kind"`
	SubjectKey string `json:"subject_key"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle,omitempty"`
	Body       string `json:"body,omitempty"`
	FireTime   string `json:"fire_time"`
	Offset     string `json:"offset,omitempty"`
	Snoozed    bool   `json:"snoozed,omitempty"`
}

// NewNotificationOutput creates a NotificationOutput from a Notification.
func NewNotificationOutput(n model.Notification) *NotificationOutput {
	out := &NotificationOutput{
		Kind:       n.Kind.String(),
		SubjectKey: n.SubjectKey,
		Title:      n.Title,
		Subtitle:   n.Subtitle,
		Body:       n.Body,
		FireTime:   n.FireTime.Format(time.RFC3339),
		Snoozed:    n.Snoozed,
	}
	if n.Offset > 0 {
		out.Offset = parser.FormatDuration(n.Offset)
	}
	return out
}

// PreferencesOutput represents preferences in JSON output.
type PreferencesOutput struct {
	SnoozeFor           string   `json:"snooze"`
	RingOffsets         []string `json:"ring_offsets"`
	EventOffset         string   `json:"event_offset"`
	ReminderTitle       string   `json:"reminder_title"`
	ReminderDescription string   `json:"reminder_description"`
	ReminderSound       string   `json:"reminder_sound,omitempty"`
	TaskSound           string   `json:"task_sound,omitempty"`
	Repeat              string   `json:"repeat"`
}

// NewPreferencesOutput creates a PreferencesOutput from Preferences.
func NewPreferencesOutput(p *model.Preferences) *PreferencesOutput {
	offsets := make([]string, len(p.RingOffsets))
	for i, d := range p.RingOffsets {
		offsets[i] = parser.FormatDuration(d)
	}
	return &PreferencesOutput{
		SnoozeFor:           parser.FormatDuration(p.SnoozeFor),
		RingOffsets:         offsets,
		EventOffset:         parser.FormatDuration(p.EventOffset),
		ReminderTitle:       p.ReminderTitle,
		ReminderDescription: p.ReminderDescription,
		ReminderSound:       p.ReminderSound,
		TaskSound:           p.TaskSound,
		Repeat:              p.Repeat.String(),
	}
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// StatusResponse reports whether the background runner is alive.
type StatusResponse struct {
	Running   bool   `json:"running"`
	PID       int    `json:"pid,omitempty"`
	StartedAt string `json:"started_at,omitempty"`
	Uptime    string `json:"uptime,omitempty"`
	Pending   int    `json:"pending"`
	NextFire  string `json:"next_fire,omitempty"`
	PIDFile   string `json:"pid_file"`
}

// AlertEvent is one line of the JSON alert stream written by a headless
// runner.
type AlertEvent struct {
	Event        string              `json:"event"`
	Notification *NotificationOutput `json:"notification,omitempty"`
	Message      string              `json:"message,omitempty"`
}

// PrintReminders outputs reminders in JSON format.
func (j *JSONFormatter) PrintReminders(reminders []*model.Reminder) error {
	out := make([]*ReminderOutput, len(reminders))
	for i, r := range reminders {
		out[i] = NewReminderOutput(r)
	}
	return j.JSON(map[string]any{"reminders": out, "count": len(out)})
}

// PrintTasks outputs tasks in JSON format.
func (j *JSONFormatter) PrintTasks(tasks []*model.Task, now time.Time) error {
	out := make([]*TaskOutput, len(tasks))
	for i, t := range tasks {
		out[i] = NewTaskOutput(t, now)
	}
	return j.JSON(map[string]any{"tasks": out, "count": len(out)})
}

// PrintNotes outputs notes in JSON format.
func (j *JSONFormatter) PrintNotes(notes []*model.Note) error {
	out := make([]*NoteOutput, len(notes))
	for i, n := range notes {
		out[i] = NewNoteOutput(n)
	}
	return j.JSON(map[string]any{"notes": out, "count": len(out)})
}

// PrintAgenda outputs pending notifications in JSON format.
func (j *JSONFormatter) PrintAgenda(pending []model.Notification) error {
	out := make([]*NotificationOutput, len(pending))
	for i, n := range pending {
		out[i] = NewNotificationOutput(n)
	}
	return j.JSON(map[string]any{"pending": out, "count": len(out)})
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(errMsg, suggestion string) error {
	return j.JSON(ErrorResponse{
		Status:     "error",
		Error:      errMsg,
		Suggestion: suggestion,
	})
}
