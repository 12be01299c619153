package model

import (
	"strings"
	"time"
)

// Task is a piece of work with a deadline. It rings once, at the deadline.
type Task struct {
	Key         string    `json:"key"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	Sound       string    `json:"sound,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SetKey sets the database key for this task.
func (t *Task) SetKey(key string) {
	t.Key = key
}

// GetKey returns the database key for this task.
func (t *Task) GetKey() string {
	return t.Key
}

// ShortID returns the abbreviated id used in listings.
func (t *Task) ShortID() string {
	return ShortID(t.Key)
}

// IsOverdue returns true if the deadline is not after now.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Deadline.After(now)
}

// Validate checks the task's fields.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "description", Message: "is required"}
	}
	if t.Deadline.IsZero() {
		return &ValidationError{Field: "deadline", Message: "is required"}
	}
	if !t.CreatedAt.IsZero() && t.Deadline.Before(t.CreatedAt) {
		return &ValidationError{Field: "deadline", Message: "must not be before the time the task was added"}
	}
	return nil
}

// ToReminder builds a reminder for the task's deadline. The returned
// reminder has no key; the caller stores it.
func (t *Task) ToReminder(prefs *Preferences) *Reminder {
	r := NewReminder("", t.Description, t.Deadline, prefs)
	if t.Sound != "" {
		r.Sound = t.Sound
	}
	return r
}

// NewTask creates a task, using the preferred task sound when sound is empty.
func NewTask(description string, deadline time.Time, sound string, prefs *Preferences) *Task {
	if sound == "" && prefs != nil {
		sound = prefs.TaskSound
	}
	return &Task{
		Description: description,
		Deadline:    deadline,
		Sound:       sound,
	}
}
