package model

import (
	"slices"
	"strings"
	"time"
)

// Reminder is a titled event that rings at its event time and at each
// ring offset before it.
type Reminder struct {
	Key         string          `json:"key"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	EventTime   time.Time       `json:"event_time"`
	Sound       string          `json:"sound,omitempty"`
	Repeat      Repeat          `json:"repeat"`
	RingOffsets []time.Duration `json:"ring_offsets"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SetKey sets the database key for this reminder.
func (r *Reminder) SetKey(key string) {
	r.Key = key
}

// GetKey returns the database key for this reminder.
func (r *Reminder) GetKey() string {
	return r.Key
}

// ShortID returns the abbreviated id used in listings.
func (r *Reminder) ShortID() string {
	return ShortID(r.Key)
}

// IsRecurring returns true if the reminder repeats.
func (r *Reminder) IsRecurring() bool {
	return r.Repeat.IsRepeating()
}

// RingTimes returns the fire time of every ring offset followed by the
// event time itself, earliest first.
func (r *Reminder) RingTimes() []time.Time {
	times := make([]time.Time, 0, len(r.RingOffsets)+1)
	for _, off := range r.RingOffsets {
		times = append(times, r.EventTime.Add(-off))
	}
	times = append(times, r.EventTime)
	slices.SortFunc(times, func(a, b time.Time) int { return a.Compare(b) })
	return times
}

// Validate checks the reminder's fields.
func (r *Reminder) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if len(r.Title) > 200 {
		return &ValidationError{Field: "title", Message: "must be at most 200 characters"}
	}
	if r.EventTime.IsZero() {
		return &ValidationError{Field: "event_time", Message: "is required"}
	}
	if !r.CreatedAt.IsZero() && r.EventTime.Before(r.CreatedAt) {
		return &ValidationError{Field: "event_time", Message: "must not be before the time the reminder was added"}
	}
	for _, off := range r.RingOffsets {
		if off <= 0 {
			return &ValidationError{Field: "ring_offsets", Message: "offsets must be positive"}
		}
	}
	return r.Repeat.Validate()
}

// NewReminder creates a reminder using prefs for every field the caller
// leaves empty.
func NewReminder(title, description string, eventTime time.Time, prefs *Preferences) *Reminder {
	if prefs == nil {
		prefs = DefaultPreferences()
	}
	if title == "" {
		title = prefs.ReminderTitle
	}
	if description == "" {
		description = prefs.ReminderDescription
	}
	return &Reminder{
		Title:       title,
		Description: description,
		EventTime:   eventTime,
		Sound:       prefs.ReminderSound,
		Repeat:      prefs.Repeat,
		RingOffsets: slices.Clone(prefs.RingOffsets),
	}
}
