package model

import (
	"slices"
	"time"
)

// Preferences holds the user's defaults for new records and alerts.
// Stored as a singleton under KeyPreferences.
type Preferences struct {
	Key                 string          `json:"key"`
	SnoozeFor           time.Duration   `json:"snooze_for"`   // Default: 10m
	RingOffsets         []time.Duration `json:"ring_offsets"` // Default: [30m]
	EventOffset         time.Duration   `json:"event_offset"` // Default: 1h
	ReminderTitle       string          `json:"reminder_title"`
	ReminderDescription string          `json:"reminder_description"`
	ReminderSound       string          `json:"reminder_sound,omitempty"`
	TaskSound           string          `json:"task_sound,omitempty"`
	Repeat              Repeat          `json:"repeat"`
}

// SetKey sets the database key for the preferences.
func (p *Preferences) SetKey(key string) {
	p.Key = key
}

// GetKey returns the database key for the preferences.
func (p *Preferences) GetKey() string {
	return p.Key
}

// DefaultPreferences returns the built-in defaults.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Key:                 KeyPreferences,
		SnoozeFor:           10 * time.Minute,
		RingOffsets:         []time.Duration{30 * time.Minute},
		EventOffset:         time.Hour,
		ReminderTitle:       "Reminder",
		ReminderDescription: "Your description goes here...",
		Repeat:              Repeat{Kind: RepeatNever},
	}
}

// PresetOffsets are the ring offsets offered when editing preferences.
func PresetOffsets() []time.Duration {
	return []time.Duration{
		time.Hour,
		30 * time.Minute,
		15 * time.Minute,
		10 * time.Minute,
		5 * time.Minute,
	}
}

// Clone creates a deep copy of the preferences.
func (p *Preferences) Clone() *Preferences {
	clone := *p
	clone.RingOffsets = slices.Clone(p.RingOffsets)
	clone.Repeat.Weekdays = slices.Clone(p.Repeat.Weekdays)
	return &clone
}

// Validate checks if the preference values are valid.
func (p *Preferences) Validate() error {
	// SnoozeFor: 1m to 24h
	if p.SnoozeFor < time.Minute || p.SnoozeFor > 24*time.Hour {
		return &ValidationError{Field: "snooze_for", Message: "must be between 1m and 24h"}
	}

	for _, off := range p.RingOffsets {
		if off < time.Minute {
			return &ValidationError{Field: "ring_offsets", Message: "each offset must be at least 1m"}
		}
	}

	if p.EventOffset < time.Minute {
		return &ValidationError{Field: "event_offset", Message: "must be at least 1m"}
	}

	if p.ReminderTitle == "" {
		return &ValidationError{Field: "reminder_title", Message: "must not be empty"}
	}

	return p.Repeat.Validate()
}
