package model

import (
	"fmt"
	"strings"
	"time"
)

// Kind discriminates what a notification was scheduled for.
type Kind int

// Notification kinds.
const (
	KindReminder Kind = iota
	KindTask
)

func (k Kind) String() string {
	switch k {
	case KindReminder:
		return "reminder"
	case KindTask:
		return "task"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Notification is one pending alert. OriginSnapshot holds the subject's
// UpdatedAt at scheduling time and is used to detect stale alerts.
// Snoozed copies do not advance a recurring reminder.
type Notification struct {
	Kind           Kind          `json:"kind"`
	SubjectKey     string        `json:"subject_key"`
	Title          string        `json:"title"`
	Subtitle       string        `json:"subtitle"`
	Body           string        `json:"body"`
	Sound          string        `json:"sound,omitempty"`
	FireTime       time.Time     `json:"fire_time"`
	OriginSnapshot time.Time     `json:"origin_snapshot"`
	Offset         time.Duration `json:"offset,omitempty"`
	Snoozed        bool          `json:"snoozed,omitempty"`
}

// At returns a copy of n that fires at t.
func (n Notification) At(t time.Time) Notification {
	n.FireTime = t
	return n
}

// NewReminderNotification builds the alert for reminder r ringing offset
// before its event time.
func NewReminderNotification(r *Reminder, offset time.Duration) Notification {
	return Notification{
		Kind:           KindReminder,
		SubjectKey:     r.Key,
		Title:          "Reminder",
		Subtitle:       r.Title,
		Body:           r.Description,
		Sound:          r.Sound,
		FireTime:       r.EventTime.Add(-offset),
		OriginSnapshot: r.UpdatedAt,
		Offset:         offset,
	}
}

// NewTaskNotification builds the alert for task t's deadline.
func NewTaskNotification(t *Task) Notification {
	return Notification{
		Kind:           KindTask,
		SubjectKey:     t.Key,
		Title:          "Task",
		Subtitle:       t.Description,
		Body:           "Deadline: " + t.Deadline.Format("Mon Jan 2 15:04"),
		Sound:          t.Sound,
		FireTime:       t.Deadline,
		OriginSnapshot: t.UpdatedAt,
	}
}

// Response is the user's answer to a delivered alert.
type Response int

// Responses.
const (
	ResponseAcknowledge Response = iota
	ResponseSnooze
	ResponseView
)

func (r Response) String() string {
	switch r {
	case ResponseSnooze:
		return "snooze"
	case ResponseView:
		return "view"
	default:
		return "acknowledge"
	}
}

// ParseResponse accepts the full response name or its first letter.
// Anything unrecognised is an acknowledgement.
func ParseResponse(s string) Response {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "snooze":
		return ResponseSnooze
	case "v", "view":
		return ResponseView
	default:
		return ResponseAcknowledge
	}
}
