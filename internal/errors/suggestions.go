package errors

import (
	"errors"
	"strings"
)

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	ErrReminderNotFound: "Use 'nudge remind list' to see reminders and their ids.",
	ErrTaskNotFound:     "Use 'nudge task list' to see tasks and their ids.",
	ErrNoteNotFound:     "Use 'nudge note list' to see notes and their ids.",
	ErrInvalidDuration:  "Try formats like '30m', '1h30m', '90 minutes' or '2 hours'.",
	ErrInvalidTime:      "Try formats like 'tomorrow 9am', 'in 2 hours', '+45m' or '2025-03-01 14:00'.",
	ErrInvalidRepeat:    "Use never, minute, daily, weekly, monthly, yearly or weekdays like 'mon,wed,fri'.",
	ErrEventInPast:      "Pick a time later than now.",
	ErrDatabaseLocked:   "Stop the background runner with 'nudge stop', or use 'nudge shell' while it is stopped.",
	ErrDaemonRunning:    "Use 'nudge status' to see the running process.",
	ErrDaemonNotRunning: "Start it with 'nudge run'.",
}

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	return ""
}

// FormatUserError formats an error for display: the message on an
// "ERROR:" line, followed by an indented hint when one is known.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("ERROR: ")
	sb.WriteString(err.Error())

	if suggestion := GetSuggestion(err); suggestion != "" {
		sb.WriteString("\n\t")
		sb.WriteString(suggestion)
	}

	return sb.String()
}
