package parser

import (
	"fmt"
	"strings"

	"github.com/nudge-cli/nudge/internal/errors"
)

// ParseError describes input that could not be parsed, with examples of
// what would have worked.
type ParseError struct {
	Input      string
	Field      string
	Message    string
	Examples   []string
	Suggestion string
	Cause      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// FormatWithExamples returns the error message followed by example inputs.
func (e *ParseError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// ToUserError converts e into a UserError carrying its suggestion.
func (e *ParseError) ToUserError() *errors.UserError {
	ue := errors.NewUserErrorWithField(e.Field, e.Input, e.Message, e.Cause)
	ue.Suggestion = e.Suggestion
	if ue.Suggestion == "" && len(e.Examples) > 0 {
		ue.Suggestion = "Try: " + strings.Join(e.Examples[:min(3, len(e.Examples))], ", ")
	}
	return ue
}

// DurationExamples lists accepted duration formats.
var DurationExamples = []string{
	"30m",
	"1h30m",
	"90 minutes",
	"2 hours",
	"1.5h",
	"15",
}

// WhenExamples lists accepted event time formats.
var WhenExamples = []string{
	"+45m",
	"+1h30m",
	"in 5 minutes",
	"tomorrow at 3pm",
	"friday 5pm",
	"2025-03-01 14:00",
}

// RepeatExamples lists accepted repeat patterns.
var RepeatExamples = []string{
	"never",
	"daily",
	"weekly",
	"mon,wed,fri",
}

func newDurationError(input, message string) *ParseError {
	return &ParseError{
		Input:      input,
		Field:      "duration",
		Message:    message,
		Examples:   DurationExamples,
		Suggestion: "Durations take units of weeks (w), days (d), hours (h), minutes (m) or seconds (s); a bare number is minutes.",
		Cause:      errors.ErrInvalidDuration,
	}
}

func newWhenError(input, message string) *ParseError {
	return &ParseError{
		Input:      input,
		Field:      "time",
		Message:    message,
		Examples:   WhenExamples,
		Suggestion: "Times can be relative (+45m, in 2 hours) or absolute (friday 5pm).",
		Cause:      errors.ErrInvalidTime,
	}
}
