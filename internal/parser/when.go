package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/nudge-cli/nudge/internal/errors"
)

// ParseWhen parses an event time or deadline relative to now.
// Supports formats like:
//   - "+45m", "+1h30m", "+2d" (relative)
//   - "in 5 minutes", "friday 5pm", "tomorrow at 3pm" (natural language)
//   - "2025-03-01 14:00" (ISO format)
//
// A time of day that already passed today is moved to tomorrow. Any other
// time that is not after now is rejected.
func ParseWhen(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, newWhenError(input, "time is required")
	}

	if rest, ok := strings.CutPrefix(input, "+"); ok {
		d, err := ParseDuration(rest)
		if err != nil {
			return time.Time{}, newWhenError(input, "could not parse relative time")
		}
		return now.Add(d), nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return time.Time{}, newWhenError(input, "could not parse time")
	}

	t := result.Time
	if !t.After(now) {
		if !isSameDay(t, now) {
			e := newWhenError(input, "time must be in the future")
			e.Cause = errors.ErrEventInPast
			return time.Time{}, e
		}
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// ParseWhenArgs joins args and parses them as one time expression.
func ParseWhenArgs(args []string, now time.Time) (time.Time, error) {
	return ParseWhen(strings.Join(args, " "), now)
}

func isSameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.In(t1.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// FormatWhen formats t for display relative to now, e.g. "Today at 3:04 PM".
func FormatWhen(t, now time.Time) string {
	var datePart string
	switch {
	case isSameDay(t, now):
		datePart = "Today"
	case isSameDay(t, now.AddDate(0, 0, 1)):
		datePart = "Tomorrow"
	case t.After(now) && t.Sub(now) < 7*24*time.Hour:
		datePart = t.Format("Monday")
	default:
		datePart = t.Format("Mon, Jan 2 2006")
	}
	return fmt.Sprintf("%s at %s", datePart, t.Format("3:04 PM"))
}

// FormatUntil describes how far t is from now, e.g. "in 2 hours 5 minutes".
func FormatUntil(t, now time.Time) string {
	diff := t.Sub(now)
	if diff < 0 {
		return "overdue"
	}

	switch {
	case diff < time.Minute:
		return "less than a minute"
	case diff < time.Hour:
		return "in " + plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		mins := int(diff.Minutes()) % 60
		if mins > 0 {
			return fmt.Sprintf("in %s %s", plural(hours, "hour"), plural(mins, "minute"))
		}
		return "in " + plural(hours, "hour")
	case diff < 7*24*time.Hour:
		return "in " + plural(int(diff.Hours()/24), "day")
	default:
		return "in " + plural(int(diff.Hours()/(24*7)), "week")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
