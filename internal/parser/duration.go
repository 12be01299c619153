// Package parser turns user input into durations, times and repeat
// patterns for nudge.
package parser

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nudge-cli/nudge/internal/errors"
	"github.com/nudge-cli/nudge/internal/model"
)

var (
	// durationPattern matches one or more "<number><unit>" terms, e.g.
	// "1h30m", "2 hours", "1.5h".
	durationPattern = regexp.MustCompile(`(?i)^(?:\s*\d+(?:\.\d+)?\s*[a-z]*\s*)+$`)
	durationTerm    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([a-z]*)`)
)

// ParseDuration parses a human-readable duration. Besides Go duration
// syntax it accepts spelled-out units ("90 minutes", "2 hours"), day and
// week units ("2d", "1w"), and a bare number, which counts minutes.
func ParseDuration(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, newDurationError(input, "duration is required")
	}

	if n, err := strconv.ParseFloat(input, 64); err == nil {
		return positive(input, time.Duration(n*float64(time.Minute)))
	}

	if d, err := time.ParseDuration(input); err == nil {
		return positive(input, d)
	}

	if !durationPattern.MatchString(input) {
		return 0, newDurationError(input, "could not parse duration")
	}

	var total time.Duration
	for _, m := range durationTerm.FindAllStringSubmatch(input, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, newDurationError(input, "could not parse duration")
		}
		unit, ok := unitDuration(strings.ToLower(m[2]))
		if !ok {
			return 0, newDurationError(input, "unknown unit '"+m[2]+"'")
		}
		total += time.Duration(value * float64(unit))
	}
	return positive(input, total)
}

func positive(input string, d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, newDurationError(input, "duration must be positive")
	}
	return d, nil
}

func unitDuration(unit string) (time.Duration, bool) {
	switch unit {
	case "w", "wk", "wks", "week", "weeks":
		return 7 * 24 * time.Hour, true
	case "d", "day", "days":
		return 24 * time.Hour, true
	case "h", "hr", "hrs", "hour", "hours":
		return time.Hour, true
	case "m", "min", "mins", "minute", "minutes":
		return time.Minute, true
	case "s", "sec", "secs", "second", "seconds":
		return time.Second, true
	default:
		return 0, false
	}
}

// ParseOffsets parses a comma-separated list of ring offsets. "none" or
// an empty string yields no offsets. Duplicates are dropped and the
// result is ordered from the earliest ring (largest offset) down.
func ParseOffsets(input string) ([]time.Duration, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "none") {
		return nil, nil
	}

	var out []time.Duration
	for _, part := range strings.Split(input, ",") {
		d, err := ParseDuration(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b time.Duration) int {
		return cmp.Compare(b, a)
	})
	return out, nil
}

// ParseRepeat parses a repeat pattern, reporting failures with examples.
func ParseRepeat(input string) (model.Repeat, error) {
	r, err := model.ParseRepeat(input)
	if err != nil {
		msg := err.Error()
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			msg = ve.Message
		}
		return model.Repeat{}, &ParseError{
			Input:    input,
			Field:    "repeat",
			Message:  msg,
			Examples: RepeatExamples,
			Cause:    errors.ErrInvalidRepeat,
		}
	}
	return r, nil
}

// FormatDuration renders d compactly, e.g. "1h30m" or "45m".
func FormatDuration(d time.Duration) string {
	if d%time.Minute != 0 || d < time.Minute {
		return d.String()
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	switch {
	case h == 0:
		return strconv.Itoa(int(m)) + "m"
	case m == 0:
		return strconv.Itoa(int(h)) + "h"
	default:
		return strconv.Itoa(int(h)) + "h" + strconv.Itoa(int(m)) + "m"
	}
}

// FormatOffsets renders offsets as a comma-separated list.
func FormatOffsets(offsets []time.Duration) string {
	if len(offsets) == 0 {
		return "none"
	}
	parts := make([]string, len(offsets))
	for i, d := range offsets {
		parts[i] = FormatDuration(d)
	}
	return strings.Join(parts, ", ")
}
