package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// RepeatKind names how a reminder recurs.
type RepeatKind string

// Repeat kinds.
const (
	RepeatNever    RepeatKind = "never"
	RepeatMinute   RepeatKind = "minute"
	RepeatDaily    RepeatKind = "daily"
	RepeatWeekly   RepeatKind = "weekly"
	RepeatMonthly  RepeatKind = "monthly"
	RepeatYearly   RepeatKind = "yearly"
	RepeatWeekdays RepeatKind = "weekdays"
)

// Repeat is a reminder's recurrence pattern. Weekdays is only used
// with RepeatWeekdays.
type Repeat struct {
	Kind     RepeatKind     `json:"kind"`
	Weekdays []time.Weekday `json:"weekdays,omitempty"`
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseRepeat parses "never", "minute", "daily", "weekly", "monthly",
// "yearly" or a comma separated weekday list such as "mon,wed,fri".
func ParseRepeat(s string) (Repeat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch RepeatKind(s) {
	case "", RepeatNever:
		return Repeat{Kind: RepeatNever}, nil
	case RepeatMinute, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return Repeat{Kind: RepeatKind(s)}, nil
	}

	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if len(name) > 3 {
			name = name[:3]
		}
		day, ok := weekdayNames[name]
		if !ok {
			return Repeat{}, &ValidationError{Field: "repeat", Message: fmt.Sprintf("unknown repeat pattern %q", part)}
		}
		if !slices.Contains(days, day) {
			days = append(days, day)
		}
	}
	slices.Sort(days)
	return Repeat{Kind: RepeatWeekdays, Weekdays: days}, nil
}

// IsRepeating reports whether the pattern produces further occurrences.
func (r Repeat) IsRepeating() bool {
	switch r.Kind {
	case RepeatMinute, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	case RepeatWeekdays:
		return len(r.Weekdays) > 0
	default:
		return false
	}
}

// Next returns the occurrence following from, or the zero time when
// the pattern does not repeat.
func (r Repeat) Next(from time.Time) time.Time {
	switch r.Kind {
	case RepeatMinute:
		return from.Add(time.Minute)
	case RepeatDaily:
		return from.AddDate(0, 0, 1)
	case RepeatWeekly:
		return from.AddDate(0, 0, 7)
	case RepeatMonthly:
		return from.AddDate(0, 1, 0)
	case RepeatYearly:
		return from.AddDate(1, 0, 0)
	case RepeatWeekdays:
		for i := 1; i <= 7; i++ {
			next := from.AddDate(0, 0, i)
			if slices.Contains(r.Weekdays, next.Weekday()) {
				return next
			}
		}
	}
	return time.Time{}
}

// NextAfter advances from by the pattern until the result is after now.
func (r Repeat) NextAfter(from, now time.Time) time.Time {
	if !r.IsRepeating() {
		return time.Time{}
	}
	next := from
	for !next.After(now) {
		next = r.Next(next)
	}
	return next
}

func (r Repeat) String() string {
	if r.Kind == RepeatWeekdays {
		names := make([]string, 0, len(r.Weekdays))
		for _, d := range r.Weekdays {
			names = append(names, strings.ToLower(d.String()[:3]))
		}
		return strings.Join(names, ",")
	}
	if r.Kind == "" {
		return string(RepeatNever)
	}
	return string(r.Kind)
}

// Validate checks that the pattern is well formed.
func (r Repeat) Validate() error {
	switch r.Kind {
	case "", RepeatNever, RepeatMinute, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return nil
	case RepeatWeekdays:
		if len(r.Weekdays) == 0 {
			return &ValidationError{Field: "repeat", Message: "at least one weekday is required"}
		}
		return nil
	default:
		return &ValidationError{Field: "repeat", Message: fmt.Sprintf("unknown repeat kind %q", r.Kind)}
	}
}
